package schema

import (
	"strconv"
	"strings"
)

type Index struct {
	Name   string
	Class  string // UNIQUE | FULLTEXT | SPATIAL
	Fields []IndexOption
}

type IndexOption struct {
	*Field
	Expression string
	Sort       string // DESC, ASC
	Collate    string
	Length     int
	Type       string // btree, hash, gist, spgist, gin, and brin
	Where      string
	Comment    string
}

// ColumnNames physical names of the indexed columns
func (idx *Index) ColumnNames() []string {
	names := make([]string, 0, len(idx.Fields))
	for _, option := range idx.Fields {
		names = append(names, option.DBName)
	}
	return names
}

// ParseIndexes parse schema indexes
func (schema *Schema) ParseIndexes() map[string]Index {
	indexes := map[string]Index{}

	for _, field := range schema.Fields {
		if field.TagSettings["INDEX"] != "" || field.TagSettings["UNIQUEINDEX"] != "" {
			for _, index := range parseFieldIndexes(field) {
				idx := indexes[index.Name]
				idx.Name = index.Name
				if idx.Class == "" {
					idx.Class = index.Class
				}
				idx.Fields = append(idx.Fields, index.Fields...)
				indexes[index.Name] = idx
			}
		}
	}

	return indexes
}

func parseFieldIndexes(field *Field) (indexes []Index) {
	for _, value := range strings.Split(field.Tag.Get("gorm"), ";") {
		if value != "" {
			v := strings.Split(value, ":")
			k := strings.TrimSpace(strings.ToUpper(v[0]))
			if k == "INDEX" || k == "UNIQUEINDEX" {
				var (
					name     string
					tag      = strings.Join(v[1:], ":")
					settings = ParseTagSetting(tag, ",")
				)

				if idx := strings.Index(tag, ","); idx != 0 {
					if idx == -1 {
						idx = len(tag)
					}
					if !strings.Contains(tag[0:idx], ":") {
						name = strings.TrimSpace(tag[0:idx])
					}
				}

				if name == "" {
					name = field.Schema.namer.IndexName(field.Schema.Table, field.DBName)
				}

				if k == "UNIQUEINDEX" || settings["UNIQUE"] != "" {
					settings["CLASS"] = "UNIQUE"
				}

				length, _ := strconv.Atoi(settings["LENGTH"])

				indexes = append(indexes, Index{
					Name:  name,
					Class: settings["CLASS"],
					Fields: []IndexOption{{
						Field:      field,
						Expression: settings["EXPRESSION"],
						Sort:       settings["SORT"],
						Collate:    settings["COLLATE"],
						Type:       settings["TYPE"],
						Length:     length,
						Where:      settings["WHERE"],
						Comment:    settings["COMMENT"],
					}},
				})
			}
		}
	}

	return
}
