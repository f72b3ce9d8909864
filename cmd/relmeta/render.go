package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"gorm.io/relmeta/schema"
)

type report struct {
	Dialect  string         `json:"dialect" yaml:"dialect"`
	Entities []entityReport `json:"entities" yaml:"entities"`
}

type entityReport struct {
	Name              string             `json:"name" yaml:"name"`
	Table             string             `json:"table" yaml:"table"`
	Columns           []columnReport     `json:"columns" yaml:"columns"`
	ForeignKeys       []foreignKeyReport `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
	UniqueConstraints []uniqueReport     `json:"unique_constraints,omitempty" yaml:"unique_constraints,omitempty"`
	Indexes           []uniqueReport     `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

type columnReport struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Nullable   bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Virtual    bool   `json:"virtual,omitempty" yaml:"virtual,omitempty"`
	References string `json:"references,omitempty" yaml:"references,omitempty"`
}

type foreignKeyReport struct {
	Name       string   `json:"name" yaml:"name"`
	Columns    []string `json:"columns" yaml:"columns,flow"`
	References string   `json:"references" yaml:"references"`
	Referenced []string `json:"referenced_columns" yaml:"referenced_columns,flow"`
	OnDelete   string   `json:"on_delete" yaml:"on_delete"`
	OnUpdate   string   `json:"on_update" yaml:"on_update"`
	Deferrable string   `json:"deferrable,omitempty" yaml:"deferrable,omitempty"`
}

type uniqueReport struct {
	Name    string   `json:"name" yaml:"name"`
	Class   string   `json:"class,omitempty" yaml:"class,omitempty"`
	Columns []string `json:"columns" yaml:"columns,flow"`
}

func newReport(schemas []*schema.Schema, dialector schema.Dialector) report {
	r := report{Dialect: dialector.Name()}

	for _, s := range schemas {
		entity := entityReport{Name: s.Name, Table: s.Table}

		for _, field := range s.Fields {
			column := columnReport{
				Name:       field.DBName,
				Type:       dialector.NormalizeType(field),
				PrimaryKey: field.PrimaryKey,
				Nullable:   field.Nullable,
				Virtual:    field.Virtual,
			}
			if ref := field.ReferencedField; ref != nil {
				column.References = ref.Schema.Table + "." + ref.DBName
			}
			entity.Columns = append(entity.Columns, column)
		}

		for _, fk := range s.ForeignKeys {
			entity.ForeignKeys = append(entity.ForeignKeys, foreignKeyReport{
				Name:       fk.Name,
				Columns:    fk.ColumnNames(),
				References: fk.ReferenceSchema.Table,
				Referenced: fk.ReferencedColumnNames(),
				OnDelete:   fk.OnDelete,
				OnUpdate:   fk.OnUpdate,
				Deferrable: fk.Deferrable,
			})
		}

		for _, uni := range s.UniqueConstraints {
			entity.UniqueConstraints = append(entity.UniqueConstraints, uniqueReport{Name: uni.Name, Columns: uni.ColumnNames()})
		}

		for _, idx := range s.Indexes {
			entity.Indexes = append(entity.Indexes, uniqueReport{Name: idx.Name, Class: idx.Class, Columns: idx.ColumnNames()})
		}

		r.Entities = append(r.Entities, entity)
	}
	return r
}

func render(w io.Writer, format string, r report) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return err
		}
		return encoder.Close()
	}

	renderText(w, r)
	return nil
}

var (
	entityColor = color.New(color.FgCyan, color.Bold)
	keyColor    = color.New(color.FgYellow)
	fkColor     = color.New(color.FgMagenta)
	uniqueColor = color.New(color.FgGreen)
)

func renderText(w io.Writer, r report) {
	for i, entity := range r.Entities {
		if i > 0 {
			fmt.Fprintln(w)
		}
		entityColor.Fprintf(w, "%s (%s)\n", entity.Name, entity.Table)

		for _, column := range entity.Columns {
			var flags []string
			if column.PrimaryKey {
				flags = append(flags, keyColor.Sprint("PK"))
			}
			if !column.Nullable {
				flags = append(flags, "NOT NULL")
			}
			if column.Virtual {
				flags = append(flags, "virtual")
			}

			line := fmt.Sprintf("  %-24s %-20s %s", column.Name, column.Type, strings.Join(flags, " "))
			if column.References != "" {
				line += " -> " + column.References
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}

		for _, fk := range entity.ForeignKeys {
			fmt.Fprintf(w, "  %s %s (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s",
				fkColor.Sprint("FOREIGN KEY"), fk.Name, strings.Join(fk.Columns, ", "),
				fk.References, strings.Join(fk.Referenced, ", "), fk.OnDelete, fk.OnUpdate)
			if fk.Deferrable != "" {
				fmt.Fprintf(w, " DEFERRABLE %s", fk.Deferrable)
			}
			fmt.Fprintln(w)
		}

		for _, uni := range entity.UniqueConstraints {
			fmt.Fprintf(w, "  %s %s (%s)\n", uniqueColor.Sprint("UNIQUE"), uni.Name, strings.Join(uni.Columns, ", "))
		}

		for _, idx := range entity.Indexes {
			fmt.Fprintf(w, "  %s %s (%s)\n", uniqueColor.Sprint(strings.TrimSpace(idx.Class+" INDEX")), idx.Name, strings.Join(idx.Columns, ", "))
		}
	}
}
