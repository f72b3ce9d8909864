package schema

import (
	"fmt"
	"reflect"
	"strings"

	"gorm.io/relmeta/utils"
)

// RelationshipType relationship type
type RelationshipType string

const (
	ManyToOne RelationshipType = "many_to_one" // ManyToOne the owning entity holds the join columns
	OneToOne  RelationshipType = "one_to_one"  // OneToOne owning side holds join columns, guarded by a unique constraint
)

type Relationships struct {
	ManyToOne []*Relationship
	OneToOne  []*Relationship
	// All relationships in declaration order
	All       []*Relationship
	Relations map[string]*Relationship
}

// Relationship relation descriptor
type Relationship struct {
	Name                        string
	Type                        RelationshipType
	Field                       *reflect.StructField
	Schema                      *Schema
	FieldSchema                 *Schema
	Embedded                    *Embedded
	Primary                     bool
	Nullable                    bool
	CreateForeignKeyConstraints bool
	OnDelete                    string
	OnUpdate                    string
	Deferrable                  string
	JoinColumns                 []JoinColumn
	References                  []*Reference
	Constraint                  *Constraint
	Unique                      *UniqueConstraint

	resolved bool
}

// JoinColumn a declared join column, every part is optional
type JoinColumn struct {
	Name                     string
	ReferencedColumnName     string
	ForeignKeyConstraintName string
}

// Reference pairs a join column with the column it references
type Reference struct {
	PrimaryKey *Field
	ForeignKey *Field
}

// NewRelationship creates a nullable relationship with foreign key creation enabled
func NewRelationship(name string, typ RelationshipType, target *Schema) *Relationship {
	return &Relationship{
		Name:                        name,
		Type:                        typ,
		FieldSchema:                 target,
		Nullable:                    true,
		CreateForeignKeyConstraints: true,
	}
}

// Resolved reports whether join columns and constraints were computed
func (rel *Relationship) Resolved() bool {
	return rel.resolved
}

// ForeignKeys join columns of the relation
func (rel *Relationship) ForeignKeys() []*Field {
	fields := make([]*Field, 0, len(rel.References))
	for _, ref := range rel.References {
		fields = append(fields, ref.ForeignKey)
	}
	return fields
}

// AddRelationship declares a relationship of the schema, it is resolved by ResolveRelationships
func (schema *Schema) AddRelationship(rel *Relationship) *Relationship {
	rel.Schema = schema
	if rel.Embedded != nil {
		rel.Embedded.Relationships = append(rel.Embedded.Relationships, rel)
	}

	schema.Relationships.Relations[rel.Name] = rel
	schema.Relationships.All = append(schema.Relationships.All, rel)
	switch rel.Type {
	case OneToOne:
		schema.Relationships.OneToOne = append(schema.Relationships.OneToOne, rel)
	default:
		schema.Relationships.ManyToOne = append(schema.Relationships.ManyToOne, rel)
	}
	return rel
}

func (schema *Schema) parseRelation(fieldStruct reflect.StructField, embedded *Embedded) {
	var (
		err         error
		tagSettings = ParseTagSetting(fieldStruct.Tag.Get("gorm"), ";")
		fieldValue  = reflect.New(fieldStruct.Type).Interface()
		relation    = NewRelationship(fieldStruct.Name, ManyToOne, nil)
	)

	relation.Field = &fieldStruct
	relation.Embedded = embedded

	if relation.FieldSchema, err = Parse(fieldValue, schema.cacheStore, schema.namer, schema.dialector); err != nil {
		schema.err = err
		return
	}

	if _, ok := tagSettings["ONE2ONE"]; ok {
		relation.Type = OneToOne
	} else if _, ok := tagSettings["ONETOONE"]; ok {
		relation.Type = OneToOne
	}

	if val, ok := tagSettings["PRIMARYKEY"]; ok && utils.CheckTruth(val) {
		relation.Primary = true
		relation.Nullable = false
	}

	if val, ok := tagSettings["NOT NULL"]; ok && utils.CheckTruth(val) {
		relation.Nullable = false
	}

	foreignKeys, references := toColumns(tagSettings["FOREIGNKEY"]), toColumns(tagSettings["REFERENCES"])
	if len(references) > 0 && len(foreignKeys) > 0 && len(references) != len(foreignKeys) {
		schema.err = fmt.Errorf("invalid relation %v for %v, foreign keys %v don't pair with references %v", relation.Name, schema, foreignKeys, references)
		return
	}

	for idx := 0; idx < len(foreignKeys) || idx < len(references); idx++ {
		var joinColumn JoinColumn
		if idx < len(foreignKeys) {
			joinColumn.Name = schema.joinColumnName(foreignKeys[idx], embedded)
		}
		if idx < len(references) {
			joinColumn.ReferencedColumnName = references[idx]
		}
		relation.JoinColumns = append(relation.JoinColumns, joinColumn)
	}

	if _, ok := tagSettings["JOINCOLUMN"]; ok && len(relation.JoinColumns) == 0 {
		relation.JoinColumns = []JoinColumn{{}}
	}

	if str, ok := tagSettings["CONSTRAINT"]; ok {
		schema.parseConstraintSettings(relation, str)
	}

	schema.AddRelationship(relation)
}

// foreign keys are declared with field names or column names
func (schema *Schema) joinColumnName(name string, embedded *Embedded) string {
	fields := schema.Fields
	if embedded != nil {
		fields = embedded.Fields
	}

	for _, field := range fields {
		if field.Name == name && (embedded != nil || field.Embedded == nil) {
			return field.dbNameWithoutPrefix
		}
	}
	return name
}

func (schema *Schema) parseConstraintSettings(rel *Relationship, str string) {
	if strings.TrimSpace(str) == "-" {
		rel.CreateForeignKeyConstraints = false
		return
	}

	var name string
	if idx := strings.Index(str, ","); idx != 0 {
		if idx == -1 {
			idx = len(str)
		}
		if !strings.Contains(str[0:idx], ":") {
			name = strings.TrimSpace(str[0:idx])
		}
	}

	settings := ParseTagSetting(str, ",")
	rel.OnDelete = strings.TrimSpace(settings["ONDELETE"])
	rel.OnUpdate = strings.TrimSpace(settings["ONUPDATE"])
	rel.Deferrable = strings.TrimSpace(settings["DEFERRABLE"])

	if name != "" {
		if len(rel.JoinColumns) == 0 {
			rel.JoinColumns = []JoinColumn{{}}
		}
		rel.JoinColumns[0].ForeignKeyConstraintName = name
	}
}
