package schema

import (
	"strings"
)

// Deferrable modes of a foreign key
const (
	InitiallyImmediate = "INITIALLY IMMEDIATE"
	InitiallyDeferred  = "INITIALLY DEFERRED"
)

// Constraint foreign key constraint
type Constraint struct {
	Name            string
	Schema          *Schema
	ForeignKeys     []*Field
	ReferenceSchema *Schema
	References      []*Field
	OnDelete        string
	OnUpdate        string
	Deferrable      string
}

// GetName returns the constraint name
func (constraint *Constraint) GetName() string { return constraint.Name }

// Build normalizes the referential actions and names the constraint if it has no name
func (constraint *Constraint) Build(namer Namer) {
	constraint.OnDelete = referentialAction(constraint.OnDelete)
	constraint.OnUpdate = referentialAction(constraint.OnUpdate)
	constraint.Deferrable = strings.ToUpper(strings.TrimSpace(constraint.Deferrable))

	if constraint.Name == "" {
		constraint.Name = namer.ForeignKeyName(constraint.Schema.Table, constraint.ColumnNames())
	}
}

// ColumnNames physical names of the foreign key columns
func (constraint *Constraint) ColumnNames() []string {
	return fieldNames(constraint.ForeignKeys)
}

// ReferencedColumnNames physical names of the referenced columns
func (constraint *Constraint) ReferencedColumnNames() []string {
	return fieldNames(constraint.References)
}

func referentialAction(action string) string {
	if action = strings.ToUpper(strings.TrimSpace(action)); action == "" {
		return "NO ACTION"
	}
	return action
}

// UniqueConstraint unique constraint
type UniqueConstraint struct {
	Name   string
	Schema *Schema
	Fields []*Field
}

// GetName returns the constraint name
func (uni *UniqueConstraint) GetName() string { return uni.Name }

// Build names the constraint if it has no name
func (uni *UniqueConstraint) Build(namer Namer) {
	if uni.Name == "" {
		uni.Name = namer.UniqueName(uni.Schema.Table, strings.Join(uni.ColumnNames(), "_"))
	}
}

// ColumnNames physical names of the constrained columns
func (uni *UniqueConstraint) ColumnNames() []string {
	return fieldNames(uni.Fields)
}

// Index the unique constraint as a unique index, mysql creates those for unique constraints anyway
func (uni *UniqueConstraint) Index() *Index {
	idx := &Index{Name: uni.Name, Class: "UNIQUE"}
	for _, field := range uni.Fields {
		idx.Fields = append(idx.Fields, IndexOption{Field: field})
	}
	return idx
}

// ParseUniqueConstraints parse schema unique constraints
func (schema *Schema) ParseUniqueConstraints() map[string]UniqueConstraint {
	uniques := make(map[string]UniqueConstraint)
	for _, field := range schema.Fields {
		if field.Unique {
			name := schema.namer.UniqueName(schema.Table, field.DBName)
			uniques[name] = UniqueConstraint{Name: name, Schema: schema, Fields: []*Field{field}}
		}
	}
	return uniques
}
