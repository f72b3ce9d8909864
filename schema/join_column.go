package schema

import (
	"fmt"
)

// JoinColumnMode how the declared join columns of a relation are interpreted
type JoinColumnMode int

const (
	// JoinColumnsInverse one-to-one without join columns, the other side owns the relation
	JoinColumnsInverse JoinColumnMode = iota
	// JoinColumnsDefault many-to-one without join columns, references the target's primary keys
	JoinColumnsDefault
	// JoinColumnsNamed join columns without referenced names, they name the target's primary key columns
	JoinColumnsNamed
	// JoinColumnsReferenced at least one join column names its referenced column
	JoinColumnsReferenced
)

func (mode JoinColumnMode) String() string {
	switch mode {
	case JoinColumnsInverse:
		return "inverse"
	case JoinColumnsDefault:
		return "default"
	case JoinColumnsNamed:
		return "named"
	case JoinColumnsReferenced:
		return "referenced"
	}
	return fmt.Sprintf("JoinColumnMode(%d)", int(mode))
}

// ClassifyJoinColumns returns the mode the join columns of rel are resolved with
func ClassifyJoinColumns(joinColumns []JoinColumn, rel *Relationship) JoinColumnMode {
	if len(joinColumns) == 0 {
		if rel.Type == OneToOne {
			return JoinColumnsInverse
		}
		return JoinColumnsDefault
	}

	for _, joinColumn := range joinColumns {
		if joinColumn.ReferencedColumnName != "" {
			return JoinColumnsReferenced
		}
	}
	return JoinColumnsNamed
}

// ReferencedColumnNotFoundError a join column references a column its target doesn't declare
type ReferencedColumnNotFoundError struct {
	Column string
	Schema string
}

func (e *ReferencedColumnNotFoundError) Error() string {
	return fmt.Sprintf("referenced column %s not found in entity %s", e.Column, e.Schema)
}

func (e *ReferencedColumnNotFoundError) Unwrap() error {
	return ErrReferencedColumnNotFound
}

// JoinColumnResult join columns, foreign key and unique constraint of one relation,
// Constraint and Unique are nil when not created
type JoinColumnResult struct {
	Constraint *Constraint
	Fields     []*Field
	Unique     *UniqueConstraint
}

// JoinColumnBuilder resolves the join columns of relations
type JoinColumnBuilder struct {
	Namer     Namer
	Dialector Dialector
}

// Build resolves referenced columns, materializes join columns and synthesizes the constraints of rel
func (builder JoinColumnBuilder) Build(joinColumns []JoinColumn, rel *Relationship) (*JoinColumnResult, error) {
	referencedFields, err := builder.ReferencedFields(joinColumns, rel)
	if err != nil {
		return nil, err
	}

	fields := builder.JoinFields(joinColumns, rel, referencedFields)
	if len(referencedFields) == 0 || !rel.CreateForeignKeyConstraints {
		return &JoinColumnResult{Fields: fields}, nil
	}

	constraint := &Constraint{
		Schema:          rel.Schema,
		ForeignKeys:     fields,
		ReferenceSchema: rel.FieldSchema,
		References:      referencedFields,
		OnDelete:        rel.OnDelete,
		OnUpdate:        rel.OnUpdate,
		Deferrable:      rel.Deferrable,
	}
	if len(joinColumns) > 0 {
		constraint.Name = joinColumns[0].ForeignKeyConstraintName
	}

	if rel.Type != OneToOne || allPrimaryKeys(fields) {
		return &JoinColumnResult{Constraint: constraint, Fields: fields}, nil
	}

	unique := &UniqueConstraint{
		Name:   builder.Namer.RelationConstraintName(rel.Schema.Table, fieldNames(fields)),
		Schema: rel.Schema,
		Fields: fields,
	}
	unique.Build(builder.Namer)

	return &JoinColumnResult{Constraint: constraint, Fields: fields, Unique: unique}, nil
}

// ReferencedFields the target columns rel points at
func (builder JoinColumnBuilder) ReferencedFields(joinColumns []JoinColumn, rel *Relationship) ([]*Field, error) {
	switch ClassifyJoinColumns(joinColumns, rel) {
	case JoinColumnsInverse:
		return nil, nil
	case JoinColumnsDefault, JoinColumnsNamed:
		return append([]*Field(nil), rel.FieldSchema.PrimaryFields...), nil
	}

	fields := make([]*Field, 0, len(joinColumns))
	for _, joinColumn := range joinColumns {
		field := rel.FieldSchema.LookUpOwnField(joinColumn.ReferencedColumnName)
		if field == nil {
			return nil, &ReferencedColumnNotFoundError{Column: joinColumn.ReferencedColumnName, Schema: rel.FieldSchema.Name}
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// JoinFields creates or reuses a join column on the owning entity for every referenced field
func (builder JoinColumnBuilder) JoinFields(joinColumns []JoinColumn, rel *Relationship, referencedFields []*Field) []*Field {
	fields := make([]*Field, 0, len(referencedFields))

	for _, referencedField := range referencedFields {
		var (
			name       = builder.joinColumnName(joinColumns, rel, referencedField)
			field      = builder.lookUpScope(rel, name)
			registered = true
		)

		if field == nil {
			field = builder.newJoinField(rel, name, referencedField)
			registered = false
		} else if field.ReferencedField != nil {
			// claimed by another relation, the claim must stay intact
			field = field.Clone()
			registered = false
		}

		field.ReferencedField = referencedField
		field.DataType = referencedField.DataType
		field.Relationship = rel
		field.Build(builder.Namer)

		if !registered {
			rel.Schema.RegisterField(field)
		}

		fields = append(fields, field)
	}

	return fields
}

func (builder JoinColumnBuilder) joinColumnName(joinColumns []JoinColumn, rel *Relationship, referencedField *Field) string {
	for _, joinColumn := range joinColumns {
		if (joinColumn.ReferencedColumnName == "" || joinColumn.ReferencedColumnName == referencedField.Name) && joinColumn.Name != "" {
			return joinColumn.Name
		}
	}
	return builder.Namer.JoinColumnName(rel.Name, referencedField.Name)
}

func (builder JoinColumnBuilder) lookUpScope(rel *Relationship, name string) *Field {
	if rel.Embedded != nil {
		for _, field := range rel.Embedded.Fields {
			if field.dbNameWithoutPrefix == name {
				return field
			}
		}
		return nil
	}

	for _, field := range rel.Schema.Fields {
		if field.Embedded == nil && field.dbNameWithoutPrefix == name {
			return field
		}
	}
	return nil
}

func (builder JoinColumnBuilder) newJoinField(rel *Relationship, name string, referencedField *Field) *Field {
	field := &Field{
		Name:        name,
		GivenDBName: name,
		DataType:    referencedField.DataType,
		Length:      referencedField.Length,
		Width:       referencedField.Width,
		Charset:     referencedField.Charset,
		Collation:   referencedField.Collation,
		Precision:   referencedField.Precision,
		Scale:       referencedField.Scale,
		ZeroFill:    referencedField.ZeroFill,
		Unsigned:    referencedField.Unsigned,
		Comment:     referencedField.Comment,
		EnumName:    referencedField.EnumName,
		PrimaryKey:  rel.Primary,
		Nullable:    rel.Nullable,
		Virtual:     true,
		TagSettings: map[string]string{},
		Schema:      rel.Schema,
		Embedded:    rel.Embedded,
	}

	if referencedField.Enum != nil {
		field.Enum = append([]string(nil), referencedField.Enum...)
	}

	if builder.uuidAsString(referencedField) {
		field.Length = "36"
	}

	return field
}

// mysql stores generated uuids as strings unless the server has a native uuid type
func (builder JoinColumnBuilder) uuidAsString(referencedField *Field) bool {
	return referencedField.Length == "" &&
		IsMySQLFamily(builder.Dialector) &&
		builder.Dialector.NormalizeType(referencedField) != string(UUID) &&
		(referencedField.Generated == GenerateUUID || referencedField.DataType == UUID)
}

func allPrimaryKeys(fields []*Field) bool {
	for _, field := range fields {
		if !field.PrimaryKey {
			return false
		}
	}
	return true
}
