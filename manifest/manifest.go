// Package manifest declares entities in YAML and builds their schemas.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"gorm.io/relmeta/schema"
)

var (
	// ErrUnknownEntity a relation or parent names an entity the manifest doesn't declare
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrDuplicateEntity two entities share a name
	ErrDuplicateEntity = errors.New("duplicate entity")
	// ErrInvalidRelationType relation type is neither many-to-one nor one-to-one
	ErrInvalidRelationType = errors.New("invalid relation type")
	// ErrInvalidEntity entity without name
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrInvalidColumn column without name or type
	ErrInvalidColumn = errors.New("invalid column")
)

// Manifest entities in declaration order
type Manifest struct {
	Entities []Entity `yaml:"entities"`
}

type Entity struct {
	Name      string     `yaml:"name"`
	Table     string     `yaml:"table,omitempty"`
	Parent    string     `yaml:"parent,omitempty"`
	Columns   []Column   `yaml:"columns,omitempty"`
	Embedded  []Embedded `yaml:"embedded,omitempty"`
	Relations []Relation `yaml:"relations,omitempty"`
}

// Embedded columns and relations whose physical names carry Prefix
type Embedded struct {
	Name      string     `yaml:"name"`
	Prefix    string     `yaml:"prefix,omitempty"`
	Columns   []Column   `yaml:"columns,omitempty"`
	Relations []Relation `yaml:"relations,omitempty"`
}

type Column struct {
	Name       string     `yaml:"name"`
	Column     string     `yaml:"column,omitempty"`
	Type       string     `yaml:"type"`
	Length     int        `yaml:"length,omitempty"`
	Width      int        `yaml:"width,omitempty"`
	Precision  int        `yaml:"precision,omitempty"`
	Scale      int        `yaml:"scale,omitempty"`
	Charset    string     `yaml:"charset,omitempty"`
	Collation  string     `yaml:"collation,omitempty"`
	Comment    string     `yaml:"comment,omitempty"`
	Enum       StringList `yaml:"enum,omitempty"`
	EnumName   string     `yaml:"enum_name,omitempty"`
	PrimaryKey bool       `yaml:"primary_key,omitempty"`
	Nullable   bool       `yaml:"nullable,omitempty"`
	Unique     bool       `yaml:"unique,omitempty"`
	Unsigned   bool       `yaml:"unsigned,omitempty"`
	ZeroFill   bool       `yaml:"zerofill,omitempty"`
	Generated  string     `yaml:"generated,omitempty"`
	Default    string     `yaml:"default,omitempty"`
}

type Relation struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Target   string `yaml:"target"`
	Primary  bool   `yaml:"primary,omitempty"`
	Nullable *bool  `yaml:"nullable,omitempty"`
	// CreateForeignKeyConstraints defaults to true
	CreateForeignKeyConstraints *bool        `yaml:"create_foreign_key_constraints,omitempty"`
	OnDelete                    string       `yaml:"on_delete,omitempty"`
	OnUpdate                    string       `yaml:"on_update,omitempty"`
	Deferrable                  string       `yaml:"deferrable,omitempty"`
	JoinColumns                 []JoinColumn `yaml:"join_columns,omitempty"`
}

type JoinColumn struct {
	Name             string `yaml:"name,omitempty"`
	ReferencedColumn string `yaml:"referenced_column,omitempty"`
	ConstraintName   string `yaml:"constraint_name,omitempty"`
}

// StringList is a YAML type that can be either a comma separated string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		list := make([]string, 0)
		for _, v := range strings.Split(node.Value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				list = append(list, v)
			}
		}
		*s = list
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// Load reads the manifest at path
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a manifest, unknown keys are rejected
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Build creates the schemas of every entity in declaration order, relations are left
// pending until they are resolved
func (m *Manifest) Build(namer schema.Namer, dialector schema.Dialector) ([]*schema.Schema, error) {
	if namer == nil {
		namer = schema.NamingStrategy{}
	}

	var (
		schemas = make([]*schema.Schema, 0, len(m.Entities))
		byName  = make(map[string]*schema.Schema, len(m.Entities))
	)

	for _, entity := range m.Entities {
		if entity.Name == "" {
			return nil, fmt.Errorf("%w: entity without name", ErrInvalidEntity)
		}

		if _, ok := byName[entity.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntity, entity.Name)
		}

		s := schema.NewSchema(entity.Name, entity.Table, namer, dialector)
		for _, column := range entity.Columns {
			field, err := column.field()
			if err != nil {
				return nil, fmt.Errorf("entity %s: %w", entity.Name, err)
			}
			s.AddField(field)
		}

		for _, embedded := range entity.Embedded {
			group := s.AddEmbedded(embedded.Name, embedded.Prefix)
			for _, column := range embedded.Columns {
				field, err := column.field()
				if err != nil {
					return nil, fmt.Errorf("entity %s embedded %s: %w", entity.Name, embedded.Name, err)
				}
				group.AddField(field)
			}
		}

		byName[entity.Name] = s
		schemas = append(schemas, s)
	}

	for _, entity := range m.Entities {
		if entity.Parent == "" {
			continue
		}

		parent, ok := byName[entity.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: parent %s of %s", ErrUnknownEntity, entity.Parent, entity.Name)
		}
		parent.AddChild(byName[entity.Name])
	}

	for i, entity := range m.Entities {
		s := schemas[i]
		for _, relation := range entity.Relations {
			if err := addRelationship(s, nil, relation, byName); err != nil {
				return nil, err
			}
		}

		for j, embedded := range entity.Embedded {
			for _, relation := range embedded.Relations {
				if err := addRelationship(s, s.Embeddeds[j], relation, byName); err != nil {
					return nil, err
				}
			}
		}
	}

	return schemas, nil
}

func addRelationship(s *schema.Schema, embedded *schema.Embedded, relation Relation, byName map[string]*schema.Schema) error {
	typ, err := relationType(relation.Type)
	if err != nil {
		return fmt.Errorf("%w: relation %s of %s", err, relation.Name, s.Name)
	}

	target, ok := byName[relation.Target]
	if !ok {
		return fmt.Errorf("%w: relation %s of %s targets %q", ErrUnknownEntity, relation.Name, s.Name, relation.Target)
	}

	rel := schema.NewRelationship(relation.Name, typ, target)
	rel.Embedded = embedded
	rel.Primary = relation.Primary
	rel.OnDelete = relation.OnDelete
	rel.OnUpdate = relation.OnUpdate
	rel.Deferrable = relation.Deferrable

	if relation.Nullable != nil {
		rel.Nullable = *relation.Nullable
	} else if relation.Primary {
		rel.Nullable = false
	}

	if relation.CreateForeignKeyConstraints != nil {
		rel.CreateForeignKeyConstraints = *relation.CreateForeignKeyConstraints
	}

	for _, joinColumn := range relation.JoinColumns {
		rel.JoinColumns = append(rel.JoinColumns, schema.JoinColumn{
			Name:                     joinColumn.Name,
			ReferencedColumnName:     joinColumn.ReferencedColumn,
			ForeignKeyConstraintName: joinColumn.ConstraintName,
		})
	}

	s.AddRelationship(rel)
	return nil
}

func relationType(typ string) (schema.RelationshipType, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(typ)), "-", "_") {
	case "", "many_to_one", "manytoone", "belongs_to":
		return schema.ManyToOne, nil
	case "one_to_one", "onetoone", "one2one", "has_one":
		return schema.OneToOne, nil
	}
	return "", fmt.Errorf("%w %q", ErrInvalidRelationType, typ)
}

func (column Column) field() (*schema.Field, error) {
	if column.Name == "" || column.Type == "" {
		return nil, fmt.Errorf("%w: %q needs a name and a type", ErrInvalidColumn, column.Name)
	}

	field := &schema.Field{
		Name:        column.Name,
		GivenDBName: column.Column,
		DataType:    dataType(column.Type),
		Width:       column.Width,
		Precision:   column.Precision,
		Scale:       column.Scale,
		Charset:     column.Charset,
		Collation:   column.Collation,
		Comment:     column.Comment,
		Enum:        column.Enum,
		EnumName:    column.EnumName,
		PrimaryKey:  column.PrimaryKey,
		Nullable:    column.Nullable && !column.PrimaryKey,
		Unique:      column.Unique,
		Unsigned:    column.Unsigned,
		ZeroFill:    column.ZeroFill,
		Generated:   schema.GenerationStrategy(strings.ToLower(column.Generated)),
	}

	if column.Length > 0 {
		field.Length = strconv.Itoa(column.Length)
	}

	if column.Default != "" {
		field.HasDefaultValue = true
		field.DefaultValue = column.Default
	}

	switch field.Generated {
	case "", schema.GenerateIncrement, schema.GenerateUUID, schema.GenerateRowID, schema.GenerateIdentity:
		if field.Generated != "" {
			field.HasDefaultValue = true
		}
	default:
		return nil, fmt.Errorf("%w: %q has invalid generation strategy %q", ErrInvalidColumn, column.Name, column.Generated)
	}

	return field, nil
}

func dataType(typ string) schema.DataType {
	switch schema.DataType(strings.ToLower(typ)) {
	case schema.Bool, schema.Int, schema.Uint, schema.Float, schema.String, schema.Time, schema.Bytes, schema.UUID:
		return schema.DataType(strings.ToLower(typ))
	}
	return schema.DataType(typ)
}
