package schema

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"reflect"
	"sort"
	"sync"

	"gorm.io/relmeta/logger"
)

var (
	// ErrUnsupportedDataType unsupported data type
	ErrUnsupportedDataType = errors.New("unsupported data type")
	// ErrReferencedColumnNotFound a relation references a column its target doesn't have
	ErrReferencedColumnNotFound = errors.New("referenced column not found")
	// ErrUnsupportedRelation relation without a target entity
	ErrUnsupportedRelation = errors.New("unsupported relations")
)

// Schema entity descriptor
type Schema struct {
	Name                    string
	ModelType               reflect.Type
	Table                   string
	PrioritizedPrimaryField *Field
	PrimaryFields           []*Field
	Fields                  []*Field
	FieldsByName            map[string]*Field
	FieldsByDBName          map[string]*Field
	Embeddeds               []*Embedded
	Relationships           Relationships
	ForeignKeys             []*Constraint
	UniqueConstraints       []*UniqueConstraint
	Indexes                 []*Index
	Parent                  *Schema
	Children                []*Schema
	err                     error
	namer                   Namer
	dialector               Dialector
	cacheStore              *sync.Map
}

// Embedded columns grouped under an embedded struct, their physical names carry Prefix
type Embedded struct {
	Name          string
	Prefix        string
	Schema        *Schema
	Fields        []*Field
	Relationships []*Relationship
}

func (schema Schema) String() string {
	if schema.ModelType != nil && schema.ModelType.Name() != "" {
		return fmt.Sprintf("%s(%s)", schema.Name, schema.Table)
	}
	return schema.Name
}

// NewSchema creates an entity descriptor, table defaults to the namer's table name
func NewSchema(name, table string, namer Namer, dialector Dialector) *Schema {
	if namer == nil {
		namer = NamingStrategy{}
	}

	if table == "" {
		table = namer.TableName(name)
	}

	return &Schema{
		Name:           name,
		Table:          table,
		FieldsByName:   map[string]*Field{},
		FieldsByDBName: map[string]*Field{},
		Relationships:  Relationships{Relations: map[string]*Relationship{}},
		namer:          namer,
		dialector:      dialector,
	}
}

// Namer naming strategy of the schema
func (schema *Schema) Namer() Namer {
	return schema.namer
}

// Dialector dialect the schema was built for
func (schema *Schema) Dialector() Dialector {
	return schema.dialector
}

// LookUpField finds a field by physical name, then by property name
func (schema *Schema) LookUpField(name string) *Field {
	if field, ok := schema.FieldsByDBName[name]; ok {
		return field
	}
	if field, ok := schema.FieldsByName[name]; ok {
		return field
	}
	return nil
}

// LookUpOwnField finds a declared, non embedded field by property name
func (schema *Schema) LookUpOwnField(name string) *Field {
	for _, field := range schema.Fields {
		if field.Name == name && !field.Virtual && field.Embedded == nil {
			return field
		}
	}
	return nil
}

// AddField builds field and registers it as an own column
func (schema *Schema) AddField(field *Field) *Field {
	field.Schema = schema
	if field.TagSettings == nil {
		field.TagSettings = map[string]string{}
	}
	field.Build(schema.namer)
	schema.RegisterField(field)
	return field
}

// AddEmbedded declares a group of embedded columns
func (schema *Schema) AddEmbedded(name, prefix string) *Embedded {
	embedded := &Embedded{Name: name, Prefix: prefix, Schema: schema}
	schema.Embeddeds = append(schema.Embeddeds, embedded)
	return embedded
}

// AddField builds field inside the embedded group and registers it on the entity
func (embedded *Embedded) AddField(field *Field) *Field {
	field.Embedded = embedded
	return embedded.Schema.AddField(field)
}

// AddChild links a single table inheritance child, it sees every column of the parent
func (schema *Schema) AddChild(child *Schema) {
	child.Parent = schema
	schema.Children = append(schema.Children, child)

	for _, field := range schema.Fields {
		child.RegisterField(field)
	}
}

// RegisterField registers a built field, registering the same field twice is a no-op
func (schema *Schema) RegisterField(field *Field) {
	for _, f := range schema.Fields {
		if f == field {
			return
		}
	}

	schema.Fields = append(schema.Fields, field)

	if field.Embedded != nil && field.Embedded.Schema == schema {
		field.Embedded.Fields = append(field.Embedded.Fields, field)
	}

	if _, ok := schema.FieldsByName[field.Name]; !ok {
		schema.FieldsByName[field.Name] = field
	}

	if field.DBName != "" {
		if _, ok := schema.FieldsByDBName[field.DBName]; !ok {
			schema.FieldsByDBName[field.DBName] = field
		}
	}

	if field.PrimaryKey {
		schema.PrimaryFields = append(schema.PrimaryFields, field)
		if schema.PrioritizedPrimaryField == nil || (field.DBName == "id" && schema.PrioritizedPrimaryField.DBName != "id") {
			schema.PrioritizedPrimaryField = field
		}
	}

	for _, child := range schema.Children {
		child.RegisterField(field)
	}
}

// Parse parses a struct into a schema, referenced models are parsed through the same cacheStore
func Parse(dest interface{}, cacheStore *sync.Map, namer Namer, dialector Dialector) (*Schema, error) {
	if dest == nil {
		return nil, fmt.Errorf("%w: %+v", ErrUnsupportedDataType, dest)
	}

	modelType := reflect.Indirect(reflect.ValueOf(dest)).Type()
	if modelType.Kind() == reflect.Interface {
		modelType = reflect.Indirect(reflect.ValueOf(dest)).Elem().Type()
	}

	for modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Array || modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	if modelType.Kind() != reflect.Struct {
		if modelType.PkgPath() == "" {
			return nil, fmt.Errorf("%w: %+v", ErrUnsupportedDataType, dest)
		}
		return nil, fmt.Errorf("%w: %s.%s", ErrUnsupportedDataType, modelType.PkgPath(), modelType.Name())
	}

	if v, ok := cacheStore.Load(modelType); ok {
		return v.(*Schema), nil
	}

	var table string
	if tabler, ok := reflect.New(modelType).Interface().(Tabler); ok {
		table = tabler.TableName()
	}

	schema := NewSchema(modelType.Name(), table, namer, dialector)
	schema.ModelType = modelType
	schema.cacheStore = cacheStore

	defer func() {
		if schema.err != nil {
			logger.Default.Error(context.Background(), schema.err.Error())
			cacheStore.Delete(modelType)
		}
	}()

	var relationFields []relationField
	schema.parseStructFields(modelType, nil, &relationFields)

	if len(schema.PrimaryFields) == 0 {
		if field := schema.LookUpField("id"); field != nil && field.Embedded == nil {
			field.PrimaryKey = true
			field.Nullable = false
			schema.PrimaryFields = append(schema.PrimaryFields, field)
			schema.PrioritizedPrimaryField = field
		}
	}

	for _, uni := range sortedUniqueConstraints(schema.ParseUniqueConstraints()) {
		schema.UniqueConstraints = append(schema.UniqueConstraints, uni)
	}

	for _, idx := range sortedIndexes(schema.ParseIndexes()) {
		schema.Indexes = append(schema.Indexes, idx)
	}

	if schema.err != nil {
		return schema, schema.err
	}

	cacheStore.Store(modelType, schema)

	for _, rf := range relationFields {
		if schema.parseRelation(rf.field, rf.embedded); schema.err != nil {
			return schema, schema.err
		}
	}

	if err := schema.ResolveRelationships(); err != nil {
		schema.err = err
	}

	return schema, schema.err
}

type relationField struct {
	field    reflect.StructField
	embedded *Embedded
}

func (schema *Schema) parseStructFields(modelType reflect.Type, embedded *Embedded, relationFields *[]relationField) {
	for i := 0; i < modelType.NumField(); i++ {
		fieldStruct := modelType.Field(i)
		if !ast.IsExported(fieldStruct.Name) {
			continue
		}

		tagSettings := ParseTagSetting(fieldStruct.Tag.Get("gorm"), ";")
		if _, ok := tagSettings["-"]; ok {
			continue
		}

		indirectType := fieldStruct.Type
		for indirectType.Kind() == reflect.Ptr {
			indirectType = indirectType.Elem()
		}

		if field := schema.ParseField(fieldStruct); field != nil {
			if embedded != nil {
				embedded.AddField(field)
			} else {
				schema.AddField(field)
			}
			continue
		}

		if indirectType.Kind() != reflect.Struct {
			// collections are the inverse side of a relation
			continue
		}

		_, isEmbedded := tagSettings["EMBEDDED"]
		if _, ok := tagSettings["EMBEDDEDPREFIX"]; ok {
			isEmbedded = true
		}

		if fieldStruct.Anonymous && !isEmbedded {
			// anonymous structs contribute their columns directly
			schema.parseStructFields(indirectType, embedded, relationFields)
			continue
		}

		if isEmbedded {
			name, prefix := fieldStruct.Name, tagSettings["EMBEDDEDPREFIX"]
			if embedded != nil {
				name, prefix = embedded.Name+"."+name, embedded.Prefix+prefix
			}
			schema.parseStructFields(indirectType, schema.AddEmbedded(name, prefix), relationFields)
			continue
		}

		*relationFields = append(*relationFields, relationField{field: fieldStruct, embedded: embedded})
	}
}

// ResolveRelationships resolves pending relationships in declaration order
func (schema *Schema) ResolveRelationships() error {
	builder := JoinColumnBuilder{Namer: schema.namer, Dialector: schema.dialector}
	for _, rel := range schema.Relationships.All {
		if rel.resolved {
			continue
		}

		if err := schema.resolveRelationship(builder, rel); err != nil {
			return fmt.Errorf("failed to resolve relation %s of %s: %w", rel.Name, schema.Name, err)
		}
	}
	return nil
}

func (schema *Schema) resolveRelationship(builder JoinColumnBuilder, rel *Relationship) error {
	if rel.FieldSchema == nil {
		return ErrUnsupportedRelation
	}

	result, err := builder.Build(rel.JoinColumns, rel)
	if err != nil {
		return err
	}

	rel.References = rel.References[:0]
	for _, field := range result.Fields {
		rel.References = append(rel.References, &Reference{PrimaryKey: field.ReferencedField, ForeignKey: field})
	}

	if result.Constraint != nil {
		result.Constraint.Build(schema.namer)
		rel.Constraint = result.Constraint
		schema.ForeignKeys = append(schema.ForeignKeys, result.Constraint)
	}

	if result.Unique != nil {
		rel.Unique = result.Unique
		if IsMySQLFamily(schema.dialector) {
			schema.Indexes = append(schema.Indexes, result.Unique.Index())
		} else {
			schema.UniqueConstraints = append(schema.UniqueConstraints, result.Unique)
		}
	}

	rel.resolved = true
	return nil
}

func sortedUniqueConstraints(uniques map[string]UniqueConstraint) []*UniqueConstraint {
	names := make([]string, 0, len(uniques))
	for name := range uniques {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]*UniqueConstraint, 0, len(names))
	for _, name := range names {
		uni := uniques[name]
		results = append(results, &uni)
	}
	return results
}

func sortedIndexes(indexes map[string]Index) []*Index {
	names := make([]string, 0, len(indexes))
	for name := range indexes {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]*Index, 0, len(names))
	for _, name := range names {
		idx := indexes[name]
		results = append(results, &idx)
	}
	return results
}
