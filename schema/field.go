package schema

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/relmeta/utils"
)

// DataType generic column type, dialect specific types are kept as written
type DataType string

// GenerationStrategy how the database generates a column value
type GenerationStrategy string

var (
	TimeReflectType     = reflect.TypeOf(time.Time{})
	UUIDReflectType     = reflect.TypeOf(uuid.UUID{})
	NullUUIDReflectType = reflect.TypeOf(uuid.NullUUID{})
)

const (
	Bool   DataType = "bool"
	Int    DataType = "int"
	Uint   DataType = "uint"
	Float  DataType = "float"
	String DataType = "string"
	Time   DataType = "time"
	Bytes  DataType = "bytes"
	UUID   DataType = "uuid"
)

const (
	GenerateIncrement GenerationStrategy = "increment"
	GenerateUUID      GenerationStrategy = "uuid"
	GenerateRowID     GenerationStrategy = "rowid"
	GenerateIdentity  GenerationStrategy = "identity"
)

// Field column descriptor
type Field struct {
	Name                  string
	DBName                string
	GivenDBName           string
	DataType              DataType
	Length                string
	Width                 int
	Precision             int
	Scale                 int
	Charset               string
	Collation             string
	ZeroFill              bool
	Unsigned              bool
	Comment               string
	Enum                  []string
	EnumName              string
	PrimaryKey            bool
	Nullable              bool
	Unique                bool
	Generated             GenerationStrategy
	HasDefaultValue       bool
	DefaultValue          string
	DefaultValueInterface interface{}
	// Virtual columns exist in the database only, they were created for a relation
	Virtual           bool
	FieldType         reflect.Type
	IndirectFieldType reflect.Type
	StructField       reflect.StructField
	Tag               reflect.StructTag
	TagSettings       map[string]string
	Schema            *Schema
	Embedded          *Embedded
	Relationship      *Relationship
	// ReferencedField is set once the column is claimed by a relation
	ReferencedField *Field

	dbNameWithoutPrefix string
}

func (field *Field) String() string {
	if field.Schema != nil {
		return field.Schema.Name + "." + field.Name
	}
	return field.Name
}

// DBNameWithoutPrefix physical name before the embedded prefix is applied
func (field *Field) DBNameWithoutPrefix() string {
	return field.dbNameWithoutPrefix
}

// Build computes the physical name of the field
func (field *Field) Build(namer Namer) {
	var table string
	if field.Schema != nil {
		table = field.Schema.Table
	}

	if field.GivenDBName != "" {
		field.dbNameWithoutPrefix = field.GivenDBName
	} else {
		field.dbNameWithoutPrefix = namer.ColumnName(table, field.Name)
	}

	field.DBName = field.dbNameWithoutPrefix
	if field.Embedded != nil {
		field.DBName = field.Embedded.Prefix + field.dbNameWithoutPrefix
	}
}

// Clone copies the column definition, the copy is unclaimed
func (field *Field) Clone() *Field {
	clone := *field
	clone.Virtual = true
	clone.ReferencedField = nil
	clone.Relationship = nil

	if field.Enum != nil {
		clone.Enum = append([]string(nil), field.Enum...)
	}

	clone.TagSettings = make(map[string]string, len(field.TagSettings))
	for k, v := range field.TagSettings {
		clone.TagSettings[k] = v
	}

	return &clone
}

// ParseField parses a struct field into a column descriptor, it returns nil for fields that aren't columns
func (schema *Schema) ParseField(fieldStruct reflect.StructField) *Field {
	var err error

	field := &Field{
		Name:              fieldStruct.Name,
		FieldType:         fieldStruct.Type,
		IndirectFieldType: fieldStruct.Type,
		StructField:       fieldStruct,
		Tag:               fieldStruct.Tag,
		TagSettings:       ParseTagSetting(fieldStruct.Tag.Get("gorm"), ";"),
		Nullable:          fieldStruct.Type.Kind() == reflect.Ptr,
		Schema:            schema,
	}

	if _, ok := field.TagSettings["-"]; ok {
		return nil
	}

	for field.IndirectFieldType.Kind() == reflect.Ptr {
		field.IndirectFieldType = field.IndirectFieldType.Elem()
	}

	fieldValue := reflect.New(field.IndirectFieldType)
	switch field.IndirectFieldType {
	case UUIDReflectType:
	case NullUUIDReflectType:
		field.Nullable = true
		fieldValue = reflect.New(UUIDReflectType)
	default:
		// valuers are stored as the value they produce
		if valuer, ok := fieldValue.Interface().(driver.Valuer); ok {
			if v, err := valuer.Value(); err == nil && reflect.ValueOf(v).IsValid() {
				fieldValue = reflect.New(reflect.TypeOf(v))
			} else if field.IndirectFieldType.Kind() == reflect.Struct && field.IndirectFieldType.NumField() > 0 {
				// sql.NullXXX style wrappers, typed by their first field
				field.Nullable = true
				fieldValue = reflect.New(field.IndirectFieldType.Field(0).Type)
			}
		}
	}

	if dbName, ok := field.TagSettings["COLUMN"]; ok {
		field.GivenDBName = dbName
	}

	if val, ok := field.TagSettings["PRIMARYKEY"]; ok && utils.CheckTruth(val) {
		field.PrimaryKey = true
	} else if val, ok := field.TagSettings["PRIMARY_KEY"]; ok && utils.CheckTruth(val) {
		field.PrimaryKey = true
	}

	if val, ok := field.TagSettings["AUTOINCREMENT"]; ok && utils.CheckTruth(val) {
		field.Generated = GenerateIncrement
		field.HasDefaultValue = true
	}

	if val, ok := field.TagSettings["GENERATED"]; ok {
		switch GenerationStrategy(strings.ToLower(val)) {
		case GenerateIncrement, GenerateUUID, GenerateRowID, GenerateIdentity:
			field.Generated = GenerationStrategy(strings.ToLower(val))
			field.HasDefaultValue = true
		case "generated":
			field.Generated = GenerateIncrement
			field.HasDefaultValue = true
		default:
			schema.err = fmt.Errorf("invalid generation strategy %v for %v's field %v", val, schema.Name, field.Name)
		}
	}

	if v, ok := field.TagSettings["DEFAULT"]; ok {
		field.HasDefaultValue = true
		field.DefaultValue = v
	}

	if length, ok := field.TagSettings["SIZE"]; ok {
		field.Length = length
	} else if length, ok := field.TagSettings["LENGTH"]; ok {
		field.Length = length
	}

	if w, ok := field.TagSettings["WIDTH"]; ok {
		field.Width, _ = strconv.Atoi(w)
	}

	if p, ok := field.TagSettings["PRECISION"]; ok {
		field.Precision, _ = strconv.Atoi(p)
	}

	if s, ok := field.TagSettings["SCALE"]; ok {
		field.Scale, _ = strconv.Atoi(s)
	}

	if val, ok := field.TagSettings["CHARSET"]; ok {
		field.Charset = val
	}

	if val, ok := field.TagSettings["COLLATE"]; ok {
		field.Collation = val
	}

	if val, ok := field.TagSettings["UNSIGNED"]; ok && utils.CheckTruth(val) {
		field.Unsigned = true
	}

	if val, ok := field.TagSettings["ZEROFILL"]; ok && utils.CheckTruth(val) {
		field.ZeroFill = true
	}

	if val, ok := field.TagSettings["NOT NULL"]; ok && utils.CheckTruth(val) {
		field.Nullable = false
	} else if _, ok := field.TagSettings["NULL"]; ok {
		field.Nullable = true
	}

	if val, ok := field.TagSettings["UNIQUE"]; ok && utils.CheckTruth(val) {
		field.Unique = true
	}

	if val, ok := field.TagSettings["COMMENT"]; ok {
		field.Comment = val
	}

	if val, ok := field.TagSettings["ENUM"]; ok {
		field.Enum = toColumns(val)
	}

	if val, ok := field.TagSettings["ENUMNAME"]; ok {
		field.EnumName = val
	}

	// default value is function or null or blank (primary keys)
	skipParseDefaultValue := strings.Contains(field.DefaultValue, "(") &&
		strings.Contains(field.DefaultValue, ")") || strings.ToLower(field.DefaultValue) == "null" || field.DefaultValue == "" ||
		strings.EqualFold(field.DefaultValue, "current_timestamp")
	switch reflect.Indirect(fieldValue).Kind() {
	case reflect.Bool:
		field.DataType = Bool
		if field.HasDefaultValue && !skipParseDefaultValue {
			if field.DefaultValueInterface, err = strconv.ParseBool(field.DefaultValue); err != nil {
				schema.err = fmt.Errorf("failed to parse %v as default value for bool, got error: %v", field.DefaultValue, err)
			}
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		field.DataType = Int
		if field.HasDefaultValue && !skipParseDefaultValue {
			if field.DefaultValueInterface, err = strconv.ParseInt(field.DefaultValue, 0, 64); err != nil {
				schema.err = fmt.Errorf("failed to parse %v as default value for int, got error: %v", field.DefaultValue, err)
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		field.DataType = Uint
		if field.HasDefaultValue && !skipParseDefaultValue {
			if field.DefaultValueInterface, err = strconv.ParseUint(field.DefaultValue, 0, 64); err != nil {
				schema.err = fmt.Errorf("failed to parse %v as default value for uint, got error: %v", field.DefaultValue, err)
			}
		}
	case reflect.Float32, reflect.Float64:
		field.DataType = Float
		if field.HasDefaultValue && !skipParseDefaultValue {
			if field.DefaultValueInterface, err = strconv.ParseFloat(field.DefaultValue, 64); err != nil {
				schema.err = fmt.Errorf("failed to parse %v as default value for float, got error: %v", field.DefaultValue, err)
			}
		}
	case reflect.String:
		field.DataType = String
		if field.HasDefaultValue && !skipParseDefaultValue {
			field.DefaultValue = strings.Trim(field.DefaultValue, "'")
			field.DefaultValue = strings.Trim(field.DefaultValue, "\"")
			field.DefaultValueInterface = field.DefaultValue
		}
	case reflect.Struct:
		if fieldValue.Type().Elem().ConvertibleTo(TimeReflectType) {
			field.DataType = Time
			if field.HasDefaultValue && !skipParseDefaultValue {
				if field.DefaultValueInterface, err = now.Parse(strings.Trim(field.DefaultValue, "'")); err != nil {
					schema.err = fmt.Errorf("failed to parse %v as default value for time, got error: %v", field.DefaultValue, err)
				}
			}
		}
	case reflect.Array, reflect.Slice:
		if reflect.Indirect(fieldValue).Type() == UUIDReflectType {
			field.DataType = UUID
			if field.HasDefaultValue && !skipParseDefaultValue {
				if field.DefaultValueInterface, err = uuid.Parse(strings.Trim(field.DefaultValue, "'")); err != nil {
					schema.err = fmt.Errorf("failed to parse %v as default value for uuid, got error: %v", field.DefaultValue, err)
				}
			}
		} else if reflect.Indirect(fieldValue).Type().Elem() == reflect.TypeOf(uint8(0)) {
			field.DataType = Bytes
		}
	}

	if dataTyper, ok := reflect.New(field.IndirectFieldType).Interface().(GormDataTypeInterface); ok {
		field.DataType = DataType(dataTyper.GormDataType())
	}

	if val, ok := field.TagSettings["TYPE"]; ok {
		switch DataType(strings.ToLower(val)) {
		case Bool, Int, Uint, Float, String, Time, Bytes, UUID:
			field.DataType = DataType(strings.ToLower(val))
		default:
			field.DataType = DataType(val)
		}
	}

	if field.Generated == GenerateUUID && field.DataType == "" {
		field.DataType = UUID
	}

	if field.DataType == "" {
		return nil
	}

	if field.PrimaryKey {
		field.Nullable = false
	}

	return field
}
