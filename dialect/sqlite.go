package dialect

import "gorm.io/relmeta/schema"

type SQLite struct{}

func (SQLite) Name() string {
	return "sqlite"
}

func (SQLite) NormalizeType(field *schema.Field) string {
	switch field.DataType {
	case schema.Bool:
		return "numeric"
	case schema.Int, schema.Uint:
		return "integer"
	case schema.Float:
		return "real"
	case schema.String, schema.Time, schema.UUID:
		return "text"
	case schema.Bytes:
		return "blob"
	}

	return string(field.DataType)
}
