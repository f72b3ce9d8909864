package dialect

import (
	"fmt"

	"gorm.io/relmeta/schema"
)

// Postgres postgres dialect, Flavor cockroachdb for cockroach clusters
type Postgres struct {
	Flavor string
}

func (dialector Postgres) Name() string {
	if dialector.Flavor == "" {
		return "postgres"
	}
	return dialector.Flavor
}

func (dialector Postgres) NormalizeType(field *schema.Field) string {
	switch field.DataType {
	case schema.Bool:
		return "boolean"
	case schema.Int, schema.Uint:
		if field.Generated == schema.GenerateIncrement && field.ReferencedField == nil {
			return "bigserial"
		}
		return "bigint"
	case schema.Float:
		if field.Precision > 0 {
			return fmt.Sprintf("numeric(%d, %d)", field.Precision, field.Scale)
		}
		return "double precision"
	case schema.String:
		if size := size(field); size > 0 {
			return fmt.Sprintf("varchar(%d)", size)
		}
		return "text"
	case schema.Time:
		return "timestamptz"
	case schema.Bytes:
		return "bytea"
	case schema.UUID:
		return string(schema.UUID)
	}

	return string(field.DataType)
}
