package dialect

import (
	"fmt"

	"gorm.io/relmeta/schema"
)

type SQLServer struct{}

func (SQLServer) Name() string {
	return "sqlserver"
}

func (SQLServer) NormalizeType(field *schema.Field) string {
	switch field.DataType {
	case schema.Bool:
		return "bit"
	case schema.Int, schema.Uint:
		return "bigint"
	case schema.Float:
		if field.Precision > 0 {
			return fmt.Sprintf("decimal(%d, %d)", field.Precision, field.Scale)
		}
		return "float"
	case schema.String:
		if size := size(field); size > 0 && size <= 4000 {
			return fmt.Sprintf("nvarchar(%d)", size)
		}
		return "nvarchar(MAX)"
	case schema.Time:
		return "datetimeoffset"
	case schema.Bytes:
		return "varbinary(MAX)"
	case schema.UUID:
		return "uniqueidentifier"
	}

	return string(field.DataType)
}
