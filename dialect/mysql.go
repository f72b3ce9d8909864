package dialect

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
	"gorm.io/relmeta/schema"
)

// MySQL mysql protocol dialects, Flavor is one of mysql, mariadb, tidb, aurora-mysql
type MySQL struct {
	Flavor        string
	ServerVersion string
}

func (dialector MySQL) Name() string {
	if dialector.Flavor == "" {
		return "mysql"
	}
	return dialector.Flavor
}

func (MySQL) MySQLFamily() bool {
	return true
}

// NativeUUID mariadb has a uuid column type since 10.7
func (dialector MySQL) NativeUUID() bool {
	if dialector.Flavor != "mariadb" {
		return false
	}
	version := serverVersion(dialector.ServerVersion)
	return version != "" && semver.Compare(version, "v10.7.0") >= 0
}

func (dialector MySQL) NormalizeType(field *schema.Field) string {
	switch field.DataType {
	case schema.Bool:
		return "boolean"
	case schema.Int, schema.Uint:
		sqlType := "bigint"
		if field.Width > 0 {
			sqlType = fmt.Sprintf("int(%d)", field.Width)
		}
		if field.DataType == schema.Uint || field.Unsigned {
			sqlType += " unsigned"
		}
		return sqlType
	case schema.Float:
		if field.Precision > 0 {
			return fmt.Sprintf("decimal(%d, %d)", field.Precision, field.Scale)
		}
		return "double"
	case schema.String:
		size := size(field)
		if size == 0 && (field.PrimaryKey || field.ReferencedField != nil) {
			// key columns can't be text
			size = 191
		}
		if size > 0 && size < 65536 {
			return fmt.Sprintf("varchar(%d)", size)
		}
		return "longtext"
	case schema.Time:
		return "datetime(3)"
	case schema.Bytes:
		if size := size(field); size > 0 && size < 65536 {
			return fmt.Sprintf("varbinary(%d)", size)
		}
		return "longblob"
	case schema.UUID:
		if dialector.NativeUUID() {
			return string(schema.UUID)
		}
		return "varchar(36)"
	}

	return string(field.DataType)
}

// serverVersion canonical semver of a server version such as `5.5.5-10.11.2-MariaDB-log`
func serverVersion(version string) string {
	version = strings.TrimPrefix(version, "5.5.5-")
	if idx := strings.IndexFunc(version, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); idx >= 0 {
		version = version[:idx]
	}
	version = "v" + strings.Trim(version, ".")
	if !semver.IsValid(version) {
		return ""
	}
	return semver.Canonical(version)
}
