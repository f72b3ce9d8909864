package schema

// GormDataTypeInterface gorm data type interface
type GormDataTypeInterface interface {
	GormDataType() string
}

// Tabler overrides the table name of a model
type Tabler interface {
	TableName() string
}

// Dialector driver capabilities consulted while resolving relations
type Dialector interface {
	Name() string
	// NormalizeType returns the database type the driver stores the field with
	NormalizeType(*Field) string
}

// MySQLFamilyInterface lets a dialector registered under another name declare mysql compatibility
type MySQLFamilyInterface interface {
	MySQLFamily() bool
}

var mysqlFamily = map[string]bool{
	"mysql":        true,
	"mariadb":      true,
	"aurora-mysql": true,
	"tidb":         true,
}

// IsMySQLFamily reports whether the dialector speaks the mysql protocol
func IsMySQLFamily(dialector Dialector) bool {
	if dialector == nil {
		return false
	}

	if family, ok := dialector.(MySQLFamilyInterface); ok {
		return family.MySQLFamily()
	}

	return mysqlFamily[dialector.Name()]
}
