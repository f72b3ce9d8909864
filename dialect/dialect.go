package dialect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/relmeta/schema"
)

// ErrUnsupportedDialect no dialector is registered under the name
var ErrUnsupportedDialect = errors.New("unsupported dialect")

var _ schema.Dialector = MySQL{}
var _ schema.Dialector = Postgres{}
var _ schema.Dialector = SQLite{}
var _ schema.Dialector = SQLServer{}

// Open returns the dialector registered under name, mysql family names may carry a server
// version, e.g. `mariadb@10.11.2`
func Open(name string) (schema.Dialector, error) {
	name, version, _ := strings.Cut(strings.ToLower(strings.TrimSpace(name)), "@")

	switch name {
	case "mysql", "mariadb", "tidb", "aurora-mysql":
		return MySQL{Flavor: name, ServerVersion: version}, nil
	case "postgres", "postgresql", "pgx":
		return Postgres{}, nil
	case "cockroachdb", "cockroach":
		return Postgres{Flavor: "cockroachdb"}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	case "sqlserver", "mssql":
		return SQLServer{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, name)
}

// Names dialect names accepted by Open
func Names() []string {
	return []string{"mysql", "mariadb", "tidb", "aurora-mysql", "postgres", "cockroachdb", "sqlite", "sqlserver"}
}

func size(field *schema.Field) int {
	size, _ := strconv.Atoi(field.Length)
	return size
}
