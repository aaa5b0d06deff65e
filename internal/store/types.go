package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

type monthCount struct {
	Month int `db:"month"`
	Count int `db:"count"`
}

// catalogRow is the shared shape of the specialty/site/teacher lookup tables.
type catalogRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt int64  `db:"created_at"`
}
