package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:catalog.db?_pragma=busy_timeout(5000)"
	//   "catalog.db"
	DSN string

	// Table is the target table name. Dotted values such as "main.catalog"
	// are accepted and each segment is quoted.
	Table string
}
