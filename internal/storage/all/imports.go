// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories and dialects with the storage package:
//
//   - "sqlite"   (catalogetl/internal/storage/sqlite)
//   - "postgres" (catalogetl/internal/storage/postgres)
//   - "mysql"    (catalogetl/internal/storage/mysql)
//   - "mssql"    (catalogetl/internal/storage/mssql)
//
// A binary that needs only a subset can import those backends directly.
package all

import (
	_ "catalogetl/internal/storage/mssql"
	_ "catalogetl/internal/storage/mysql"
	_ "catalogetl/internal/storage/postgres"
	_ "catalogetl/internal/storage/sqlite"
)
