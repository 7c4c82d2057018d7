// Package all registers every storage backend via blank imports. Binaries
// import it once to make the full backend set available to storage.New.
package all

import (
	_ "statcast/internal/storage/mssql"
	_ "statcast/internal/storage/mysql"
	_ "statcast/internal/storage/postgres"
	_ "statcast/internal/storage/sqlite"
)
