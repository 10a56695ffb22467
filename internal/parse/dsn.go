package parse

import (
	"regexp"

	"github.com/nullpx/pypm/internal/domain"
)

// dsnPattern matches the scheme (and optional driver sub-scheme) of a
// database connection string literal, e.g. "postgresql+asyncpg://...".
var dsnPattern = regexp.MustCompile(`(postgresql|postgres|mysql|sqlite|mongodb|redis|oracle|mssql)(\+([a-z_]+))?://`)

// schemeDefaultDriver is the conservative fallback driver module used
// when a DSN has no explicit "+driver" sub-scheme: the most common
// pure-Python driver for that database family.
var schemeDefaultDriver = map[string]string{
	"postgresql": "psycopg2",
	"postgres":   "psycopg2",
	"mysql":      "pymysql",
	"sqlite":     "", // stdlib sqlite3, never a dependency
	"mongodb":    "pymongo",
	"redis":      "redis",
	"oracle":     "cx_Oracle",
	"mssql":      "pyodbc",
}

// findDSNHints scans raw file content for DSN-shaped string literals and
// returns the driver module each one implies. Operating on raw bytes
// rather than only string-literal AST nodes is deliberate: the scheme
// prefix match is unambiguous and far cheaper than re-deriving every
// string node's decoded value a second time.
func findDSNHints(content []byte) []domain.ModuleName {
	var hints []domain.ModuleName
	for _, m := range dsnPattern.FindAllSubmatch(content, -1) {
		scheme := string(m[1])
		driver := string(m[3])
		if driver == "" {
			driver = schemeDefaultDriver[scheme]
		}
		if driver == "" {
			continue
		}
		hints = append(hints, domain.ModuleName(driver))
	}
	return hints
}
