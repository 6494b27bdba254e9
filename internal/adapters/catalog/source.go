package catalog

import (
	"database/sql"
	"fmt"
	"route-planner-service/internal/ports"
)

// NewSource picks the catalog backend: "file" reads path, "postgres" reads db.
func NewSource(kind, path string, db *sql.DB) (ports.CatalogSource, error) {
	switch kind {
	case "", "file":
		return NewFileSource(path), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("catalog source %q: database is required", kind)
		}
		return NewPostgresSource(db), nil
	default:
		return nil, fmt.Errorf("catalog source %q: unknown kind", kind)
	}
}
