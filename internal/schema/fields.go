package schema

import (
	"fmt"

	"github.com/askdb/askdb/internal/database"
)

// Catalog rows come back as loosely-typed records. These helpers map the
// fields the builder knows about into closed values; unexpected fields are
// ignored rather than propagated.

func stringField(rec database.Record, key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func optStringField(rec database.Record, key string) *string {
	if rec[key] == nil {
		return nil
	}
	s := stringField(rec, key)
	return &s
}

func boolField(rec database.Record, key string) bool {
	b, _ := rec[key].(bool)
	return b
}
