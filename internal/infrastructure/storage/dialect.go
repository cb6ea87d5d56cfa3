package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// dialect captures what differs between the supported databases.
type dialect struct {
	name        string
	driver      string
	placeholder sq.PlaceholderFormat
}

var (
	postgresDialect = dialect{name: "postgres", driver: "postgres", placeholder: sq.Dollar}
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite", placeholder: sq.Question}
)

// dialectFor maps a database URL to its dialect and driver DSN.
func dialectFor(url string) (dialect, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgresDialect, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqliteDialect, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "file:"):
		return sqliteDialect, url, nil
	default:
		return dialect{}, "", fmt.Errorf("unsupported database url scheme in %q", redact(url))
	}
}

// listArg encodes a string list for an INSERT.
func (d dialect) listArg(list []string) (interface{}, error) {
	if d.name == postgresDialect.name {
		return pq.Array(list), nil
	}
	if list == nil {
		list = []string{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return string(raw), nil
}

// listDest returns a scan target that fills dst.
func (d dialect) listDest(dst *[]string) interface{} {
	if d.name == postgresDialect.name {
		return pq.Array(dst)
	}
	return jsonList{dst: dst}
}

// jsonList scans a JSON array column (sqlite has no array type).
type jsonList struct {
	dst *[]string
}

func (j jsonList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*j.dst = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan list: unsupported type %T", src)
	}
	return json.Unmarshal(raw, j.dst)
}

// redact hides credentials in error messages.
func redact(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}
