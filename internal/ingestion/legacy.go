package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

type columnKind int

const (
	kindInt columnKind = iota
	kindText
	kindJSON
)

type legacyColumn struct {
	name string
	kind columnKind
	// fallback replaces NULL JSON; empty keeps NULL.
	fallback string
}

// legacyTable is a table shared by the SQLite export and the Postgres schema.
type legacyTable struct {
	name    string
	yearCol string
	columns []legacyColumn
}

func intCols(names ...string) []legacyColumn {
	cols := make([]legacyColumn, len(names))
	for i, n := range names {
		cols[i] = legacyColumn{name: n, kind: kindInt}
	}
	return cols
}

func textCols(names ...string) []legacyColumn {
	cols := make([]legacyColumn, len(names))
	for i, n := range names {
		cols[i] = legacyColumn{name: n, kind: kindText}
	}
	return cols
}

func concat(groups ...[]legacyColumn) []legacyColumn {
	var out []legacyColumn
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var legacyTables = []legacyTable{
	{
		name:    "users",
		yearCol: "year",
		columns: concat(
			intCols("user_id", "year"),
			textCols("user_name", "user_nickname"),
			intCols("mentions_received", "mentions_given", "reactions_received", "reactions_given",
				"messages_sent", "attachments_sent", "attachments_size", "most_frequent_time"),
			textCols("most_mentioned_given_name", "most_mentioned_received_name"),
			intCols("most_mentioned_given_count", "most_mentioned_received_count"),
			[]legacyColumn{{name: "emoji_data", kind: kindJSON}},
		),
	},
	{
		name:    "messages",
		yearCol: "year",
		columns: concat(
			intCols("message_id", "year"),
			textCols("content"),
			intCols("content_length", "channel_id"),
			textCols("channel_name"),
			intCols("author_id"),
			textCols("author_name"),
			intCols("timestamp", "total_reactions"),
			[]legacyColumn{{name: "mentions", kind: kindJSON, fallback: "[]"}},
		),
	},
	{
		name:    "attachments",
		yearCol: "year",
		columns: concat(
			intCols("id", "year"),
			textCols("file_name", "extension"),
			intCols("related_message_id", "timestamp"),
		),
	},
}

func (t legacyTable) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

func (t legacyTable) selectQuery() string {
	exprs := make([]string, len(t.columns))
	for i, c := range t.columns {
		switch c.kind {
		case kindInt:
			exprs[i] = fmt.Sprintf("COALESCE(%s, 0)", c.name)
		case kindText:
			exprs[i] = fmt.Sprintf("COALESCE(%s, '')", c.name)
		case kindJSON:
			exprs[i] = c.name
		}
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", strings.Join(exprs, ", "), t.name, t.yearCol)
}

// LegacyDB is a read-only handle on a SQLite wrapped.db export.
type LegacyDB struct {
	db *sql.DB
}

// OpenLegacy opens the SQLite export at path. The file must exist.
func OpenLegacy(path string) (*LegacyDB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}
	return &LegacyDB{db: db}, nil
}

func (l *LegacyDB) Close() error {
	return l.db.Close()
}

// readRows returns the table's rows for year as values ready for CopyFrom.
func (l *LegacyDB) readRows(ctx context.Context, t legacyTable, year int) ([][]any, error) {
	rows, err := l.db.QueryContext(ctx, t.selectQuery(), year)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.name, err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		ints := make([]int64, len(t.columns))
		texts := make([]string, len(t.columns))
		jsons := make([]sql.NullString, len(t.columns))
		dest := make([]any, len(t.columns))
		for i, c := range t.columns {
			switch c.kind {
			case kindInt:
				dest[i] = &ints[i]
			case kindText:
				dest[i] = &texts[i]
			case kindJSON:
				dest[i] = &jsons[i]
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.name, err)
		}

		values := make([]any, len(t.columns))
		for i, c := range t.columns {
			switch c.kind {
			case kindInt:
				values[i] = ints[i]
			case kindText:
				values[i] = texts[i]
			case kindJSON:
				values[i] = jsonValue(jsons[i], c.fallback)
			}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.name, err)
	}
	return out, nil
}

// jsonValue passes JSON text through as raw bytes so jsonb receives it
// unquoted.
func jsonValue(v sql.NullString, fallback string) any {
	if !v.Valid || v.String == "" {
		if fallback == "" {
			return nil
		}
		return []byte(fallback)
	}
	return []byte(v.String)
}
