package ingestion

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/jjckrbbt/wrapped/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacySchema = `
CREATE TABLE users (
    user_id INTEGER, year INTEGER, user_name TEXT, user_nickname TEXT,
    mentions_received INTEGER, mentions_given INTEGER, reactions_received INTEGER,
    reactions_given INTEGER, messages_sent INTEGER, attachments_sent INTEGER,
    attachments_size INTEGER, most_frequent_time INTEGER,
    most_mentioned_given_name TEXT, most_mentioned_received_name TEXT,
    most_mentioned_given_count INTEGER, most_mentioned_received_count INTEGER,
    emoji_data TEXT
);
CREATE TABLE messages (
    message_id INTEGER, year INTEGER, content TEXT, content_length INTEGER,
    channel_id INTEGER, channel_name TEXT, author_id INTEGER, author_name TEXT,
    timestamp INTEGER, total_reactions INTEGER, mentions TEXT
);
CREATE TABLE attachments (
    id INTEGER, year INTEGER, file_name TEXT, extension TEXT,
    related_message_id INTEGER, timestamp INTEGER
);
INSERT INTO users (user_id, year, user_name, messages_sent, emoji_data)
    VALUES (1, 2025, 'alice', 10, '{"1": {"native": false, "animated": false, "inline": 1, "reactions": 0}}');
INSERT INTO users (user_id, year, user_name) VALUES (2, 2025, NULL);
INSERT INTO users (user_id, year, user_name) VALUES (3, 2024, 'old');
INSERT INTO messages (message_id, year, content, channel_id, author_id, timestamp, mentions)
    VALUES (100, 2025, 'hi', 5, 1, 1735689600, NULL);
INSERT INTO attachments (id, year, file_name, extension, related_message_id, timestamp)
    VALUES (7, 2025, 'cat.png', 'png', 100, 1735689600);
`

func newLegacyFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wrapped.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(legacySchema)
	require.NoError(t, err)
	return path
}

func TestReadLegacyRows(t *testing.T) {
	legacy, err := OpenLegacy(newLegacyFile(t))
	require.NoError(t, err)
	defer legacy.Close()
	ctx := context.Background()

	users, err := legacy.readRows(ctx, legacyTables[0], 2025)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Len(t, users[0], len(legacyTables[0].columns))

	byID := map[int64][]any{}
	for _, u := range users {
		byID[u[0].(int64)] = u
	}
	assert.Equal(t, "alice", byID[1][2])
	assert.Equal(t, int64(10), byID[1][8])
	assert.JSONEq(t, `{"1": {"native": false, "animated": false, "inline": 1, "reactions": 0}}`, string(byID[1][16].([]byte)))
	assert.Equal(t, "", byID[2][2])
	assert.Equal(t, int64(0), byID[2][8])
	assert.Nil(t, byID[2][16])

	messages, err := legacy.readRows(ctx, legacyTables[1], 2025)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, []byte("[]"), messages[0][10])
	assert.Equal(t, "", messages[0][5])

	attachments, err := legacy.readRows(ctx, legacyTables[2], 2025)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, []any{int64(7), int64(2025), "cat.png", "png", int64(100), int64(1735689600)}, attachments[0])
}

func TestOpenLegacyMissingFile(t *testing.T) {
	_, err := OpenLegacy(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestSelectQuery(t *testing.T) {
	q := legacyTables[2].selectQuery()
	assert.Equal(t,
		"SELECT COALESCE(id, 0), COALESCE(year, 0), COALESCE(file_name, ''), COALESCE(extension, ''), COALESCE(related_message_id, 0), COALESCE(timestamp, 0) FROM attachments WHERE year = ?",
		q)
}

func TestObjectKey(t *testing.T) {
	p := NewGCSPublisher(nil, "bucket", "snapshots", logger.Discard())
	assert.Equal(t, "snapshots/2025/charts.json", p.ObjectKey("2025/charts.json"))

	bare := NewGCSPublisher(nil, "bucket", "", logger.Discard())
	assert.Equal(t, "2025/charts.json", bare.ObjectKey("2025/charts.json"))
}

type recordedObject struct {
	key      string
	body     bytes.Buffer
	closed   bool
	closeErr error
}

func (o *recordedObject) Write(p []byte) (int, error) { return o.body.Write(p) }

func (o *recordedObject) Close() error {
	o.closed = true
	return o.closeErr
}

func TestGCSPublisherPublish(t *testing.T) {
	testCases := []struct {
		name          string
		closeErr      error
		errorContains string
	}{
		{name: "uploads json under prefixed key"},
		{name: "close failure", closeErr: errors.New("precondition failed"), errorContains: "failed to close GCS writer"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewGCSPublisher(nil, "bucket", "snapshots", logger.Discard())
			var objects []*recordedObject
			p.openObject = func(ctx context.Context, key string) io.WriteCloser {
				o := &recordedObject{key: key, closeErr: tc.closeErr}
				objects = append(objects, o)
				return o
			}

			err := p.Publish(context.Background(), "2025/charts.json", map[string]int{"1735689600": 3})
			require.Len(t, objects, 1)
			assert.Equal(t, "snapshots/2025/charts.json", objects[0].key)
			assert.True(t, objects[0].closed)

			if tc.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorContains)
				return
			}
			require.NoError(t, err)
			var got map[string]int
			require.NoError(t, json.Unmarshal(objects[0].body.Bytes(), &got))
			assert.Equal(t, map[string]int{"1735689600": 3}, got)
		})
	}
}

func TestGCSPublisherRejectsUnencodableValue(t *testing.T) {
	p := NewGCSPublisher(nil, "bucket", "", logger.Discard())
	p.openObject = func(ctx context.Context, key string) io.WriteCloser {
		t.Fatalf("object %s opened for a value that cannot be encoded", key)
		return nil
	}

	err := p.Publish(context.Background(), "2025/charts.json", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode snapshot")
}
