package repository

import "context"

const messageColumns = `message_id, content, channel_name, author_id, author_name, timestamp, channel_id`

const attachmentColumns = `a.id, a.file_name,
       COALESCE(m.author_id, 0), COALESCE(m.author_name, ''),
       a.timestamp, a.related_message_id,
       COALESCE(m.channel_id, 0), COALESCE(m.channel_name, ''), COALESCE(m.content, '')`

func scanMessage(row interface{ Scan(...any) error }) (MessageRow, error) {
	var i MessageRow
	err := row.Scan(
		&i.MessageID,
		&i.Content,
		&i.ChannelName,
		&i.AuthorID,
		&i.AuthorName,
		&i.Timestamp,
		&i.ChannelID,
	)
	return i, err
}

func scanAttachment(row interface{ Scan(...any) error }) (AttachmentRow, error) {
	var i AttachmentRow
	err := row.Scan(
		&i.ID,
		&i.FileName,
		&i.SenderID,
		&i.SenderHandle,
		&i.Timestamp,
		&i.RelatedMessageID,
		&i.ChannelID,
		&i.ChannelName,
		&i.Content,
	)
	return i, err
}

const getMessage = `-- name: GetMessage :one
SELECT ` + messageColumns + `
FROM messages
WHERE message_id = $1 AND year = $2
`

type GetMessageParams struct {
	MessageID int64
	Year      int32
}

func (q *Queries) GetMessage(ctx context.Context, arg GetMessageParams) (MessageRow, error) {
	return scanMessage(q.db.QueryRow(ctx, getMessage, arg.MessageID, arg.Year))
}

const getAttachment = `-- name: GetAttachment :one
SELECT ` + attachmentColumns + `
FROM attachments a
LEFT JOIN messages m ON a.related_message_id = m.message_id
WHERE a.id = $1 AND a.year = $2
`

type GetAttachmentParams struct {
	ID   int64
	Year int32
}

func (q *Queries) GetAttachment(ctx context.Context, arg GetAttachmentParams) (AttachmentRow, error) {
	return scanAttachment(q.db.QueryRow(ctx, getAttachment, arg.ID, arg.Year))
}

const getRandomMessage = `-- name: GetRandomMessage :one
SELECT ` + messageColumns + `
FROM messages
WHERE year = $1
  AND content_length >= $2
  AND (NOT $3::boolean OR content LIKE '%http://%' OR content LIKE '%https://%')
ORDER BY random()
LIMIT 1
`

type GetRandomMessageParams struct {
	Year      int32
	MinLength int32
	LinksOnly bool
}

func (q *Queries) GetRandomMessage(ctx context.Context, arg GetRandomMessageParams) (MessageRow, error) {
	return scanMessage(q.db.QueryRow(ctx, getRandomMessage, arg.Year, arg.MinLength, arg.LinksOnly))
}

const getRandomAttachment = `-- name: GetRandomAttachment :one
SELECT ` + attachmentColumns + `
FROM attachments a
LEFT JOIN messages m ON a.related_message_id = m.message_id
WHERE a.year = $1
  AND NOT (a.id = ANY($2::bigint[]))
  AND CASE WHEN $3::boolean
           THEN lower(a.extension) = ANY($4::text[])
           ELSE NOT (lower(a.extension) = ANY($5::text[]))
      END
ORDER BY random()
LIMIT 1
`

type GetRandomAttachmentParams struct {
	Year               int32
	ExcludedIDs        []int64
	VideoOnly          bool
	VideoExtensions    []string
	ExcludedExtensions []string
}

func (q *Queries) GetRandomAttachment(ctx context.Context, arg GetRandomAttachmentParams) (AttachmentRow, error) {
	// nil slices encode as NULL, which would make every ANY() comparison NULL
	excludedIDs := arg.ExcludedIDs
	if excludedIDs == nil {
		excludedIDs = []int64{}
	}
	videoExts := arg.VideoExtensions
	if videoExts == nil {
		videoExts = []string{}
	}
	excludedExts := arg.ExcludedExtensions
	if excludedExts == nil {
		excludedExts = []string{}
	}
	return scanAttachment(q.db.QueryRow(ctx, getRandomAttachment,
		arg.Year, excludedIDs, arg.VideoOnly, videoExts, excludedExts))
}

const listNotableContent = `-- name: ListNotableContent :many
SELECT m.message_id, m.content, m.channel_name, m.author_name, m.total_reactions,
       a.id, a.file_name
FROM messages m
LEFT JOIN attachments a ON m.message_id = a.related_message_id
WHERE m.year = $1 AND m.author_id = $2
ORDER BY m.total_reactions DESC, m.message_id
LIMIT $3
`

type ListNotableContentParams struct {
	Year     int32
	AuthorID int64
	Limit    int32
}

func (q *Queries) ListNotableContent(ctx context.Context, arg ListNotableContentParams) ([]NotableContentRow, error) {
	rows, err := q.db.Query(ctx, listNotableContent, arg.Year, arg.AuthorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NotableContentRow
	for rows.Next() {
		var i NotableContentRow
		if err := rows.Scan(
			&i.MessageID,
			&i.Content,
			&i.ChannelName,
			&i.AuthorName,
			&i.TotalReactions,
			&i.AttachmentID,
			&i.FileName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMessagesInRange = `-- name: ListMessagesInRange :many
SELECT ` + messageColumns + `
FROM messages
WHERE content_length > 0 AND timestamp >= $1 AND timestamp <= $2 AND year = $3
ORDER BY random()
LIMIT $4
`

type ListInRangeParams struct {
	Start int64
	End   int64
	Year  int32
	Limit int32
}

func (q *Queries) ListMessagesInRange(ctx context.Context, arg ListInRangeParams) ([]MessageRow, error) {
	rows, err := q.db.Query(ctx, listMessagesInRange, arg.Start, arg.End, arg.Year, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MessageRow
	for rows.Next() {
		i, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAttachmentsInRange = `-- name: ListAttachmentsInRange :many
SELECT ` + attachmentColumns + `
FROM attachments a
LEFT JOIN messages m ON a.related_message_id = m.message_id
WHERE m.timestamp >= $1 AND m.timestamp <= $2 AND a.year = $3
ORDER BY random()
LIMIT $4
`

func (q *Queries) ListAttachmentsInRange(ctx context.Context, arg ListInRangeParams) ([]AttachmentRow, error) {
	rows, err := q.db.Query(ctx, listAttachmentsInRange, arg.Start, arg.End, arg.Year, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AttachmentRow
	for rows.Next() {
		i, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listBucketMessages = `-- name: ListBucketMessages :many
SELECT content, total_reactions, mentions, timestamp
FROM messages
WHERE year = $1
ORDER BY timestamp ASC
`

func (q *Queries) ListBucketMessages(ctx context.Context, year int32) ([]BucketMessageRow, error) {
	rows, err := q.db.Query(ctx, listBucketMessages, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BucketMessageRow
	for rows.Next() {
		var i BucketMessageRow
		if err := rows.Scan(&i.Content, &i.TotalReactions, &i.Mentions, &i.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteMessagesForYear = `-- name: DeleteMessagesForYear :execrows
DELETE FROM messages WHERE year = $1
`

func (q *Queries) DeleteMessagesForYear(ctx context.Context, year int32) (int64, error) {
	result, err := q.db.Exec(ctx, deleteMessagesForYear, year)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteAttachmentsForYear = `-- name: DeleteAttachmentsForYear :execrows
DELETE FROM attachments WHERE year = $1
`

func (q *Queries) DeleteAttachmentsForYear(ctx context.Context, year int32) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAttachmentsForYear, year)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
