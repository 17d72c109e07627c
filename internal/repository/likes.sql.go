package repository

import "context"

const countAttachmentLikes = `-- name: CountAttachmentLikes :one
SELECT COUNT(*) FROM likes WHERE attachment_id = $1
`

func (q *Queries) CountAttachmentLikes(ctx context.Context, attachmentID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countAttachmentLikes, attachmentID).Scan(&count)
	return count, err
}

const countMessageLikes = `-- name: CountMessageLikes :one
SELECT COUNT(*) FROM message_likes WHERE message_id = $1
`

func (q *Queries) CountMessageLikes(ctx context.Context, messageID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countMessageLikes, messageID).Scan(&count)
	return count, err
}

type LikeParams struct {
	EntityID  int64
	DiscordID int64
	Timestamp int64
}

type UnlikeParams struct {
	EntityID  int64
	DiscordID int64
}

const likeAttachment = `-- name: LikeAttachment :exec
INSERT INTO likes (attachment_id, discord_id, timestamp) VALUES ($1, $2, $3)
ON CONFLICT (attachment_id, discord_id) DO NOTHING
`

func (q *Queries) LikeAttachment(ctx context.Context, arg LikeParams) error {
	_, err := q.db.Exec(ctx, likeAttachment, arg.EntityID, arg.DiscordID, arg.Timestamp)
	return err
}

const likeMessage = `-- name: LikeMessage :exec
INSERT INTO message_likes (message_id, discord_id, timestamp) VALUES ($1, $2, $3)
ON CONFLICT (message_id, discord_id) DO NOTHING
`

func (q *Queries) LikeMessage(ctx context.Context, arg LikeParams) error {
	_, err := q.db.Exec(ctx, likeMessage, arg.EntityID, arg.DiscordID, arg.Timestamp)
	return err
}

const unlikeAttachment = `-- name: UnlikeAttachment :exec
DELETE FROM likes WHERE attachment_id = $1 AND discord_id = $2
`

func (q *Queries) UnlikeAttachment(ctx context.Context, arg UnlikeParams) error {
	_, err := q.db.Exec(ctx, unlikeAttachment, arg.EntityID, arg.DiscordID)
	return err
}

const unlikeMessage = `-- name: UnlikeMessage :exec
DELETE FROM message_likes WHERE message_id = $1 AND discord_id = $2
`

func (q *Queries) UnlikeMessage(ctx context.Context, arg UnlikeParams) error {
	_, err := q.db.Exec(ctx, unlikeMessage, arg.EntityID, arg.DiscordID)
	return err
}

const listAttachmentLeaderboard = `-- name: ListAttachmentLeaderboard :many
SELECT ROW_NUMBER() OVER (ORDER BY al.like_count DESC, al.attachment_id) AS rank,
       al.attachment_id, a.file_name,
       COALESCE(m.author_name, ''), COALESCE(m.content, ''), COALESCE(m.channel_name, ''),
       al.like_count
FROM (
    SELECT attachment_id, COUNT(*) AS like_count
    FROM likes
    GROUP BY attachment_id
) al
JOIN attachments a ON a.id = al.attachment_id
LEFT JOIN messages m ON a.related_message_id = m.message_id
WHERE a.year = $1
ORDER BY rank
`

func (q *Queries) ListAttachmentLeaderboard(ctx context.Context, year int32) ([]AttachmentLeaderboardRow, error) {
	rows, err := q.db.Query(ctx, listAttachmentLeaderboard, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AttachmentLeaderboardRow
	for rows.Next() {
		var i AttachmentLeaderboardRow
		if err := rows.Scan(
			&i.Rank,
			&i.AttachmentID,
			&i.FileName,
			&i.SenderHandle,
			&i.Content,
			&i.ChannelName,
			&i.LikeCount,
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

const listMessageLeaderboard = `-- name: ListMessageLeaderboard :many
SELECT ROW_NUMBER() OVER (ORDER BY ml.like_count DESC, ml.message_id) AS rank,
       ml.message_id, m.content, m.author_name, m.channel_name, ml.like_count
FROM (
    SELECT message_id, COUNT(*) AS like_count
    FROM message_likes
    GROUP BY message_id
) ml
JOIN messages m ON m.message_id = ml.message_id
WHERE m.year = $1
ORDER BY rank
`

func (q *Queries) ListMessageLeaderboard(ctx context.Context, year int32) ([]MessageLeaderboardRow, error) {
	rows, err := q.db.Query(ctx, listMessageLeaderboard, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MessageLeaderboardRow
	for rows.Next() {
		var i MessageLeaderboardRow
		if err := rows.Scan(
			&i.Rank,
			&i.MessageID,
			&i.Content,
			&i.SenderHandle,
			&i.ChannelName,
			&i.LikeCount,
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

type ListLikedParams struct {
	DiscordID int64
	Year      int32
}

const listLikedAttachments = `-- name: ListLikedAttachments :many
SELECT l.attachment_id, a.file_name,
       COALESCE(m.author_name, ''), COALESCE(m.content, ''), COALESCE(m.channel_name, '')
FROM likes l
JOIN attachments a ON l.attachment_id = a.id
LEFT JOIN messages m ON a.related_message_id = m.message_id
WHERE l.discord_id = $1 AND a.year = $2
ORDER BY l.timestamp DESC
`

func (q *Queries) ListLikedAttachments(ctx context.Context, arg ListLikedParams) ([]LikedAttachmentRow, error) {
	rows, err := q.db.Query(ctx, listLikedAttachments, arg.DiscordID, arg.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LikedAttachmentRow
	for rows.Next() {
		var i LikedAttachmentRow
		if err := rows.Scan(&i.AttachmentID, &i.FileName, &i.SenderHandle, &i.Content, &i.ChannelName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listLikedMessages = `-- name: ListLikedMessages :many
SELECT m.message_id, m.content, m.author_name, m.channel_name
FROM message_likes l
JOIN messages m ON l.message_id = m.message_id
WHERE l.discord_id = $1 AND m.year = $2
ORDER BY l.timestamp DESC
`

func (q *Queries) ListLikedMessages(ctx context.Context, arg ListLikedParams) ([]LikedMessageRow, error) {
	rows, err := q.db.Query(ctx, listLikedMessages, arg.DiscordID, arg.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LikedMessageRow
	for rows.Next() {
		var i LikedMessageRow
		if err := rows.Scan(&i.MessageID, &i.Content, &i.SenderHandle, &i.ChannelName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
