package repository

import "context"

const getUser = `-- name: GetUser :one
SELECT user_id, year, user_name, user_nickname, mentions_received, mentions_given,
       reactions_received, reactions_given, messages_sent, attachments_sent,
       attachments_size, most_frequent_time, most_mentioned_given_name,
       most_mentioned_received_name, most_mentioned_given_count,
       most_mentioned_received_count, emoji_data
FROM users
WHERE user_id = $1 AND year = $2
`

type GetUserParams struct {
	UserID int64
	Year   int32
}

func (q *Queries) GetUser(ctx context.Context, arg GetUserParams) (User, error) {
	row := q.db.QueryRow(ctx, getUser, arg.UserID, arg.Year)
	var i User
	err := row.Scan(
		&i.UserID,
		&i.Year,
		&i.UserName,
		&i.UserNickname,
		&i.MentionsReceived,
		&i.MentionsGiven,
		&i.ReactionsReceived,
		&i.ReactionsGiven,
		&i.MessagesSent,
		&i.AttachmentsSent,
		&i.AttachmentsSize,
		&i.MostFrequentTime,
		&i.MostMentionedGivenName,
		&i.MostMentionedReceivedName,
		&i.MostMentionedGivenCount,
		&i.MostMentionedReceivedCount,
		&i.EmojiData,
	)
	return i, err
}

const getGlobalStats = `-- name: GetGlobalStats :one
SELECT COALESCE(SUM(mentions_received), 0)::bigint,
       COALESCE(SUM(reactions_received), 0)::bigint,
       COALESCE(SUM(messages_sent), 0)::bigint,
       COALESCE(SUM(attachments_sent), 0)::bigint,
       COALESCE(SUM(attachments_size), 0)::bigint
FROM users
WHERE year = $1
`

func (q *Queries) GetGlobalStats(ctx context.Context, year int32) (GlobalStatsRow, error) {
	row := q.db.QueryRow(ctx, getGlobalStats, year)
	var i GlobalStatsRow
	err := row.Scan(
		&i.TotalMentions,
		&i.TotalReactions,
		&i.TotalMessages,
		&i.TotalAttachments,
		&i.TotalAttachmentsSize,
	)
	return i, err
}

const listMentionEdges = `-- name: ListMentionEdges :many
SELECT user_name, most_mentioned_given_name, most_mentioned_given_count
FROM users
WHERE year = $1 AND most_mentioned_given_count > 0
ORDER BY user_id
`

func (q *Queries) ListMentionEdges(ctx context.Context, year int32) ([]MentionEdgeRow, error) {
	rows, err := q.db.Query(ctx, listMentionEdges, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MentionEdgeRow
	for rows.Next() {
		var i MentionEdgeRow
		if err := rows.Scan(&i.UserName, &i.MostMentionedGivenName, &i.MostMentionedGivenCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteUsersForYear = `-- name: DeleteUsersForYear :execrows
DELETE FROM users WHERE year = $1
`

func (q *Queries) DeleteUsersForYear(ctx context.Context, year int32) (int64, error) {
	result, err := q.db.Exec(ctx, deleteUsersForYear, year)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
