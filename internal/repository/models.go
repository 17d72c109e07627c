package repository

import "github.com/jackc/pgx/v5/pgtype"

type User struct {
	UserID                     int64
	Year                       int32
	UserName                   string
	UserNickname               string
	MentionsReceived           int32
	MentionsGiven              int32
	ReactionsReceived          int32
	ReactionsGiven             int32
	MessagesSent               int32
	AttachmentsSent            int32
	AttachmentsSize            int64
	MostFrequentTime           int32
	MostMentionedGivenName     string
	MostMentionedReceivedName  string
	MostMentionedGivenCount    int32
	MostMentionedReceivedCount int32
	EmojiData                  []byte
}

type MentionEdgeRow struct {
	UserName                string
	MostMentionedGivenName  string
	MostMentionedGivenCount int32
}

type GlobalStatsRow struct {
	TotalMentions        int64
	TotalReactions       int64
	TotalMessages        int64
	TotalAttachments     int64
	TotalAttachmentsSize int64
}

type NotableContentRow struct {
	MessageID      int64
	Content        string
	ChannelName    string
	AuthorName     string
	TotalReactions int32
	AttachmentID   pgtype.Int8
	FileName       pgtype.Text
}

type MessageRow struct {
	MessageID   int64
	Content     string
	ChannelName string
	AuthorID    int64
	AuthorName  string
	Timestamp   int64
	ChannelID   int64
}

// AttachmentRow is an attachment joined with the message that carried it.
// Message columns are empty when the message is missing.
type AttachmentRow struct {
	ID               int64
	FileName         string
	SenderID         int64
	SenderHandle     string
	Timestamp        int64
	RelatedMessageID int64
	ChannelID        int64
	ChannelName      string
	Content          string
}

type AttachmentLeaderboardRow struct {
	Rank         int64
	AttachmentID int64
	FileName     string
	SenderHandle string
	Content      string
	ChannelName  string
	LikeCount    int64
}

type MessageLeaderboardRow struct {
	Rank         int64
	MessageID    int64
	Content      string
	SenderHandle string
	ChannelName  string
	LikeCount    int64
}

type LikedAttachmentRow struct {
	AttachmentID int64
	FileName     string
	SenderHandle string
	Content      string
	ChannelName  string
}

type LikedMessageRow struct {
	MessageID    int64
	Content      string
	SenderHandle string
	ChannelName  string
}

type BucketMessageRow struct {
	Content        string
	TotalReactions int32
	Mentions       []byte
	Timestamp      int64
}
