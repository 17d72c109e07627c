package stats

import "github.com/shopspring/decimal"

type EmojiEntry struct {
	EmojiID   string  `json:"emoji_id"`
	URL       *string `json:"url"`
	Native    bool    `json:"native"`
	Animated  bool    `json:"animated"`
	Inline    int     `json:"inline"`
	Reactions int     `json:"reactions"`
}

type UserStats struct {
	UserNickname                   string       `json:"user_nickname"`
	MentionsReceived               int32        `json:"mentions_received"`
	MentionsGiven                  int32        `json:"mentions_given"`
	ReactionsReceived              int32        `json:"reactions_received"`
	ReactionsGiven                 int32        `json:"reactions_given"`
	MessagesSent                   int32        `json:"messages_sent"`
	AttachmentsSent                int32        `json:"attachments_sent"`
	AttachmentsSize                int64        `json:"attachments_size"`
	MostFrequentTime               int32        `json:"most_frequent_time"`
	MostMentionedGivenName         string       `json:"most_mentioned_given_name"`
	MostMentionedReceivedName      string       `json:"most_mentioned_received_name"`
	MostMentionedGivenAvatarURL    string       `json:"most_mentioned_given_avatar_url"`
	MostMentionedReceivedAvatarURL string       `json:"most_mentioned_received_avatar_url"`
	MostMentionedGivenCount        int32        `json:"most_mentioned_given_count"`
	MostMentionedReceivedCount     int32        `json:"most_mentioned_received_count"`
	FavouriteEmojis                []EmojiEntry `json:"favourite_emojis"`
}

type GlobalStats struct {
	TotalMentions        int64 `json:"total_mentions"`
	TotalReactions       int64 `json:"total_reactions"`
	TotalMessages        int64 `json:"total_messages"`
	TotalAttachments     int64 `json:"total_attachments"`
	TotalAttachmentsSize int64 `json:"total_attachments_size"`
}

// NotableContent is either a message or an attachment summary; Type says which.
type NotableContent struct {
	Type                  string `json:"type"`
	MessageID             string `json:"message_id,omitempty"`
	Content               string `json:"content,omitempty"`
	ChannelName           string `json:"channel_name,omitempty"`
	AttachmentID          string `json:"attachment_id,omitempty"`
	FileName              string `json:"file_name,omitempty"`
	URL                   string `json:"url,omitempty"`
	RelatedMessageContent string `json:"related_message_content,omitempty"`
	RelatedChannelName    string `json:"related_channel_name,omitempty"`
	SenderHandle          string `json:"sender_handle"`
	SenderAvatarURL       string `json:"sender_avatar_url"`
	TotalReactions        int32  `json:"total_reactions"`
}

const (
	NotableMessage    = "message"
	NotableAttachment = "attachment"
)

// Derived holds values computed from the user and global stats.
type Derived struct {
	MessageShare              decimal.Decimal `json:"message_share"`
	MentionShare              decimal.Decimal `json:"mention_share"`
	ReactionShare             decimal.Decimal `json:"reaction_share"`
	AttachmentShare           decimal.Decimal `json:"attachment_share"`
	AttachmentsSizeHuman      string          `json:"attachments_size_human"`
	TotalAttachmentsSizeHuman string          `json:"total_attachments_size_human"`
}

type StatsBundle struct {
	UserStats      UserStats        `json:"user_stats"`
	GlobalStats    GlobalStats      `json:"global_stats"`
	NotableContent []NotableContent `json:"notable_content"`
	Derived        Derived          `json:"derived"`
}

type MessageInfo struct {
	MessageID       string `json:"message_id"`
	Content         string `json:"content"`
	SenderID        string `json:"sender_id"`
	SenderHandle    string `json:"sender_handle"`
	SenderAvatarURL string `json:"sender_avatar_url"`
	Timestamp       int64  `json:"timestamp"`
	Likes           int64  `json:"likes"`
	ChannelID       string `json:"channel_id"`
	ChannelName     string `json:"channel_name"`
}

type AttachmentInfo struct {
	AttachmentID          string `json:"attachment_id"`
	FileName              string `json:"file_name"`
	URL                   string `json:"url"`
	SenderID              string `json:"sender_id"`
	SenderHandle          string `json:"sender_handle"`
	SenderAvatarURL       string `json:"sender_avatar_url"`
	Timestamp             int64  `json:"timestamp"`
	Likes                 int64  `json:"likes"`
	RelatedMessageID      string `json:"related_message_id"`
	RelatedChannelID      string `json:"related_channel_id"`
	RelatedChannelName    string `json:"related_channel_name"`
	RelatedMessageContent string `json:"related_message_content"`
}

type AttachmentSummary struct {
	AttachmentID          string `json:"attachment_id"`
	FileName              string `json:"file_name"`
	URL                   string `json:"url"`
	SenderHandle          string `json:"sender_handle"`
	SenderAvatarURL       string `json:"sender_avatar_url"`
	RelatedMessageContent string `json:"related_message_content"`
	RelatedChannelName    string `json:"related_channel_name"`
	Likes                 int64  `json:"likes,omitempty"`
	Rank                  int64  `json:"rank,omitempty"`
}

type MessageSummary struct {
	MessageID       string `json:"message_id"`
	Content         string `json:"content"`
	SenderHandle    string `json:"sender_handle"`
	SenderAvatarURL string `json:"sender_avatar_url"`
	ChannelName     string `json:"channel_name"`
	Likes           int64  `json:"likes,omitempty"`
	Rank            int64  `json:"rank,omitempty"`
}

// Leaderboard is also the shape of a user's likes, without ranks.
type Leaderboard struct {
	Attachments []AttachmentSummary `json:"attachments"`
	Messages    []MessageSummary    `json:"messages"`
}

type TimeMachine struct {
	Messages    []MessageInfo    `json:"messages"`
	Attachments []AttachmentInfo `json:"attachments"`
}

// Buckets maps a UTC start-of-day unix timestamp, as a decimal string, to a count.
type Buckets map[string]int64

type Charts struct {
	MessageBuckets  Buckets `json:"message_buckets"`
	ReactionBuckets Buckets `json:"reaction_buckets"`
	MentionBuckets  Buckets `json:"mention_buckets"`
}

type WordUsage struct {
	Word    string  `json:"word"`
	Total   int64   `json:"total"`
	Buckets Buckets `json:"buckets"`
}
