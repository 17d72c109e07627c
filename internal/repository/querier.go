package repository

import "context"

type Querier interface {
	// users
	GetUser(ctx context.Context, arg GetUserParams) (User, error)
	GetGlobalStats(ctx context.Context, year int32) (GlobalStatsRow, error)
	ListMentionEdges(ctx context.Context, year int32) ([]MentionEdgeRow, error)
	DeleteUsersForYear(ctx context.Context, year int32) (int64, error)

	// content
	GetMessage(ctx context.Context, arg GetMessageParams) (MessageRow, error)
	GetAttachment(ctx context.Context, arg GetAttachmentParams) (AttachmentRow, error)
	GetRandomMessage(ctx context.Context, arg GetRandomMessageParams) (MessageRow, error)
	GetRandomAttachment(ctx context.Context, arg GetRandomAttachmentParams) (AttachmentRow, error)
	ListNotableContent(ctx context.Context, arg ListNotableContentParams) ([]NotableContentRow, error)
	ListMessagesInRange(ctx context.Context, arg ListInRangeParams) ([]MessageRow, error)
	ListAttachmentsInRange(ctx context.Context, arg ListInRangeParams) ([]AttachmentRow, error)
	ListBucketMessages(ctx context.Context, year int32) ([]BucketMessageRow, error)
	DeleteMessagesForYear(ctx context.Context, year int32) (int64, error)
	DeleteAttachmentsForYear(ctx context.Context, year int32) (int64, error)

	// likes
	CountAttachmentLikes(ctx context.Context, attachmentID int64) (int64, error)
	CountMessageLikes(ctx context.Context, messageID int64) (int64, error)
	LikeAttachment(ctx context.Context, arg LikeParams) error
	LikeMessage(ctx context.Context, arg LikeParams) error
	UnlikeAttachment(ctx context.Context, arg UnlikeParams) error
	UnlikeMessage(ctx context.Context, arg UnlikeParams) error
	ListAttachmentLeaderboard(ctx context.Context, year int32) ([]AttachmentLeaderboardRow, error)
	ListMessageLeaderboard(ctx context.Context, year int32) ([]MessageLeaderboardRow, error)
	ListLikedAttachments(ctx context.Context, arg ListLikedParams) ([]LikedAttachmentRow, error)
	ListLikedMessages(ctx context.Context, arg ListLikedParams) ([]LikedMessageRow, error)

	// static
	GetStatic(ctx context.Context, arg GetStaticParams) ([]byte, error)
	UpsertStatic(ctx context.Context, arg UpsertStaticParams) error
	GetWordUsage(ctx context.Context, arg GetWordUsageParams) ([]byte, error)
	DeleteWordUsageForYear(ctx context.Context, year int32) (int64, error)
	CreateTempWordUsageStagingTable(ctx context.Context) error
	UpsertWordUsageFromStaging(ctx context.Context) (int64, error)
}

var _ Querier = (*Queries)(nil)
