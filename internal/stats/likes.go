package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jjckrbbt/wrapped/internal/repository"
)

// Like records that userID likes the message or attachment id. Liking twice
// is a no-op.
func (s *Service) Like(ctx context.Context, userID int64, id string, isAttachment bool) error {
	entityID, err := ParseID(id)
	if err != nil {
		return err
	}
	params := repository.LikeParams{EntityID: entityID, DiscordID: userID, Timestamp: s.now().Unix()}
	if isAttachment {
		err = s.queries.LikeAttachment(ctx, params)
	} else {
		err = s.queries.LikeMessage(ctx, params)
	}
	if err != nil {
		return fmt.Errorf("failed to like %d: %w", entityID, err)
	}
	s.leaderboard.Purge()
	s.logger.DebugContext(ctx, "Like recorded", "user_id", userID, "id", entityID, "is_attachment", isAttachment)
	return nil
}

// Unlike removes userID's like of id, if any.
func (s *Service) Unlike(ctx context.Context, userID int64, id string, isAttachment bool) error {
	entityID, err := ParseID(id)
	if err != nil {
		return err
	}
	params := repository.UnlikeParams{EntityID: entityID, DiscordID: userID}
	if isAttachment {
		err = s.queries.UnlikeAttachment(ctx, params)
	} else {
		err = s.queries.UnlikeMessage(ctx, params)
	}
	if err != nil {
		return fmt.Errorf("failed to unlike %d: %w", entityID, err)
	}
	s.leaderboard.Purge()
	return nil
}

// LikesForUser lists what userID liked in year, newest like first.
func (s *Service) LikesForUser(ctx context.Context, year int, userID int64) (Leaderboard, error) {
	p, err := s.profile(year)
	if err != nil {
		return Leaderboard{}, err
	}
	params := repository.ListLikedParams{DiscordID: userID, Year: int32(year)}
	attRows, err := s.queries.ListLikedAttachments(ctx, params)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("failed to list liked attachments: %w", err)
	}
	msgRows, err := s.queries.ListLikedMessages(ctx, params)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("failed to list liked messages: %w", err)
	}

	u := urls{profile: p}
	out := Leaderboard{
		Attachments: make([]AttachmentSummary, 0, len(attRows)),
		Messages:    make([]MessageSummary, 0, len(msgRows)),
	}
	for _, r := range attRows {
		out.Attachments = append(out.Attachments, AttachmentSummary{
			AttachmentID:          strconv.FormatInt(r.AttachmentID, 10),
			FileName:              r.FileName,
			URL:                   u.attachment(r.AttachmentID, r.FileName),
			SenderHandle:          r.SenderHandle,
			SenderAvatarURL:       u.avatar(r.SenderHandle),
			RelatedMessageContent: r.Content,
			RelatedChannelName:    r.ChannelName,
		})
	}
	for _, r := range msgRows {
		out.Messages = append(out.Messages, MessageSummary{
			MessageID:       strconv.FormatInt(r.MessageID, 10),
			Content:         r.Content,
			SenderHandle:    r.SenderHandle,
			SenderAvatarURL: u.avatar(r.SenderHandle),
			ChannelName:     r.ChannelName,
		})
	}
	return out, nil
}

// Leaderboard ranks the year's attachments and messages by like count.
func (s *Service) Leaderboard(ctx context.Context, year int) (Leaderboard, error) {
	p, err := s.profile(year)
	if err != nil {
		return Leaderboard{}, err
	}
	return s.leaderboard.GetOrLoad(ctx, cacheKey(year), leaderboardTTL, func(ctx context.Context) (Leaderboard, error) {
		attRows, err := s.queries.ListAttachmentLeaderboard(ctx, int32(year))
		if err != nil {
			return Leaderboard{}, fmt.Errorf("failed to list attachment leaderboard: %w", err)
		}
		msgRows, err := s.queries.ListMessageLeaderboard(ctx, int32(year))
		if err != nil {
			return Leaderboard{}, fmt.Errorf("failed to list message leaderboard: %w", err)
		}

		u := urls{profile: p}
		lb := Leaderboard{
			Attachments: make([]AttachmentSummary, 0, len(attRows)),
			Messages:    make([]MessageSummary, 0, len(msgRows)),
		}
		for _, r := range attRows {
			lb.Attachments = append(lb.Attachments, AttachmentSummary{
				AttachmentID:          strconv.FormatInt(r.AttachmentID, 10),
				FileName:              r.FileName,
				URL:                   u.attachment(r.AttachmentID, r.FileName),
				SenderHandle:          r.SenderHandle,
				SenderAvatarURL:       u.avatar(r.SenderHandle),
				RelatedMessageContent: r.Content,
				RelatedChannelName:    r.ChannelName,
				Likes:                 r.LikeCount,
				Rank:                  r.Rank,
			})
		}
		for _, r := range msgRows {
			lb.Messages = append(lb.Messages, MessageSummary{
				MessageID:       strconv.FormatInt(r.MessageID, 10),
				Content:         r.Content,
				SenderHandle:    r.SenderHandle,
				SenderAvatarURL: u.avatar(r.SenderHandle),
				ChannelName:     r.ChannelName,
				Likes:           r.LikeCount,
				Rank:            r.Rank,
			})
		}
		return lb, nil
	})
}
