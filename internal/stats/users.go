package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jjckrbbt/wrapped/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type emojiRecord struct {
	Native    bool `json:"native"`
	Animated  bool `json:"animated"`
	Inline    int  `json:"inline"`
	Reactions int  `json:"reactions"`
}

// UserStats returns the user's row for the year with ranked emoji.
func (s *Service) UserStats(ctx context.Context, year int, userID int64) (UserStats, error) {
	p, err := s.profile(year)
	if err != nil {
		return UserStats{}, err
	}
	return s.userStats.GetOrLoad(ctx, cacheKey(year, userID), userStatsTTL, func(ctx context.Context) (UserStats, error) {
		row, err := s.queries.GetUser(ctx, repository.GetUserParams{UserID: userID, Year: int32(year)})
		if err != nil {
			return UserStats{}, notFound(err, "user stats")
		}
		u := urls{profile: p}
		emojis, err := rankEmojis(row.EmojiData, u)
		if err != nil {
			return UserStats{}, fmt.Errorf("failed to decode emoji data for user %d: %w", userID, err)
		}
		return UserStats{
			UserNickname:                   row.UserNickname,
			MentionsReceived:               row.MentionsReceived,
			MentionsGiven:                  row.MentionsGiven,
			ReactionsReceived:              row.ReactionsReceived,
			ReactionsGiven:                 row.ReactionsGiven,
			MessagesSent:                   row.MessagesSent,
			AttachmentsSent:                row.AttachmentsSent,
			AttachmentsSize:                row.AttachmentsSize,
			MostFrequentTime:               row.MostFrequentTime,
			MostMentionedGivenName:         row.MostMentionedGivenName,
			MostMentionedReceivedName:      row.MostMentionedReceivedName,
			MostMentionedGivenAvatarURL:    u.avatar(row.MostMentionedGivenName),
			MostMentionedReceivedAvatarURL: u.avatar(row.MostMentionedReceivedName),
			MostMentionedGivenCount:        row.MostMentionedGivenCount,
			MostMentionedReceivedCount:     row.MostMentionedReceivedCount,
			FavouriteEmojis:                emojis,
		}, nil
	})
}

// rankEmojis expands the emoji_data object and orders it by total uses.
// Ties keep emoji id order so the result is deterministic.
func rankEmojis(raw []byte, u urls) ([]EmojiEntry, error) {
	entries := []EmojiEntry{}
	if len(raw) == 0 {
		return entries, nil
	}
	var data map[string]emojiRecord
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	for id, rec := range data {
		e := EmojiEntry{
			EmojiID:   id,
			Native:    rec.Native,
			Animated:  rec.Animated,
			Inline:    rec.Inline,
			Reactions: rec.Reactions,
		}
		if !rec.Native {
			link := u.emoji(id, rec.Animated)
			e.URL = &link
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].Inline+entries[i].Reactions, entries[j].Inline+entries[j].Reactions
		if ti != tj {
			return ti > tj
		}
		return entries[i].EmojiID < entries[j].EmojiID
	})
	return entries, nil
}

// GlobalStats sums the year's user rows.
func (s *Service) GlobalStats(ctx context.Context, year int) (GlobalStats, error) {
	if _, err := s.profile(year); err != nil {
		return GlobalStats{}, err
	}
	return s.globalStats.GetOrLoad(ctx, cacheKey(year), globalStatsTTL, func(ctx context.Context) (GlobalStats, error) {
		row, err := s.queries.GetGlobalStats(ctx, int32(year))
		if err != nil {
			return GlobalStats{}, fmt.Errorf("failed to get global stats: %w", err)
		}
		return GlobalStats{
			TotalMentions:        row.TotalMentions,
			TotalReactions:       row.TotalReactions,
			TotalMessages:        row.TotalMessages,
			TotalAttachments:     row.TotalAttachments,
			TotalAttachmentsSize: row.TotalAttachmentsSize,
		}, nil
	})
}

// NotableContent returns the user's most reacted-to messages and attachments.
func (s *Service) NotableContent(ctx context.Context, year int, userID int64) ([]NotableContent, error) {
	p, err := s.profile(year)
	if err != nil {
		return nil, err
	}
	return s.notable.GetOrLoad(ctx, cacheKey(year, userID), notableTTL, func(ctx context.Context) ([]NotableContent, error) {
		rows, err := s.queries.ListNotableContent(ctx, repository.ListNotableContentParams{
			Year:     int32(year),
			AuthorID: userID,
			Limit:    int32(p.NotableContentLimit),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list notable content: %w", err)
		}
		u := urls{profile: p}
		items := make([]NotableContent, 0, len(rows))
		for _, r := range rows {
			item := NotableContent{
				SenderHandle:    r.AuthorName,
				SenderAvatarURL: u.avatar(r.AuthorName),
				TotalReactions:  r.TotalReactions,
			}
			if r.AttachmentID.Valid {
				item.Type = NotableAttachment
				item.AttachmentID = fmt.Sprint(r.AttachmentID.Int64)
				item.FileName = r.FileName.String
				item.URL = u.attachment(r.AttachmentID.Int64, r.FileName.String)
				item.RelatedMessageContent = r.Content
				item.RelatedChannelName = r.ChannelName
			} else {
				item.Type = NotableMessage
				item.MessageID = fmt.Sprint(r.MessageID)
				item.Content = r.Content
				item.ChannelName = r.ChannelName
			}
			items = append(items, item)
		}
		return items, nil
	})
}

// Stats loads the user, global and notable views concurrently and adds the
// derived share and size fields.
func (s *Service) Stats(ctx context.Context, year int, userID int64) (StatsBundle, error) {
	if _, err := s.profile(year); err != nil {
		return StatsBundle{}, err
	}

	var bundle StatsBundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.UserStats(gctx, year, userID)
		bundle.UserStats = u
		return err
	})
	g.Go(func() error {
		gs, err := s.GlobalStats(gctx, year)
		bundle.GlobalStats = gs
		return err
	})
	g.Go(func() error {
		n, err := s.NotableContent(gctx, year, userID)
		bundle.NotableContent = n
		return err
	})
	if err := g.Wait(); err != nil {
		return StatsBundle{}, err
	}

	bundle.Derived = derive(bundle.UserStats, bundle.GlobalStats)
	return bundle, nil
}

func derive(u UserStats, g GlobalStats) Derived {
	return Derived{
		MessageShare:              share(int64(u.MessagesSent), g.TotalMessages),
		MentionShare:              share(int64(u.MentionsReceived), g.TotalMentions),
		ReactionShare:             share(int64(u.ReactionsReceived), g.TotalReactions),
		AttachmentShare:           share(int64(u.AttachmentsSent), g.TotalAttachments),
		AttachmentsSizeHuman:      humanize.IBytes(uint64(max(u.AttachmentsSize, 0))),
		TotalAttachmentsSizeHuman: humanize.IBytes(uint64(max(g.TotalAttachmentsSize, 0))),
	}
}

var hundred = decimal.NewFromInt(100)

// share is part/total as a percentage rounded to two decimals, 0 for a zero total.
func share(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2)
}
