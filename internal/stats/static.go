package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jjckrbbt/wrapped/internal/mentiongraph"
	"github.com/jjckrbbt/wrapped/internal/repository"
)

// Keys of the static rows written by the processor.
const (
	KeyMessageBuckets  = "message_buckets"
	KeyReactionBuckets = "reaction_buckets"
	KeyMentionBuckets  = "mention_buckets"
)

// Charts returns the year's daily message, reaction and mention counts.
// Buckets that were never processed come back empty.
func (s *Service) Charts(ctx context.Context, year int) (Charts, error) {
	if _, err := s.profile(year); err != nil {
		return Charts{}, err
	}
	var charts Charts
	for _, target := range []struct {
		key string
		dst *Buckets
	}{
		{KeyMessageBuckets, &charts.MessageBuckets},
		{KeyReactionBuckets, &charts.ReactionBuckets},
		{KeyMentionBuckets, &charts.MentionBuckets},
	} {
		raw, err := s.queries.GetStatic(ctx, repository.GetStaticParams{Key: target.key, Year: int32(year)})
		if errors.Is(err, pgx.ErrNoRows) {
			*target.dst = Buckets{}
			continue
		}
		if err != nil {
			return Charts{}, fmt.Errorf("failed to get %s: %w", target.key, err)
		}
		if err := json.Unmarshal(raw, target.dst); err != nil {
			return Charts{}, fmt.Errorf("failed to decode %s: %w", target.key, err)
		}
	}
	return charts, nil
}

// Word returns the daily usage of word, matched case-insensitively.
func (s *Service) Word(ctx context.Context, year int, word string) (WordUsage, error) {
	if _, err := s.profile(year); err != nil {
		return WordUsage{}, err
	}
	w := strings.ToLower(strings.TrimSpace(word))
	raw, err := s.queries.GetWordUsage(ctx, repository.GetWordUsageParams{Word: w, Year: int32(year)})
	if err != nil {
		return WordUsage{}, notFound(err, fmt.Sprintf("word %q", w))
	}
	usage := WordUsage{Word: w}
	if err := json.Unmarshal(raw, &usage); err != nil {
		return WordUsage{}, fmt.Errorf("failed to decode usage of %q: %w", w, err)
	}
	usage.Word = w
	return usage, nil
}

// MentionEdges returns each user's most-mentioned target for the year as
// aggregated mention records.
func (s *Service) MentionEdges(ctx context.Context, year int) ([]mentiongraph.Edge, error) {
	p, err := s.profile(year)
	if err != nil {
		return nil, err
	}
	return s.mentionEdges.GetOrLoad(ctx, cacheKey(year), mentionGraphTTL, func(ctx context.Context) ([]mentiongraph.Edge, error) {
		rows, err := s.queries.ListMentionEdges(ctx, int32(year))
		if err != nil {
			return nil, fmt.Errorf("failed to list mention edges: %w", err)
		}
		u := urls{profile: p}
		edges := make([]mentiongraph.Edge, 0, len(rows))
		for _, r := range rows {
			edges = append(edges, mentiongraph.Edge{
				FromUser:          r.UserName,
				FromUserAvatarURL: u.avatar(r.UserName),
				ToUser:            r.MostMentionedGivenName,
				ToUserAvatarURL:   u.avatar(r.MostMentionedGivenName),
				Count:             int(r.MostMentionedGivenCount),
			})
		}
		return edges, nil
	})
}

// MentionGraph builds the render-ready mention network for the year.
func (s *Service) MentionGraph(ctx context.Context, year int, mode mentiongraph.Mode) (mentiongraph.Graph, error) {
	edges, err := s.MentionEdges(ctx, year)
	if err != nil {
		return mentiongraph.Graph{}, err
	}
	return mentiongraph.Build(edges, mode), nil
}
