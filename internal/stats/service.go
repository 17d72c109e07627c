// Package stats serves the per-year statistics, content lookups, likes and
// mention network read by the HTTP API.
package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jjckrbbt/wrapped/internal/cache"
	"github.com/jjckrbbt/wrapped/internal/config"
	"github.com/jjckrbbt/wrapped/internal/mentiongraph"
	"github.com/jjckrbbt/wrapped/internal/repository"
)

var (
	// ErrNotFound is returned when the requested row does not exist for the year.
	ErrNotFound = errors.New("not found")
	// ErrUnknownYear is returned for a year without a loaded profile.
	ErrUnknownYear = errors.New("unknown year")
	// ErrInvalidID is returned when an entity id is not an integer.
	ErrInvalidID = errors.New("invalid id")
)

const (
	userStatsTTL    = time.Hour
	globalStatsTTL  = 24 * time.Hour
	notableTTL      = 24 * time.Hour
	leaderboardTTL  = 60 * time.Second
	mentionGraphTTL = time.Hour
)

// Service is the read/write facade over the repository for one deployment.
type Service struct {
	queries  repository.Querier
	profiles *config.Profiles
	logger   *slog.Logger
	now      func() time.Time

	userStats    *cache.Cache[UserStats]
	globalStats  *cache.Cache[GlobalStats]
	notable      *cache.Cache[[]NotableContent]
	leaderboard  *cache.Cache[Leaderboard]
	mentionEdges *cache.Cache[[]mentiongraph.Edge]
}

// NewService creates a stats service with empty caches.
func NewService(q repository.Querier, profiles *config.Profiles, logger *slog.Logger) *Service {
	return &Service{
		queries:      q,
		profiles:     profiles,
		logger:       logger.With("component", "stats_service"),
		now:          time.Now,
		userStats:    cache.New[UserStats](),
		globalStats:  cache.New[GlobalStats](),
		notable:      cache.New[[]NotableContent](),
		leaderboard:  cache.New[Leaderboard](),
		mentionEdges: cache.New[[]mentiongraph.Edge](),
	}
}

// Years lists the years the service can answer for.
func (s *Service) Years() []int {
	return s.profiles.Years()
}

func (s *Service) profile(year int) (config.YearProfile, error) {
	p, ok := s.profiles.Get(year)
	if !ok {
		return config.YearProfile{}, fmt.Errorf("%w: %d", ErrUnknownYear, year)
	}
	return p, nil
}

// notFound maps pgx.ErrNoRows to ErrNotFound and wraps everything else.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// ParseID parses an entity id sent as a decimal string.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

func cacheKey(parts ...any) string {
	keys := make([]string, len(parts))
	for i, p := range parts {
		keys[i] = fmt.Sprint(p)
	}
	return strings.Join(keys, ":")
}

// urls expands a year profile's URL templates.
type urls struct {
	profile config.YearProfile
}

func (u urls) expand(tmpl string, pairs ...string) string {
	pairs = append(pairs, "{year}", strconv.Itoa(u.profile.Year))
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func (u urls) avatar(name string) string {
	return u.expand(u.profile.AvatarURL, "{name}", url.PathEscape(name))
}

func (u urls) attachment(id int64, fileName string) string {
	return u.expand(u.profile.AttachmentURL,
		"{id}", strconv.FormatInt(id, 10),
		"{file_name}", url.PathEscape(fileName),
	)
}

func (u urls) emoji(id string, animated bool) string {
	ext := ".png"
	if animated {
		ext = ".gif"
	}
	return u.expand(u.profile.EmojiURL, "{id}", id, "{ext}", ext)
}
