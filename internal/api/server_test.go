package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jjckrbbt/wrapped/internal/config"
	"github.com/jjckrbbt/wrapped/internal/logger"
	"github.com/jjckrbbt/wrapped/internal/repository"
	"github.com/jjckrbbt/wrapped/internal/stats"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockQuerier struct {
	repository.Querier
	liked   []repository.LikeParams
	unliked []repository.UnlikeParams
}

func (m *mockQuerier) GetUser(ctx context.Context, arg repository.GetUserParams) (repository.User, error) {
	if arg.UserID != 42 {
		return repository.User{}, pgx.ErrNoRows
	}
	return repository.User{UserID: 42, UserNickname: "Ally", MessagesSent: 5}, nil
}

func (m *mockQuerier) GetGlobalStats(ctx context.Context, year int32) (repository.GlobalStatsRow, error) {
	return repository.GlobalStatsRow{TotalMessages: 20}, nil
}

func (m *mockQuerier) ListNotableContent(ctx context.Context, arg repository.ListNotableContentParams) ([]repository.NotableContentRow, error) {
	return nil, nil
}

func (m *mockQuerier) ListMentionEdges(ctx context.Context, year int32) ([]repository.MentionEdgeRow, error) {
	return []repository.MentionEdgeRow{
		{UserName: "A", MostMentionedGivenName: "B", MostMentionedGivenCount: 1},
		{UserName: "B", MostMentionedGivenName: "A", MostMentionedGivenCount: 2},
	}, nil
}

func (m *mockQuerier) GetWordUsage(ctx context.Context, arg repository.GetWordUsageParams) ([]byte, error) {
	if arg.Word == "hello" {
		return []byte(`{"total": 1, "buckets": {"1735689600": 1}}`), nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockQuerier) ListAttachmentLeaderboard(ctx context.Context, year int32) ([]repository.AttachmentLeaderboardRow, error) {
	return nil, nil
}

func (m *mockQuerier) ListMessageLeaderboard(ctx context.Context, year int32) ([]repository.MessageLeaderboardRow, error) {
	rows := make([]repository.MessageLeaderboardRow, 25)
	for i := range rows {
		rows[i] = repository.MessageLeaderboardRow{Rank: int64(i + 1), MessageID: int64(100 + i), LikeCount: int64(50 - i)}
	}
	return rows, nil
}

func (m *mockQuerier) LikeAttachment(ctx context.Context, arg repository.LikeParams) error {
	m.liked = append(m.liked, arg)
	return nil
}

func (m *mockQuerier) UnlikeMessage(ctx context.Context, arg repository.UnlikeParams) error {
	m.unliked = append(m.unliked, arg)
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping() error { return f.err }

func newTestServer(t *testing.T, q *mockQuerier, opts ServerOptions, db Pinger) *echo.Echo {
	t.Helper()
	profiles, err := config.NewProfiles(config.YearProfile{
		Year:          2025,
		AvatarURL:     "https://cdn.test/{year}/avatars/{name}.png",
		AttachmentURL: "https://cdn.test/{year}/attachments/{id}/{file_name}",
		EmojiURL:      "https://cdn.test/{year}/emojis/{id}{ext}",
	})
	require.NoError(t, err)
	if opts.LikeRateLimit == 0 {
		opts.LikeRateLimit = 100
	}
	return NewServer(opts, stats.NewService(q, profiles, logger.Discard()), db, logger.Discard())
}

func do(e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var asAlly = map[string]string{UserIDHeader: "42"}

func TestHealth(t *testing.T) {
	ok := newTestServer(t, &mockQuerier{}, ServerOptions{}, fakePinger{})
	rec := do(ok, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	down := newTestServer(t, &mockQuerier{}, ServerOptions{}, fakePinger{err: errors.New("down")})
	rec = do(down, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DB Not Ready", rec.Body.String())
}

func TestStatsIdentity(t *testing.T) {
	testCases := []struct {
		name       string
		opts       ServerOptions
		headers    map[string]string
		wantStatus int
	}{
		{name: "header", headers: asAlly, wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", headers: map[string]string{UserIDHeader: "ally"}, wantStatus: http.StatusUnauthorized},
		{name: "dev fallback", opts: ServerOptions{Development: true, DevUserID: 42}, wantStatus: http.StatusOK},
		{name: "dev id ignored outside development", opts: ServerOptions{DevUserID: 42}, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", headers: map[string]string{UserIDHeader: "7"}, wantStatus: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(t, &mockQuerier{}, tc.opts, fakePinger{})
			rec := do(e, http.MethodGet, "/api/2025/stats", "", tc.headers)
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestStatsBody(t *testing.T) {
	e := newTestServer(t, &mockQuerier{}, ServerOptions{}, fakePinger{})
	rec := do(e, http.MethodGet, "/api/2025/stats", "", asAlly)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		UserStats struct {
			UserNickname string `json:"user_nickname"`
		} `json:"user_stats"`
		GlobalStats struct {
			TotalMessages int64 `json:"total_messages"`
		} `json:"global_stats"`
		Derived struct {
			MessageShare string `json:"message_share"`
		} `json:"derived"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ally", body.UserStats.UserNickname)
	assert.Equal(t, int64(20), body.GlobalStats.TotalMessages)
	assert.Equal(t, "25", body.Derived.MessageShare)
}

func TestYearErrors(t *testing.T) {
	e := newTestServer(t, &mockQuerier{}, ServerOptions{}, fakePinger{})

	rec := do(e, http.MethodGet, "/api/1999/global-stats", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/api/latest/global-stats", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMentionGraphRoutes(t *testing.T) {
	e := newTestServer(t, &mockQuerier{}, ServerOptions{}, fakePinger{})

	rec := do(e, http.MethodGet, "/api/2025/mention-graph", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw struct {
		Edges []map[string]any `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw.Edges, 2)
	assert.Equal(t, "A", raw.Edges[0]["from_user"])
	assert.Equal(t, "https://cdn.test/2025/avatars/B.png", raw.Edges[0]["to_user_avatar_url"])

	testCases := []struct {
		mode       string
		wantStatus int
		wantLabel  string
	}{
		{mode: "", wantStatus: http.StatusOK, wantLabel: "1 + 2"},
		{mode: "pair", wantStatus: http.StatusOK, wantLabel: "1 + 2"},
		{mode: "bogus", wantStatus: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run("mode="+tc.mode, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/api/2025/mention-graph/view?mode="+tc.mode, "", nil)
			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus != http.StatusOK {
				return
			}
			var g struct {
				Nodes []map[string]any `json:"nodes"`
				Edges []map[string]any `json:"edges"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
			assert.Len(t, g.Nodes, 2)
			require.Len(t, g.Edges, 1)
			assert.Equal(t, tc.wantLabel, g.Edges[0]["label"])
			assert.Equal(t, float64(3), g.Edges[0]["weight"])
		})
	}
}

func TestWordRoute(t *testing.T) {
	e := newTestServer(t, &mockQuerier{}, ServerOptions{}, fakePinger{})

	rec := do(e, http.MethodGet, "/api/2025/words/Hello", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"word": "hello", "total": 1, "buckets": {"1735689600": 1}}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/2025/words/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "Word not found"}`, rec.Body.String())
}

func TestLeaderboardPaging(t *testing.T) {
	e := newTestServer(t, &mockQuerier{}, ServerOptions{}, fakePinger{})

	rec := do(e, http.MethodGet, "/api/2025/leaderboard?kind=messages&page=2&per_page=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []struct {
			MessageID string `json:"message_id"`
			Rank      int64  `json:"rank"`
		} `json:"items"`
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.TotalCount)
	require.Len(t, page.Items, 10)
	assert.Equal(t, int64(11), page.Items[0].Rank)
	assert.Equal(t, "110", page.Items[0].MessageID)

	rec = do(e, http.MethodGet, "/api/2025/leaderboard?kind=messages&page=9", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)

	rec = do(e, http.MethodGet, "/api/2025/leaderboard?kind=emoji", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/2025/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestLikeRoutes(t *testing.T) {
	q := &mockQuerier{}
	e := newTestServer(t, q, ServerOptions{}, fakePinger{})

	rec := do(e, http.MethodPost, "/api/2025/likes", `{"id": "5", "is_attachment": true}`, asAlly)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	require.Len(t, q.liked, 1)
	assert.Equal(t, int64(5), q.liked[0].EntityID)
	assert.Equal(t, int64(42), q.liked[0].DiscordID)

	rec = do(e, http.MethodDelete, "/api/2025/likes", `{"id": "6", "is_attachment": false}`, asAlly)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, []repository.UnlikeParams{{EntityID: 6, DiscordID: 42}}, q.unliked)

	rec = do(e, http.MethodPost, "/api/2025/likes", `{"id": "five", "is_attachment": true}`, asAlly)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/2025/likes", `{"id": "5", "is_attachment": true}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLikeRateLimit(t *testing.T) {
	e := newTestServer(t, &mockQuerier{}, ServerOptions{LikeRateLimit: 0.001}, fakePinger{})

	codes := make([]int, 3)
	for i := range codes {
		rec := do(e, http.MethodPost, "/api/2025/likes", fmt.Sprintf(`{"id": "%d", "is_attachment": true}`, i+1), asAlly)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	// another caller has its own bucket
	rec := do(e, http.MethodPost, "/api/2025/likes", `{"id": "1", "is_attachment": true}`, map[string]string{UserIDHeader: "43"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestContentValidation(t *testing.T) {
	e := newTestServer(t, &mockQuerier{}, ServerOptions{}, fakePinger{})

	testCases := []struct {
		name   string
		target string
	}{
		{name: "bad date", target: "/api/2025/time-machine?date=14-03-2025"},
		{name: "bad message id", target: "/api/2025/messages/abc"},
		{name: "bad exclude", target: "/api/2025/random/attachment?exclude=1,x"},
		{name: "bad bool", target: "/api/2025/random/message?links_only=maybe"},
		{name: "bad min length", target: "/api/2025/random/message?min_length=-1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodGet, tc.target, "", nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
