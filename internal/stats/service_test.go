package stats

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jjckrbbt/wrapped/internal/config"
	"github.com/jjckrbbt/wrapped/internal/logger"
	"github.com/jjckrbbt/wrapped/internal/mentiongraph"
	"github.com/jjckrbbt/wrapped/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockQuerier struct {
	repository.Querier

	users        map[int64]repository.User
	global       repository.GlobalStatsRow
	notable      []repository.NotableContentRow
	mentionRows  []repository.MentionEdgeRow
	static       map[string][]byte
	words        map[string][]byte
	messages     map[int64]repository.MessageRow
	messageLikes map[int64]int64
	rangeParams  []repository.ListInRangeParams
	leaderboard  atomic.Int32
	liked        []repository.LikeParams
}

func (m *mockQuerier) GetUser(ctx context.Context, arg repository.GetUserParams) (repository.User, error) {
	u, ok := m.users[arg.UserID]
	if !ok {
		return repository.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockQuerier) GetGlobalStats(ctx context.Context, year int32) (repository.GlobalStatsRow, error) {
	return m.global, nil
}

func (m *mockQuerier) ListNotableContent(ctx context.Context, arg repository.ListNotableContentParams) ([]repository.NotableContentRow, error) {
	return m.notable, nil
}

func (m *mockQuerier) ListMentionEdges(ctx context.Context, year int32) ([]repository.MentionEdgeRow, error) {
	return m.mentionRows, nil
}

func (m *mockQuerier) GetStatic(ctx context.Context, arg repository.GetStaticParams) ([]byte, error) {
	v, ok := m.static[arg.Key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return v, nil
}

func (m *mockQuerier) GetWordUsage(ctx context.Context, arg repository.GetWordUsageParams) ([]byte, error) {
	v, ok := m.words[arg.Word]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return v, nil
}

func (m *mockQuerier) GetMessage(ctx context.Context, arg repository.GetMessageParams) (repository.MessageRow, error) {
	r, ok := m.messages[arg.MessageID]
	if !ok {
		return repository.MessageRow{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockQuerier) CountMessageLikes(ctx context.Context, id int64) (int64, error) {
	return m.messageLikes[id], nil
}

func (m *mockQuerier) ListMessagesInRange(ctx context.Context, arg repository.ListInRangeParams) ([]repository.MessageRow, error) {
	m.rangeParams = append(m.rangeParams, arg)
	return nil, nil
}

func (m *mockQuerier) ListAttachmentsInRange(ctx context.Context, arg repository.ListInRangeParams) ([]repository.AttachmentRow, error) {
	m.rangeParams = append(m.rangeParams, arg)
	return []repository.AttachmentRow{{ID: 9, FileName: "cat.png", SenderHandle: "alice"}}, nil
}

func (m *mockQuerier) ListAttachmentLeaderboard(ctx context.Context, year int32) ([]repository.AttachmentLeaderboardRow, error) {
	m.leaderboard.Add(1)
	return []repository.AttachmentLeaderboardRow{{Rank: 1, AttachmentID: 9, FileName: "cat.png", SenderHandle: "alice", LikeCount: 4}}, nil
}

func (m *mockQuerier) ListMessageLeaderboard(ctx context.Context, year int32) ([]repository.MessageLeaderboardRow, error) {
	return nil, nil
}

func (m *mockQuerier) LikeMessage(ctx context.Context, arg repository.LikeParams) error {
	m.liked = append(m.liked, arg)
	return nil
}

func testProfiles(t *testing.T) *config.Profiles {
	t.Helper()
	profiles, err := config.NewProfiles(config.YearProfile{
		Year:               2025,
		AvatarURL:          "https://cdn.test/{year}/avatars/{name}.png",
		AttachmentURL:      "https://cdn.test/{year}/attachments/{id}/{file_name}",
		EmojiURL:           "https://cdn.test/{year}/emojis/{id}{ext}",
		VideoExtensions:    []string{"mp4"},
		ExcludedExtensions: []string{"exe"},
	})
	require.NoError(t, err)
	return profiles
}

func newTestService(t *testing.T, q *mockQuerier) *Service {
	t.Helper()
	s := NewService(q, testProfiles(t), logger.Discard())
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return s
}

func TestRankEmojis(t *testing.T) {
	u := urls{profile: config.YearProfile{Year: 2025, EmojiURL: "https://cdn.test/{year}/emojis/{id}{ext}"}}
	raw := []byte(`{
		"111": {"native": false, "animated": true, "inline": 2, "reactions": 1},
		"😀": {"native": true, "animated": false, "inline": 10, "reactions": 5},
		"222": {"native": false, "animated": false, "inline": 0, "reactions": 3}
	}`)

	entries, err := rankEmojis(raw, u)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "😀", entries[0].EmojiID)
	assert.Nil(t, entries[0].URL)

	// 111 and 222 tie at 3 uses; ties keep id order.
	assert.Equal(t, "111", entries[1].EmojiID)
	require.NotNil(t, entries[1].URL)
	assert.Equal(t, "https://cdn.test/2025/emojis/111.gif", *entries[1].URL)
	assert.Equal(t, "222", entries[2].EmojiID)
	assert.Equal(t, "https://cdn.test/2025/emojis/222.png", *entries[2].URL)

	empty, err := rankEmojis(nil, u)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestShare(t *testing.T) {
	testCases := []struct {
		name        string
		part, total int64
		want        string
	}{
		{name: "zero total", part: 5, total: 0, want: "0"},
		{name: "third", part: 1, total: 3, want: "33.33"},
		{name: "two thirds", part: 2, total: 3, want: "66.67"},
		{name: "whole", part: 8, total: 8, want: "100"},
		{name: "half", part: 1, total: 2, want: "50"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, share(tc.part, tc.total).String())
		})
	}
}

func TestStatsBundle(t *testing.T) {
	q := &mockQuerier{
		users: map[int64]repository.User{
			42: {
				UserID:                 42,
				UserNickname:           "Ally",
				MessagesSent:           25,
				MentionsReceived:       1,
				ReactionsReceived:      0,
				AttachmentsSent:        2,
				AttachmentsSize:        1536,
				MostMentionedGivenName: "bob smith",
			},
		},
		global: repository.GlobalStatsRow{
			TotalMessages:        100,
			TotalMentions:        3,
			TotalReactions:       0,
			TotalAttachments:     8,
			TotalAttachmentsSize: 1 << 20,
		},
		notable: []repository.NotableContentRow{
			{MessageID: 1, Content: "look", ChannelName: "general", AuthorName: "alice", TotalReactions: 9,
				AttachmentID: pgtype.Int8{Int64: 7, Valid: true}, FileName: pgtype.Text{String: "a b.png", Valid: true}},
			{MessageID: 2, Content: "hello", ChannelName: "general", AuthorName: "alice", TotalReactions: 3},
		},
	}
	s := newTestService(t, q)

	bundle, err := s.Stats(context.Background(), 2025, 42)
	require.NoError(t, err)

	assert.Equal(t, "Ally", bundle.UserStats.UserNickname)
	assert.Equal(t, "https://cdn.test/2025/avatars/bob%20smith.png", bundle.UserStats.MostMentionedGivenAvatarURL)
	assert.Equal(t, int64(100), bundle.GlobalStats.TotalMessages)

	require.Len(t, bundle.NotableContent, 2)
	assert.Equal(t, NotableAttachment, bundle.NotableContent[0].Type)
	assert.Equal(t, "7", bundle.NotableContent[0].AttachmentID)
	assert.Equal(t, "https://cdn.test/2025/attachments/7/a%20b.png", bundle.NotableContent[0].URL)
	assert.Equal(t, "look", bundle.NotableContent[0].RelatedMessageContent)
	assert.Equal(t, NotableMessage, bundle.NotableContent[1].Type)
	assert.Equal(t, "2", bundle.NotableContent[1].MessageID)

	assert.Equal(t, "25", bundle.Derived.MessageShare.String())
	assert.Equal(t, "33.33", bundle.Derived.MentionShare.String())
	assert.Equal(t, "0", bundle.Derived.ReactionShare.String())
	assert.Equal(t, "25", bundle.Derived.AttachmentShare.String())
	assert.Equal(t, "1.5 KiB", bundle.Derived.AttachmentsSizeHuman)
	assert.Equal(t, "1.0 MiB", bundle.Derived.TotalAttachmentsSizeHuman)
}

func TestStatsErrors(t *testing.T) {
	s := newTestService(t, &mockQuerier{})

	_, err := s.Stats(context.Background(), 2025, 404)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = s.Stats(context.Background(), 1999, 1)
	assert.True(t, errors.Is(err, ErrUnknownYear), "got %v", err)
}

func TestLikePurgesLeaderboard(t *testing.T) {
	q := &mockQuerier{}
	s := newTestService(t, q)
	ctx := context.Background()

	lb, err := s.Leaderboard(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, lb.Attachments, 1)
	assert.Equal(t, int64(1), lb.Attachments[0].Rank)
	assert.Equal(t, "https://cdn.test/2025/attachments/9/cat.png", lb.Attachments[0].URL)
	assert.NotNil(t, lb.Messages)

	_, err = s.Leaderboard(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, int32(1), q.leaderboard.Load())

	require.NoError(t, s.Like(ctx, 42, "77", false))
	require.Len(t, q.liked, 1)
	assert.Equal(t, repository.LikeParams{EntityID: 77, DiscordID: 42, Timestamp: 1_700_000_000}, q.liked[0])

	_, err = s.Leaderboard(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, int32(2), q.leaderboard.Load())
}

func TestLikeRejectsBadID(t *testing.T) {
	s := newTestService(t, &mockQuerier{})
	err := s.Like(context.Background(), 42, "abc", true)
	assert.True(t, errors.Is(err, ErrInvalidID))
}

func TestMessage(t *testing.T) {
	q := &mockQuerier{
		messages: map[int64]repository.MessageRow{
			5: {MessageID: 5, Content: "hi", AuthorID: 42, AuthorName: "alice", ChannelID: 3, ChannelName: "general", Timestamp: 100},
		},
		messageLikes: map[int64]int64{5: 2},
	}
	s := newTestService(t, q)

	m, err := s.Message(context.Background(), 2025, 5)
	require.NoError(t, err)
	assert.Equal(t, MessageInfo{
		MessageID:       "5",
		Content:         "hi",
		SenderID:        "42",
		SenderHandle:    "alice",
		SenderAvatarURL: "https://cdn.test/2025/avatars/alice.png",
		Timestamp:       100,
		Likes:           2,
		ChannelID:       "3",
		ChannelName:     "general",
	}, m)

	_, err = s.Message(context.Background(), 2025, 6)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTimeMachineUsesUTCDay(t *testing.T) {
	q := &mockQuerier{}
	s := newTestService(t, q)

	date := time.Date(2025, 3, 14, 15, 30, 0, 0, time.FixedZone("x", 3600))
	tm, err := s.TimeMachine(context.Background(), 2025, date)
	require.NoError(t, err)

	require.Len(t, q.rangeParams, 2)
	start := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, repository.ListInRangeParams{Start: start, End: start + 86400, Year: 2025, Limit: 3}, q.rangeParams[0])
	assert.Equal(t, int32(5), q.rangeParams[1].Limit)

	require.Len(t, tm.Attachments, 1)
	assert.Equal(t, int64(0), tm.Attachments[0].Likes)
	assert.NotNil(t, tm.Messages)
}

func TestCharts(t *testing.T) {
	q := &mockQuerier{static: map[string][]byte{
		KeyMessageBuckets: []byte(`{"1735689600": 4}`),
		KeyMentionBuckets: []byte(`{"1735689600": 1}`),
	}}
	s := newTestService(t, q)

	charts, err := s.Charts(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, Buckets{"1735689600": 4}, charts.MessageBuckets)
	assert.Equal(t, Buckets{}, charts.ReactionBuckets)
	assert.Equal(t, Buckets{"1735689600": 1}, charts.MentionBuckets)
}

func TestWord(t *testing.T) {
	q := &mockQuerier{words: map[string][]byte{
		"hello": []byte(`{"total": 3, "buckets": {"1735689600": 3}}`),
	}}
	s := newTestService(t, q)

	usage, err := s.Word(context.Background(), 2025, " HeLLo ")
	require.NoError(t, err)
	assert.Equal(t, WordUsage{Word: "hello", Total: 3, Buckets: Buckets{"1735689600": 3}}, usage)

	_, err = s.Word(context.Background(), 2025, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMentionGraph(t *testing.T) {
	q := &mockQuerier{mentionRows: []repository.MentionEdgeRow{
		{UserName: "A", MostMentionedGivenName: "B", MostMentionedGivenCount: 1},
		{UserName: "B", MostMentionedGivenName: "A", MostMentionedGivenCount: 2},
	}}
	s := newTestService(t, q)
	ctx := context.Background()

	edges, err := s.MentionEdges(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "https://cdn.test/2025/avatars/A.png", edges[0].FromUserAvatarURL)
	assert.Equal(t, "https://cdn.test/2025/avatars/B.png", edges[0].ToUserAvatarURL)

	g, err := s.MentionGraph(ctx, 2025, mentiongraph.ModeDirectional)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "A-B", g.Edges[0].ID)
	assert.Equal(t, "1 + 2", g.Edges[0].Label)
	assert.Equal(t, 3, g.Edges[0].Weight)
}

type blockingGlobalQuerier struct {
	*mockQuerier
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingGlobalQuerier) GetGlobalStats(ctx context.Context, year int32) (repository.GlobalStatsRow, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	select {
	case <-b.release:
		return b.global, nil
	case <-ctx.Done():
		return repository.GlobalStatsRow{}, ctx.Err()
	}
}

func TestGlobalStatsSharedLoadOutlivesCancelledCaller(t *testing.T) {
	q := &blockingGlobalQuerier{
		mockQuerier: &mockQuerier{global: repository.GlobalStatsRow{TotalMessages: 100}},
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	s := NewService(q, testProfiles(t), logger.Discard())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.GlobalStats(firstCtx, 2025)
		firstErr <- err
	}()
	<-q.started

	type result struct {
		gs  GlobalStats
		err error
	}
	second := make(chan result, 1)
	go func() {
		gs, err := s.GlobalStats(context.Background(), 2025)
		second <- result{gs, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(q.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, int64(100), res.gs.TotalMessages)
	assert.Equal(t, int32(1), q.calls.Load())
}

type racingLeaderboardQuerier struct {
	*mockQuerier
	likes   atomic.Int64
	block   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (r *racingLeaderboardQuerier) ListAttachmentLeaderboard(ctx context.Context, year int32) ([]repository.AttachmentLeaderboardRow, error) {
	count := r.likes.Load()
	if r.block.CompareAndSwap(true, false) {
		close(r.read)
		<-r.release
	}
	return []repository.AttachmentLeaderboardRow{{Rank: 1, AttachmentID: 9, FileName: "cat.png", LikeCount: count}}, nil
}

func (r *racingLeaderboardQuerier) LikeMessage(ctx context.Context, arg repository.LikeParams) error {
	r.likes.Add(1)
	return nil
}

func TestLikeDuringLeaderboardLoadIsNotCachedStale(t *testing.T) {
	q := &racingLeaderboardQuerier{
		mockQuerier: &mockQuerier{},
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
	q.block.Store(true)
	s := NewService(q, testProfiles(t), logger.Discard())
	ctx := context.Background()

	stale := make(chan Leaderboard, 1)
	go func() {
		lb, err := s.Leaderboard(ctx, 2025)
		assert.NoError(t, err)
		stale <- lb
	}()
	<-q.read

	require.NoError(t, s.Like(ctx, 42, "77", false))

	lb, err := s.Leaderboard(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lb.Attachments[0].Likes)

	close(q.release)
	assert.Equal(t, int64(0), (<-stale).Attachments[0].Likes)

	lb, err = s.Leaderboard(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lb.Attachments[0].Likes)
}
