package processing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jjckrbbt/wrapped/internal/repository"
	"github.com/jjckrbbt/wrapped/internal/stats"
)

// Result is the static data derived from one year of messages.
type Result struct {
	Charts   stats.Charts
	Words    map[string]*stats.WordUsage
	Messages int
}

// Aggregator folds messages into daily buckets and word usage.
type Aggregator struct {
	res Result
}

func NewAggregator() *Aggregator {
	return &Aggregator{res: Result{
		Charts: stats.Charts{
			MessageBuckets:  stats.Buckets{},
			ReactionBuckets: stats.Buckets{},
			MentionBuckets:  stats.Buckets{},
		},
		Words: map[string]*stats.WordUsage{},
	}}
}

// StartOfDay truncates a unix timestamp to 00:00 UTC of its day.
func StartOfDay(ts int64) int64 {
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// Add counts one message.
func (a *Aggregator) Add(m repository.BucketMessageRow) error {
	mentions, err := countMentions(m.Mentions)
	if err != nil {
		return err
	}
	bucket := strconv.FormatInt(StartOfDay(m.Timestamp), 10)

	a.res.Charts.MessageBuckets[bucket]++
	a.res.Charts.ReactionBuckets[bucket] += int64(m.TotalReactions)
	a.res.Charts.MentionBuckets[bucket] += int64(mentions)

	for _, w := range strings.Split(strings.ReplaceAll(m.Content, "\n", " "), " ") {
		if w == "" {
			continue
		}
		w = strings.ToLower(w)
		usage, ok := a.res.Words[w]
		if !ok {
			usage = &stats.WordUsage{Word: w, Buckets: stats.Buckets{}}
			a.res.Words[w] = usage
		}
		usage.Total++
		usage.Buckets[bucket]++
	}

	a.res.Messages++
	return nil
}

func (a *Aggregator) Result() Result {
	return a.res
}

func countMentions(raw []byte) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var mentions []json.RawMessage
	if err := json.Unmarshal(raw, &mentions); err != nil {
		return 0, fmt.Errorf("mentions is not a JSON array: %w", err)
	}
	return len(mentions), nil
}
