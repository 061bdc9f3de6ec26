package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeItem struct {
	score     int64
	createdAt time.Time
}

func (f fakeItem) GetScore() int64 { return f.score }
func (f fakeItem) Age() time.Time  { return f.createdAt }

func TestRank(t *testing.T) {
	r := require.New(t)
	now, _ := time.Parse(time.RFC3339, "2024-06-01T12:00:00Z")

	fresh := fakeItem{score: 10, createdAt: now.Add(-1 * time.Hour)}
	stale := fakeItem{score: 10, createdAt: now.Add(-48 * time.Hour)}

	r.Greater(Rank(fresh, 1.8, 2, now), Rank(stale, 1.8, 2, now),
		"same score, the fresher item must rank higher")

	low := fakeItem{score: 2, createdAt: now.Add(-1 * time.Hour)}
	high := fakeItem{score: 20, createdAt: now.Add(-1 * time.Hour)}

	r.Greater(Rank(high, 1.8, 2, now), Rank(low, 1.8, 2, now),
		"same age, the higher score must rank higher")
}
