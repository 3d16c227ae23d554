package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/user/filmlog/internal/model"
)

func at(t *testing.T, raw string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return &ts
}

func TestResolverKeys(t *testing.T) {
	r := NewResolver(time.UTC)

	linked := model.Film{Title: "Heat", Year: "1995", Permalink: "https://x/heat", WatchedAt: at(t, "2020-05-01T12:00:00Z")}
	assert.Equal(t, []string{"url:https://x/heat", "tyd:heat|1995|2020-05-01"}, r.Keys(linked))

	unlinked := model.Film{Title: "Heat", Year: "1995", Permalink: model.Sentinel}
	assert.Equal(t, []string{"tyd:heat|1995|unknown"}, r.Keys(unlinked))

	empty := model.Film{Title: "Heat"}
	assert.Len(t, r.Keys(empty), 1)
}

func TestCompositeKeyUsesReferenceZone(t *testing.T) {
	ny := newYork(t)
	f := model.Film{Title: "Heat", Year: "1995", WatchedAt: at(t, "2020-05-02T02:00:00Z")}

	assert.Equal(t, "tyd:heat|1995|2020-05-02", NewResolver(time.UTC).CompositeKey(f))
	assert.Equal(t, "tyd:heat|1995|2020-05-01", NewResolver(ny).CompositeKey(f))
}

func TestCompositeKeyNormalizesTitle(t *testing.T) {
	r := NewResolver(nil)
	a := model.Film{Title: "Amélie (2001)", Year: "2001"}
	b := model.Film{Title: "amelie", Year: "2001"}
	assert.Equal(t, r.CompositeKey(a), r.CompositeKey(b))
}
