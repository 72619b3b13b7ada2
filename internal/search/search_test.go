package search_test

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/profile"

	"github.com/tavanh/ytscript/internal/archive"
	"github.com/tavanh/ytscript/internal/search"
	"github.com/tavanh/ytscript/internal/store"
	"github.com/tavanh/ytscript/internal/tube"
)

func testArchive(t testing.TB) (*sql.DB, *store.Queries) {
	t.Helper()

	db, queries, err := archive.Open(filepath.Join(t.TempDir(), "archive.sqlite"))
	if err != nil {
		t.Fatalf("opening test archive: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, queries
}

func quietLogs(t testing.TB) {
	t.Helper()

	buf := bytes.Buffer{}
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
}

func TestSearchRoundtrip(t *testing.T) {
	quietLogs(t)
	ctx := context.Background()
	db, queries := testArchive(t)

	entry := archive.Entry{VideoID: "dQw4w9WgXcQ", Title: "Test Video", Language: "en", Type: store.TubeManual}
	segments := []tube.Segment{
		{Text: "Thanks for watching everyone", Start: 0, Duration: 2.5},
		{Text: "see you next time", Start: 2.5, Duration: 3},
	}
	if err := archive.Record(ctx, db, queries, entry, segments); err != nil {
		t.Fatalf("recording: %v", err)
	}

	// Different word forms must still match through stemming.
	res, err := search.Search(ctx, queries, "thank for watched")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}

	if len(res) != 1 {
		t.Fatalf("expected 1 result, got %d", len(res))
	}

	if res[0].Video.ID != "dQw4w9WgXcQ" {
		t.Errorf("matched video %q", res[0].Video.ID)
	}

	if len(res[0].Matches) != 1 {
		t.Fatalf("expected 1 matched line, got %d", len(res[0].Matches))
	}

	match := res[0].Matches[0]
	if match.Text != "Thanks for watching everyone" || match.Start != 0 {
		t.Errorf("unexpected match: %+v", match)
	}

	none, err := search.Search(ctx, queries, "pineapple")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}

	if len(none) != 0 {
		t.Errorf("expected no results, got %d", len(none))
	}
}

func TestRecordReplacesEarlierFetch(t *testing.T) {
	quietLogs(t)
	ctx := context.Background()
	db, queries := testArchive(t)

	entry := archive.Entry{VideoID: "dQw4w9WgXcQ", Title: "Test Video", Language: "en", Type: store.TubeAuto}
	first := []tube.Segment{{Text: "the original caption", Start: 0, Duration: 1}}
	if err := archive.Record(ctx, db, queries, entry, first); err != nil {
		t.Fatalf("recording: %v", err)
	}

	second := []tube.Segment{{Text: "the replacement caption", Start: 0, Duration: 1}}
	if err := archive.Record(ctx, db, queries, entry, second); err != nil {
		t.Fatalf("re-recording: %v", err)
	}

	res, err := search.Search(ctx, queries, "original")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("stale caption still matches after re-record")
	}

	res, err = search.Search(ctx, queries, "replacement")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(res) != 1 {
		t.Errorf("expected the re-recorded caption to match, got %d results", len(res))
	}
}

func TestSearchQuotedQuery(t *testing.T) {
	quietLogs(t)
	ctx := context.Background()
	db, queries := testArchive(t)

	entry := archive.Entry{VideoID: "dQw4w9WgXcQ", Title: "Test Video", Language: "en", Type: store.TubeManual}
	segments := []tube.Segment{{Text: "say hello now", Start: 0, Duration: 2}}
	if err := archive.Record(ctx, db, queries, entry, segments); err != nil {
		t.Fatalf("recording: %v", err)
	}

	// Edge quotes are trimmed before stemming and still match.
	res, err := search.Search(ctx, queries, `say "hello" now`)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(res) != 1 {
		t.Errorf("expected 1 result, got %d", len(res))
	}

	// An embedded quote reaches the LIKE pattern verbatim and must not
	// break the query.
	res, err = search.Search(ctx, queries, `he"llo world`)
	if err != nil {
		t.Fatalf("searching with embedded quote: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("expected no results, got %d", len(res))
	}
}

func TestVideoMatcher(t *testing.T) {
	vid := &store.Video{SearchableTranscript: "~7~hello world~8~more text"}

	ids, err := search.Video(vid, "world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("ids = %v, want [7]", ids)
	}
}

func TestVideoMatcherBoundary(t *testing.T) {
	// A match spanning two lines reports the second line's ID.
	vid := &store.Video{SearchableTranscript: "~7~abc de~8~f ghi"}

	ids, err := search.Video(vid, "def")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ids) != 1 || ids[0] != 8 {
		t.Errorf("ids = %v, want [8]", ids)
	}
}

func TestVideoMatcherRepeatedPrefix(t *testing.T) {
	// The failed partial match on "aa" must restart on the second "a".
	vid := &store.Video{SearchableTranscript: "~7~aab"}

	ids, err := search.Video(vid, "ab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("ids = %v, want [7]", ids)
	}
}

func TestVideoMatcherMatchAtEnd(t *testing.T) {
	vid := &store.Video{SearchableTranscript: "~9~ends with match"}

	ids, err := search.Video(vid, "match")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ids) != 1 || ids[0] != 9 {
		t.Errorf("ids = %v, want [9]", ids)
	}
}

func TestVideoMatcherEmptyQuery(t *testing.T) {
	vid := &store.Video{SearchableTranscript: "~7~hello"}

	ids, err := search.Video(vid, "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ids) != 0 {
		t.Errorf("empty query matched: %v", ids)
	}
}

func BenchmarkSearch(b *testing.B) {
	quietLogs(b)
	ctx := context.Background()
	db, queries := testArchive(b)

	for i := 0; i < 100; i++ {
		entry := archive.Entry{
			VideoID:  fmt.Sprintf("video%06d", i),
			Title:    fmt.Sprintf("Video %d", i),
			Language: "en",
			Type:     store.TubeAuto,
		}
		segments := []tube.Segment{
			{Text: "welcome back to the channel", Start: 0, Duration: 2},
			{Text: "thanks for watching", Start: 2, Duration: 2},
			{Text: "see you in the next one", Start: 4, Duration: 2},
		}
		if err := archive.Record(ctx, db, queries, entry, segments); err != nil {
			b.Fatalf("recording: %v", err)
		}
	}

	defer profile.Start(profile.MemProfile, profile.ProfilePath(b.TempDir())).Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := search.Search(ctx, queries, "thanks for watching"); err != nil {
			b.Fatalf("searching: %v", err)
		}
	}
}
