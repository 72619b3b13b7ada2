// Package archive keeps a local sqlite record of every fetched transcript
// so it can be searched later without hitting YouTube again.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tavanh/ytscript/internal/stem"
	"github.com/tavanh/ytscript/internal/store"
	"github.com/tavanh/ytscript/internal/tube"
)

// Open opens (creating if needed) the archive database at path and brings
// its schema up to date.
func Open(path string) (*sql.DB, *store.Queries, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating archive directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive %q: %w", path, err)
	}

	if err := store.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating archive %q: %w", path, err)
	}

	return db, store.New(db), nil
}

type Entry struct {
	VideoID  string
	Title    string
	Language string
	Type     store.TranscriptType
}

// Record stores the fetched transcript in one transaction: the video row,
// one transcripts row per segment, and the searchable transcript, which
// interleaves ~id~ markers with the stemmed text of each line so a search
// hit can be traced back to its row and start offset.
//
// Fetching the same video again replaces the earlier record.
func Record(ctx context.Context, db *sql.DB, queries *store.Queries, entry Entry, segments []tube.Segment) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // Rollback, ignore error which is returned if tx is committed.

	qtx := queries.WithTx(tx)

	if err := qtx.DeleteVideoTranscripts(ctx, entry.VideoID); err != nil {
		return fmt.Errorf("removing earlier transcript rows for %q: %w", entry.VideoID, err)
	}
	if err := qtx.DeleteVideo(ctx, entry.VideoID); err != nil {
		return fmt.Errorf("removing earlier record for %q: %w", entry.VideoID, err)
	}

	if err := qtx.CreateVideo(ctx, store.CreateVideoParams{
		ID:             entry.VideoID,
		Title:          entry.Title,
		Language:       entry.Language,
		TranscriptType: string(entry.Type),
		FetchedAt:      time.Now(),
	}); err != nil {
		return fmt.Errorf("creating video %q: %w", entry.VideoID, err)
	}

	searchable := strings.Builder{}
	for _, segment := range segments {
		txt := strings.TrimSpace(segment.Text)
		if txt == "" {
			continue
		}

		id, err := qtx.CreateTranscript(ctx, store.CreateTranscriptParams{
			VideoID:  entry.VideoID,
			Start:    segment.Start,
			Duration: segment.Duration,
			Text:     txt,
		})
		if err != nil {
			return fmt.Errorf("creating transcript entry %q: %w", txt, err)
		}

		searchable.WriteString(fmt.Sprintf("~%d~", id))
		searchable.WriteString(stem.StemLine(txt))
	}

	if err := qtx.SetSearchableTranscript(ctx, store.SetSearchableTranscriptParams{
		ID:                   entry.VideoID,
		SearchableTranscript: searchable.String(),
	}); err != nil {
		return fmt.Errorf("setting searchable transcript: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
