package store

import (
	"context"
	"log"
	"time"
)

func (t *Transcript) StartDuration() time.Duration {
	return time.Duration(t.Start) * time.Second
}

// StartSeconds is the start offset rounded down to whole seconds, the form
// the watch page's t= parameter takes.
func (t *Transcript) StartSeconds() int {
	return int(t.Start)
}

// TranscriptsByIds is an optimized implementation to retrieve a lot of transcripts by their ID's.
func (q *Queries) TranscriptsByIds(
	ctx context.Context,
	ids []int64,
) (map[int64]*Transcript, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		log.Printf("[INFO]: transcripts query took %s", time.Since(start))
	}()

	query := "SELECT id, video_id, start, duration, text FROM transcripts WHERE id IN ("
	for i := range ids {
		query += "?"

		if i == len(ids)-1 {
			query += ");"
		} else {
			query += ","
		}
	}

	ifs := make([]interface{}, len(ids))
	for i := range ids {
		ifs[i] = ids[i]
	}

	rows, err := q.db.QueryContext(ctx, query, ifs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make(map[int64]*Transcript, len(ids))
	for rows.Next() {
		var i Transcript
		if err := rows.Scan(
			&i.ID,
			&i.VideoID,
			&i.Start,
			&i.Duration,
			&i.Text,
		); err != nil {
			return nil, err
		}
		items[i.ID] = &i
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// VideosWithWords is an optimized query to retrieve videos that might be a
// match of a query, words must be stemmed.
func (q *Queries) VideosWithWords(ctx context.Context, words []string) ([]Video, error) {
	if len(words) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		log.Printf("[INFO]: videos query took %s", time.Since(start))
	}()

	// Stemming only trims edge punctuation, a word can still carry quotes,
	// so the patterns have to be bound as parameters.
	query := "SELECT id, title, language, transcript_type, searchable_transcript, fetched_at FROM videos WHERE 1=1"
	args := make([]interface{}, 0, len(words))
	for _, word := range words {
		query += " AND searchable_transcript LIKE ?"
		args = append(args, "%"+word+"%")
	}
	query += ";"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Video
	for rows.Next() {
		var i Video
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Language,
			&i.TranscriptType,
			&i.SearchableTranscript,
			&i.FetchedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
