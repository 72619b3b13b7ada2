// Package store is the sqlite persistence layer for the transcript archive.
package store

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Video struct {
	ID                   string
	Title                string
	Language             string
	TranscriptType       string
	SearchableTranscript string
	FetchedAt            time.Time
}

type Transcript struct {
	ID       int64
	VideoID  string
	Start    float64
	Duration float64
	Text     string
}

const createVideo = `INSERT INTO videos (
	id, title, language, transcript_type, searchable_transcript, fetched_at
) VALUES (?, ?, ?, ?, ?, ?)`

type CreateVideoParams struct {
	ID                   string
	Title                string
	Language             string
	TranscriptType       string
	SearchableTranscript string
	FetchedAt            time.Time
}

func (q *Queries) CreateVideo(ctx context.Context, arg CreateVideoParams) error {
	_, err := q.db.ExecContext(ctx, createVideo,
		arg.ID,
		arg.Title,
		arg.Language,
		arg.TranscriptType,
		arg.SearchableTranscript,
		arg.FetchedAt,
	)
	return err
}

const createTranscript = `INSERT INTO transcripts (
	video_id, start, duration, text
) VALUES (?, ?, ?, ?)`

type CreateTranscriptParams struct {
	VideoID  string
	Start    float64
	Duration float64
	Text     string
}

func (q *Queries) CreateTranscript(ctx context.Context, arg CreateTranscriptParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTranscript,
		arg.VideoID,
		arg.Start,
		arg.Duration,
		arg.Text,
	)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

const setSearchableTranscript = `UPDATE videos SET searchable_transcript = ? WHERE id = ?`

type SetSearchableTranscriptParams struct {
	ID                   string
	SearchableTranscript string
}

func (q *Queries) SetSearchableTranscript(ctx context.Context, arg SetSearchableTranscriptParams) error {
	_, err := q.db.ExecContext(ctx, setSearchableTranscript, arg.SearchableTranscript, arg.ID)
	return err
}

const getVideo = `SELECT id, title, language, transcript_type, searchable_transcript, fetched_at
FROM videos WHERE id = ?`

func (q *Queries) Video(ctx context.Context, id string) (Video, error) {
	row := q.db.QueryRowContext(ctx, getVideo, id)
	var i Video
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Language,
		&i.TranscriptType,
		&i.SearchableTranscript,
		&i.FetchedAt,
	)
	return i, err
}

const listVideos = `SELECT id, title, language, transcript_type, searchable_transcript, fetched_at
FROM videos ORDER BY fetched_at DESC`

func (q *Queries) Videos(ctx context.Context) ([]Video, error) {
	rows, err := q.db.QueryContext(ctx, listVideos)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteVideo = `DELETE FROM videos WHERE id = ?`

func (q *Queries) DeleteVideo(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteVideo, id)
	return err
}

const deleteVideoTranscripts = `DELETE FROM transcripts WHERE video_id = ?`

// DeleteVideoTranscripts exists because sqlite foreign key cascades are off
// unless the pragma is enabled per connection.
func (q *Queries) DeleteVideoTranscripts(ctx context.Context, videoId string) error {
	_, err := q.db.ExecContext(ctx, deleteVideoTranscripts, videoId)
	return err
}
