// Package search finds lines in archived transcripts. Queries and stored
// text are both stemmed, so different forms of the same word match.
package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tavanh/ytscript/internal/stem"
	"github.com/tavanh/ytscript/internal/store"
)

var (
	SearchRoutines = 20
	MaxResults     = 100
)

type Result struct {
	Video   store.Video
	Matches []*store.Transcript
	ids     []int64
}

// Search scans the whole archive for the query. Candidate videos are first
// narrowed down with a words query (optimistic matches, the words have to
// appear in order and may span line boundaries), then each candidate's
// searchable transcript is scanned for the exact stemmed phrase. Results
// are sorted by fetch time, newest first.
func Search(ctx context.Context, queries *store.Queries, query string) (res []Result, err error) {
	videos, err := queries.VideosWithWords(ctx, stem.StemWords(query))
	if err != nil {
		return nil, fmt.Errorf("retrieving candidate videos: %w", err)
	}

	log.Printf("[INFO]: searching through %d optimistic video matches", len(videos))
	var group errgroup.Group
	group.SetLimit(SearchRoutines)
	var mu sync.Mutex
	for _, vid := range videos {
		vid := vid
		group.Go(func() error {
			ids, err := Video(&vid, query)
			if err != nil {
				return fmt.Errorf("searching: %w", err)
			}

			if len(ids) == 0 {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()

			res = append(res, Result{
				Video: vid,
				ids:   ids,
			})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("iterating videos: %w", err)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[j].Video.FetchedAt.Before(res[i].Video.FetchedAt)
	})

	if len(res) > MaxResults {
		log.Printf("[INFO]: %d video matches, capping to %d", len(res), MaxResults)
		res = res[:MaxResults]
	}

	all := make([]int64, 0, len(res))
	for _, r := range res {
		all = append(all, r.ids...)
	}

	ts, err := queries.TranscriptsByIds(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("querying transcripts: %w", err)
	}

	for i := range res {
		matches := make([]*store.Transcript, len(res[i].ids))
		for j, id := range res[i].ids {
			matches[j] = ts[id]
		}
		res[i].ids = nil
		res[i].Matches = matches
	}

	return res, nil
}

// Video searches for the query inside the video's searchable_transcript,
// returning the IDs of the matching transcript rows.
//
// Done in O(n) time where n is the length of the searchable_transcript.
// The ~id~ metadata regions are skipped while matching, so a phrase that
// spans two lines still matches; in that case the second line's ID is
// returned.
func Video(vid *store.Video, query string) (res []int64, err error) {
	runes := []rune(stem.StemLine(query))
	if len(runes) == 0 {
		return nil, nil
	}

	var inMeta bool
	var matching int
	var idStart int
	var idEnd int
	flush := func() error {
		id, err := strconv.ParseInt(vid.SearchableTranscript[idStart:idEnd], 10, 64)
		if err != nil {
			return fmt.Errorf("could not parse id string: %w", err)
		}

		res = append(res, id)
		matching = 0
		return nil
	}

	for i, ch := range vid.SearchableTranscript {
		if matching == len(runes) {
			if err := flush(); err != nil {
				return nil, err
			}
		}

		if ch == '~' {
			if inMeta {
				inMeta = false
				idEnd = i
			} else {
				inMeta = true
				idStart = i + 1
			}
			continue
		}

		if inMeta {
			continue
		}

		switch {
		case runes[matching] == ch:
			matching++
		case runes[0] == ch:
			// A failed partial match can still start a new one here.
			matching = 1
		default:
			matching = 0
		}
	}

	if matching == len(runes) {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	return res, nil
}
