package services

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/records"
	"brandflowAPI/internal/session"
)

const MaxSearchResults = 8

// SearchService looks across the caller's content history, task notes and
// courses. There is no index; every query reads the three collections.
type SearchService struct {
	store realtime.Store
}

func NewSearchService(store realtime.Store) *SearchService {
	return &SearchService{store: store}
}

func (s *SearchService) Search(ctx context.Context, sess *session.Session, query string) ([]records.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []records.SearchResult{}, nil
	}

	var (
		history []*records.ContentHistoryItem
		tasks   []*records.BusinessLogItem
		courses []*records.CourseItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		history, err = loadNewest[*records.ContentHistoryItem](gctx, s.store, realtime.HistoryPath(sess.UID))
		return err
	})
	g.Go(func() (err error) {
		tasks, err = loadNewest[*records.BusinessLogItem](gctx, s.store, realtime.BusinessLogPath(sess.UID))
		return err
	})
	g.Go(func() (err error) {
		courses, err = loadNewest[*records.CourseItem](gctx, s.store, realtime.CoursesPath(sess.UID))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]records.Record, 0, len(history)+len(tasks)+len(courses))
	for _, r := range history {
		all = append(all, r)
	}
	for _, r := range tasks {
		all = append(all, r)
	}
	for _, r := range courses {
		all = append(all, r)
	}

	results := make([]records.SearchResult, 0, MaxSearchResults)
	for _, r := range all {
		if !records.Matches(r, query) {
			continue
		}
		results = append(results, records.SearchResult{
			Category:  r.Category(),
			ID:        r.Key(),
			Title:     r.DisplayText(),
			Timestamp: r.When(),
			Record:    r,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp > results[j].Timestamp
	})
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}
	return results, nil
}
