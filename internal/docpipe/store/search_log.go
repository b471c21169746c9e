package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docpipe/internal/model"
)

type searchLogs struct {
	db *gorm.DB
}

func newSearchLogs(db *gorm.DB) *searchLogs {
	return &searchLogs{db}
}

// CreateQuery records one search query.
func (s *searchLogs) CreateQuery(ctx context.Context, q *model.SearchQuery) error {
	return s.db.WithContext(ctx).Create(q).Error
}

// CreateResults records the ranked results of a query.
func (s *searchLogs) CreateResults(ctx context.Context, results []*model.SearchResult) error {
	if len(results) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&results).Error
}

// GetQuery retrieves a logged query by ID.
func (s *searchLogs) GetQuery(ctx context.Context, id string) (*model.SearchQuery, error) {
	var q model.SearchQuery
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQueries lists logged queries, newest first. A zero userID lists
// queries from all users.
func (s *searchLogs) ListQueries(ctx context.Context, userID uint64, offset, limit int) (int64, []*model.SearchQuery, error) {
	var count int64
	var list []*model.SearchQuery

	q := s.db.WithContext(ctx).Model(&model.SearchQuery{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}

	if err := q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return 0, nil, err
	}

	return count, list, nil
}
