package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docpipe/internal/model"
)

type documents struct {
	db *gorm.DB
}

func newDocuments(db *gorm.DB) *documents {
	return &documents{db}
}

// Create creates a new document record.
func (d *documents) Create(ctx context.Context, doc *model.Document) error {
	return d.db.WithContext(ctx).Create(doc).Error
}

// Update updates an existing document record.
func (d *documents) Update(ctx context.Context, doc *model.Document) error {
	return d.db.WithContext(ctx).Save(doc).Error
}

// Get retrieves a document by ID.
func (d *documents) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List lists documents with pagination, newest first.
func (d *documents) List(ctx context.Context, offset, limit int) (int64, []*model.Document, error) {
	var count int64
	var docs []*model.Document

	if err := d.db.WithContext(ctx).Model(&model.Document{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}

	if err := d.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&docs).Error; err != nil {
		return 0, nil, err
	}

	return count, docs, nil
}

// ListByStatusAndMode returns documents in the given status, oldest
// first so the sweep drains the backlog in arrival order. An empty mode
// matches any mode.
func (d *documents) ListByStatusAndMode(ctx context.Context, status model.ProcessingStatus, mode model.ProcessingMode) ([]*model.Document, error) {
	var docs []*model.Document

	q := d.db.WithContext(ctx).Where("status = ?", status)
	if mode != "" {
		q = q.Where("mode = ?", mode)
	}

	if err := q.Order("created_at ASC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// CountByStatus returns document counts grouped by processing status.
func (d *documents) CountByStatus(ctx context.Context) (map[model.ProcessingStatus]int64, error) {
	type row struct {
		Status model.ProcessingStatus
		Count  int64
	}
	var rows []row

	err := d.db.WithContext(ctx).Model(&model.Document{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ProcessingStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
