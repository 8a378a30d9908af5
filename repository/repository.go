package repository

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by FindByID when no row matches.
var ErrNotFound = errors.New("record not found")

// Page describes a list request. OrderBy must be a column name chosen by
// the calling code, never a request string; it is rendered as a quoted
// column so no request input is ever concatenated into SQL.
type Page struct {
	Page    int
	Limit   int
	OrderBy string
	Desc    bool
}

// Pagination is the slice of list metadata returned alongside results.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Repository is the typed find/list/create/update surface shared by the
// boundary entities (animals, campaigns, products, comments, notices). The
// settlement engine does not go through it; money paths keep their own
// transactional queries.
type Repository[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// FindByID returns the row with the given primary key.
func (r *Repository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var out T
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// List returns a filtered page of rows plus pagination metadata. Filter
// keys are column names supplied by the caller's code path; values come
// from the request.
func (r *Repository[T]) List(ctx context.Context, filter map[string]interface{}, page Page) ([]T, *Pagination, error) {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 || page.Limit > 100 {
		page.Limit = 10
	}

	var model T
	query := r.db.WithContext(ctx).Model(&model)
	if len(filter) > 0 {
		query = query.Where(filter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	if page.OrderBy != "" {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: page.OrderBy},
			Desc:   page.Desc,
		})
	}

	var rows []T
	offset := (page.Page - 1) * page.Limit
	if err := query.Limit(page.Limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	return rows, &Pagination{
		Page:  page.Page,
		Limit: page.Limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(page.Limit))),
	}, nil
}

// Create inserts the row and backfills generated fields.
func (r *Repository[T]) Create(ctx context.Context, row *T) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Update applies the given column changes to the row with the given id.
func (r *Repository[T]) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	var model T
	res := r.db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
