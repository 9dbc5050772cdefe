// Package store persists mirrored records in the hosted Postgres table.
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"igmirror/pkg/errors"
	"igmirror/pkg/models"
)

// ErrDuplicate is returned by Insert when the shortcode already exists.
var ErrDuplicate = stderrors.New("record already exists")

// Record is the persisted row for one mirrored post.
type Record struct {
	ID        uint      `gorm:"primaryKey"`
	Shortcode string    `gorm:"column:shortcode;uniqueIndex"`
	PostURL   string    `gorm:"column:post_url"`
	ImageURL  string    `gorm:"column:image_url"`
	Caption   string    `gorm:"column:caption"`
	Likes     int       `gorm:"column:likes"`
	IsVideo   bool      `gorm:"column:is_video"`
	PostedAt  time.Time `gorm:"column:posted_at"`
	ScrapedAt time.Time `gorm:"column:scraped_at"`
}

// ToMirroredRecord converts a row to the domain projection.
func (r Record) ToMirroredRecord() models.MirroredRecord {
	return models.MirroredRecord{
		Shortcode: r.Shortcode,
		PostURL:   r.PostURL,
		BlobURL:   r.ImageURL,
		Caption:   r.Caption,
		Likes:     r.Likes,
		IsVideo:   r.IsVideo,
		PostedAt:  r.PostedAt,
		ScrapedAt: r.ScrapedAt,
	}
}

// Store is a gorm-backed record collaborator.
type Store struct {
	db    *gorm.DB
	table string
}

// Connect opens the Postgres connection for the given table.
func Connect(dsn, table string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db, table: table}, nil
}

// NewWithDB wraps an existing gorm handle (used in tests).
func NewWithDB(db *gorm.DB, table string) *Store {
	return &Store{db: db, table: table}
}

// AutoMigrate creates or updates the record table.
func (s *Store) AutoMigrate() error {
	if err := s.db.Table(s.table).AutoMigrate(&Record{}); err != nil {
		return errors.Newf(errors.ErrorTypePersistence, "migrate %s: %v", s.table, err)
	}
	return nil
}

// Insert creates a new record. It returns ErrDuplicate when a record with
// the same shortcode already exists, which callers use for the
// try-insert/fallback-update upsert.
func (s *Store) Insert(ctx context.Context, rec models.MirroredRecord) error {
	row := Record{
		Shortcode: rec.Shortcode,
		PostURL:   rec.PostURL,
		ImageURL:  rec.BlobURL,
		Caption:   rec.Caption,
		Likes:     rec.Likes,
		IsVideo:   rec.IsVideo,
		PostedAt:  rec.PostedAt,
		ScrapedAt: rec.ScrapedAt,
	}

	err := s.db.WithContext(ctx).Table(s.table).Create(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return errors.Newf(errors.ErrorTypePersistence, "insert %s: %v", rec.Shortcode, err)
	}

	return nil
}

// Update mutates the refreshable fields of an existing record.
func (s *Store) Update(ctx context.Context, rec models.MirroredRecord) error {
	updates := map[string]interface{}{
		"likes":      rec.Likes,
		"caption":    rec.Caption,
		"image_url":  rec.BlobURL,
		"scraped_at": rec.ScrapedAt,
	}

	result := s.db.WithContext(ctx).
		Table(s.table).
		Where("shortcode = ?", rec.Shortcode).
		Updates(updates)
	if result.Error != nil {
		return errors.Newf(errors.ErrorTypePersistence, "update %s: %v", rec.Shortcode, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.Newf(errors.ErrorTypePersistence, "update %s: no such record", rec.Shortcode)
	}

	return nil
}

// ListNewestFirst returns all records ordered by posted_at descending.
func (s *Store) ListNewestFirst(ctx context.Context) ([]models.MirroredRecord, error) {
	var rows []Record
	err := s.db.WithContext(ctx).
		Table(s.table).
		Order("posted_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypePersistence, "list records: %v", err)
	}

	records := make([]models.MirroredRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToMirroredRecord())
	}
	return records, nil
}

// Delete removes the record with the given shortcode.
func (s *Store) Delete(ctx context.Context, shortcode string) error {
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("shortcode = ?", shortcode).
		Delete(&Record{}).Error
	if err != nil {
		return errors.Newf(errors.ErrorTypePersistence, "delete %s: %v", shortcode, err)
	}
	return nil
}

// LatestPostedAt returns the newest posted_at in the table. The second
// return is false when the table is empty, meaning no prior state.
func (s *Store) LatestPostedAt(ctx context.Context) (time.Time, bool, error) {
	var row Record
	err := s.db.WithContext(ctx).
		Table(s.table).
		Order("posted_at desc").
		Limit(1).
		Take(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errors.Newf(errors.ErrorTypePersistence, "latest posted_at: %v", err)
	}

	return row.PostedAt, true, nil
}
