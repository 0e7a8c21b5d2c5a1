// Package storage is the relational store of wards, categories and
// complaints (PostgreSQL through GORM) with a Redis layer for cached
// reference data and complaint events.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/nagarajgmcs24/fwdproject/internal/config"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	wardsCacheKey      = "cache:wards"
	categoriesCacheKey = "cache:problem_categories"

	// EventsChannel is the Redis channel complaint events are published on.
	EventsChannel = "complaints:events"
)

// ErrNotFound is returned when a complaint does not exist.
var ErrNotFound = errors.New("record not found")

// ComplaintFilter narrows ListComplaints.
type ComplaintFilter struct {
	WardID string
	Limit  int
}

// VerificationUpdate is the classifier result written back to a complaint.
type VerificationUpdate struct {
	Status          string
	Notes           string
	MatchedKeywords []string
}

type Storage interface {
	ListWards(ctx context.Context) ([]models.Ward, error)
	ListCategories(ctx context.Context) ([]models.ProblemCategory, error)
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	ListPendingVerification(ctx context.Context, createdBefore time.Time, limit int) ([]models.Complaint, error)

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	UpdateVerification(ctx context.Context, id string, update VerificationUpdate) error
	UpdateStatus(ctx context.Context, id, status string) error
	AddComplaintUpdate(ctx context.Context, update *models.ComplaintUpdate) error

	PublishEvent(ctx context.Context, event models.ComplaintEvent) error
}

type Service struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *zap.Logger
}

// NewStorageService Constructor. rdb may be nil, in which case reference
// data is always read from PostgreSQL and events are not published.
func NewStorageService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		DB:     db,
		Redis:  rdb,
		Logger: logger,
	}
}

// AutoMigrate creates or updates the tables of all models.
func (s *Service) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.Ward{},
		&models.ProblemCategory{},
		&models.Complaint{},
		&models.ComplaintUpdate{},
	)
}

// ListWards returns all wards ordered by ward number.
func (s *Service) ListWards(ctx context.Context) ([]models.Ward, error) {
	var wards []models.Ward
	if s.readCache(ctx, wardsCacheKey, &wards) {
		return wards, nil
	}

	if err := s.DB.WithContext(ctx).Order("ward_number").Find(&wards).Error; err != nil {
		s.Logger.Error("failed to list wards", zap.Error(err))
		return nil, err
	}

	s.writeCache(ctx, wardsCacheKey, wards)
	return wards, nil
}

// ListCategories returns all problem categories ordered by key.
func (s *Service) ListCategories(ctx context.Context) ([]models.ProblemCategory, error) {
	var categories []models.ProblemCategory
	if s.readCache(ctx, categoriesCacheKey, &categories) {
		return categories, nil
	}

	if err := s.DB.WithContext(ctx).Order("category_key").Find(&categories).Error; err != nil {
		s.Logger.Error("failed to list categories", zap.Error(err))
		return nil, err
	}

	s.writeCache(ctx, categoriesCacheKey, categories)
	return categories, nil
}

// ListComplaints returns the newest complaints, optionally for one ward,
// with their ward and category loaded for display.
func (s *Service) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = config.ComplaintListLimit
	}
	if limit > config.MaxComplaintListLimit {
		limit = config.MaxComplaintListLimit
	}

	query := s.DB.WithContext(ctx).
		Preload("Ward").
		Preload("Category").
		Order("created_at DESC").
		Limit(limit)
	if filter.WardID != "" {
		query = query.Where("ward_id = ?", filter.WardID)
	}

	var complaints []models.Complaint
	if err := query.Find(&complaints).Error; err != nil {
		s.Logger.Error("failed to list complaints", zap.String("ward_id", filter.WardID), zap.Error(err))
		return nil, err
	}
	return complaints, nil
}

// GetComplaintByID returns ErrNotFound when no complaint has the given ID.
func (s *Service) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.WithContext(ctx).
		Preload("Ward").
		Preload("Category").
		Where("id = ?", id).
		First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// ListPendingVerification returns the oldest complaints created before
// createdBefore that still have no verification result.
func (s *Service) ListPendingVerification(ctx context.Context, createdBefore time.Time, limit int) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.WithContext(ctx).
		Where("verification_status = ? AND created_at < ?", models.VerificationPending, createdBefore).
		Order("created_at").
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// CreateComplaint inserts the complaint. ID, statuses and timestamps are
// filled in on the passed struct.
func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Omit("Ward", "Category").Create(complaint).Error; err != nil {
		s.Logger.Error("failed to save complaint", zap.String("ward_id", complaint.WardID), zap.Error(err))
		return err
	}
	return nil
}

// UpdateVerification writes the verification result of a complaint.
func (s *Service) UpdateVerification(ctx context.Context, id string, update VerificationUpdate) error {
	return s.updateComplaint(ctx, id, map[string]interface{}{
		"verification_status": update.Status,
		"verification_notes":  update.Notes,
		"matched_keywords":    pq.StringArray(update.MatchedKeywords),
	})
}

// UpdateStatus sets the workflow status of a complaint.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	return s.updateComplaint(ctx, id, map[string]interface{}{
		"status": status,
	})
}

func (s *Service) updateComplaint(ctx context.Context, id string, fields map[string]interface{}) error {
	result := s.DB.WithContext(ctx).
		Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComplaintUpdate stores an operator note.
func (s *Service) AddComplaintUpdate(ctx context.Context, update *models.ComplaintUpdate) error {
	return s.DB.WithContext(ctx).Create(update).Error
}

// PublishEvent publishes a complaint event on EventsChannel.
func (s *Service) PublishEvent(ctx context.Context, event models.ComplaintEvent) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, EventsChannel, payload).Err()
}

// SubscribeToEvents subscribes to EventsChannel. The caller closes the
// returned subscription.
func (s *Service) SubscribeToEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, EventsChannel)
}

// SaveReferenceData upserts wards (by ID) and categories (by category key)
// and drops the cached copies.
func (s *Service) SaveReferenceData(ctx context.Context, wards []models.Ward, categories []models.ProblemCategory) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(wards) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&wards).Error; err != nil {
				return fmt.Errorf("failed to save wards: %w", err)
			}
		}
		if len(categories) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "category_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"name_en", "name_hi", "name_kn"}),
			}).Create(&categories).Error
			if err != nil {
				return fmt.Errorf("failed to save categories: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.InvalidateReferenceCache(ctx)
}

// InvalidateReferenceCache drops cached wards and categories, e.g. after
// seeding.
func (s *Service) InvalidateReferenceCache(ctx context.Context) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(ctx, wardsCacheKey, categoriesCacheKey).Err()
}

func (s *Service) readCache(ctx context.Context, key string, dest interface{}) bool {
	if s.Redis == nil {
		return false
	}
	data, err := s.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		s.Logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.Logger.Warn("reference cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) writeCache(ctx context.Context, key string, value interface{}) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, data, config.ReferenceCacheTTL).Err(); err != nil {
		s.Logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Ping checks both backing stores.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
