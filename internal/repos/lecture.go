package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

type LectureRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lecture *types.Lecture) error
	GetByID(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID) (*types.Lecture, error)
	GetByIDAnyState(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID) (*types.Lecture, error)
	ListActiveBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Lecture, error)
	// ListTrashBySection returns deleted lectures still inside the restore
	// window, newest deletion first.
	ListTrashBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, cutoff time.Time) ([]*types.Lecture, error)
	CountActiveBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int64, error)
	// Deleted lectures are included: the sweeper needs every media reference
	// under a container, whatever its state.
	ListAnyBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.Lecture, error)
	ListAnyByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Lecture, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID, fields map[string]interface{}) error
	// SetVideo applies a processing outcome regardless of deletion state; a
	// result may land after the lecture was trashed.
	SetVideo(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID, videoURL *string, durationSeconds *float64) error
	SoftDelete(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID, deletedAt time.Time) error
	Restore(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID, orderIndex int) error
	ListExpired(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Lecture, error)
	PurgeByIDs(ctx context.Context, tx *gorm.DB, lectureIDs []uuid.UUID) error
}

type lectureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureRepo(db *gorm.DB, baseLog *logger.Logger) LectureRepo {
	repoLog := baseLog.With("repo", "LectureRepo")
	return &lectureRepo{db: db, log: repoLog}
}

func (r *lectureRepo) Create(ctx context.Context, tx *gorm.DB, lecture *types.Lecture) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(lecture).Error
}

func (r *lectureRepo) GetByID(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID) (*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var lecture types.Lecture
	err := transaction.WithContext(ctx).First(&lecture, "id = ?", lectureID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lecture, nil
}

func (r *lectureRepo) GetByIDAnyState(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID) (*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var lecture types.Lecture
	err := transaction.WithContext(ctx).Unscoped().First(&lecture, "id = ?", lectureID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lecture, nil
}

func (r *lectureRepo) ListActiveBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lecture
	err := transaction.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("order_index asc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lectureRepo) ListTrashBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, cutoff time.Time) ([]*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lecture
	err := transaction.WithContext(ctx).Unscoped().
		Where("section_id = ? AND deleted_at IS NOT NULL AND deleted_at > ?", sectionID, cutoff).
		Order("deleted_at desc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lectureRepo) CountActiveBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).Model(&types.Lecture{}).
		Where("section_id = ?", sectionID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *lectureRepo) ListAnyBySectionIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) ([]*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lecture
	if len(sectionIDs) == 0 {
		return results, nil
	}
	err := transaction.WithContext(ctx).Unscoped().
		Where("section_id IN ?", sectionIDs).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lectureRepo) ListAnyByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lecture
	if len(courseIDs) == 0 {
		return results, nil
	}
	err := transaction.WithContext(ctx).Unscoped().
		Joins("JOIN section ON section.id = lecture.section_id").
		Where("section.course_id IN ?", courseIDs).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lectureRepo) UpdateFields(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Model(&types.Lecture{}).
		Where("id = ?", lectureID).
		Updates(fields).Error
}

func (r *lectureRepo) SetVideo(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID, videoURL *string, durationSeconds *float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Unscoped().Model(&types.Lecture{}).
		Where("id = ?", lectureID).
		Updates(map[string]interface{}{
			"video_url":              videoURL,
			"video_duration_seconds": durationSeconds,
		}).Error
}

func (r *lectureRepo) SoftDelete(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID, deletedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&types.Lecture{}).
		Where("id = ?", lectureID).
		Update("deleted_at", deletedAt).Error
}

func (r *lectureRepo) Restore(ctx context.Context, tx *gorm.DB, lectureID uuid.UUID, orderIndex int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Unscoped().Model(&types.Lecture{}).
		Where("id = ?", lectureID).
		Updates(map[string]interface{}{
			"deleted_at":  nil,
			"order_index": orderIndex,
		}).Error
}

func (r *lectureRepo) ListExpired(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lecture
	err := transaction.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lectureRepo) PurgeByIDs(ctx context.Context, tx *gorm.DB, lectureIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(lectureIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Unscoped().
		Where("id IN ?", lectureIDs).
		Delete(&types.Lecture{}).Error
}
