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

type SectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, section *types.Section) error
	GetByID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.Section, error)
	GetByIDAnyState(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.Section, error)
	ListActiveByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Section, error)
	// ListTrashByCourse returns deleted sections still inside the restore
	// window, newest deletion first.
	ListTrashByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, cutoff time.Time) ([]*types.Section, error)
	CountActiveByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, deletedAt time.Time) error
	// Restore clears the deletion mark and moves the section to the given
	// order index in one update.
	Restore(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, orderIndex int) error
	ListExpired(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Section, error)
	PurgeByIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) error
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	repoLog := baseLog.With("repo", "SectionRepo")
	return &sectionRepo{db: db, log: repoLog}
}

func (r *sectionRepo) Create(ctx context.Context, tx *gorm.DB, section *types.Section) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(section).Error
}

func (r *sectionRepo) GetByID(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var section types.Section
	err := transaction.WithContext(ctx).First(&section, "id = ?", sectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) GetByIDAnyState(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var section types.Section
	err := transaction.WithContext(ctx).Unscoped().First(&section, "id = ?", sectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) ListActiveByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Section
	err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("order_index asc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sectionRepo) ListTrashByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, cutoff time.Time) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Section
	err := transaction.WithContext(ctx).Unscoped().
		Where("course_id = ? AND deleted_at IS NOT NULL AND deleted_at > ?", courseID, cutoff).
		Order("deleted_at desc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sectionRepo) CountActiveByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).Model(&types.Section{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sectionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Model(&types.Section{}).
		Where("id = ?", sectionID).
		Updates(fields).Error
}

func (r *sectionRepo) SoftDelete(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, deletedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&types.Section{}).
		Where("id = ?", sectionID).
		Update("deleted_at", deletedAt).Error
}

func (r *sectionRepo) Restore(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, orderIndex int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Unscoped().Model(&types.Section{}).
		Where("id = ?", sectionID).
		Updates(map[string]interface{}{
			"deleted_at":  nil,
			"order_index": orderIndex,
		}).Error
}

func (r *sectionRepo) ListExpired(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Section
	err := transaction.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sectionRepo) PurgeByIDs(ctx context.Context, tx *gorm.DB, sectionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sectionIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Unscoped().
		Where("id IN ?", sectionIDs).
		Delete(&types.Section{}).Error
}
