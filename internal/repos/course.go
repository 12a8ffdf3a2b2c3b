package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *types.Course) error
	// GetByID sees active courses only. GetByIDAnyState also sees soft-deleted
	// ones. Both return (nil, nil) when no row matches.
	GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	GetByIDAnyState(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
	// LockByID takes a row lock on the course for the duration of tx. Used to
	// serialize sibling order-index assignment per course.
	LockByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, graceCutoff time.Time) ([]*types.Course, error)
	// ListTrashByOwner returns deleted courses still inside the restore
	// window; rows at or past the cutoff are the sweeper's business.
	ListTrashByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, cutoff time.Time) ([]*types.Course, error)
	ListPublished(ctx context.Context, tx *gorm.DB, search, level string, limit, offset int) ([]*types.Course, int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, deletedAt time.Time) error
	Restore(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	ListExpired(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Course, error)
	PurgeByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var course types.Course
	err := transaction.WithContext(ctx).First(&course, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByIDAnyState(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var course types.Course
	err := transaction.WithContext(ctx).Unscoped().First(&course, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).Unscoped().Model(&types.Course{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseRepo) LockByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	if tx == nil {
		return errors.New("LockByID requires a transaction")
	}
	var course types.Course
	q := tx.WithContext(ctx)
	// sqlite (tests) has no row locks; its single-writer model covers us there.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q.First(&course, "id = ?", courseID).Error
}

func (r *courseRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, graceCutoff time.Time) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	// Pending-deletion courses stay visible to their owner until the grace
	// window closes.
	var results []*types.Course
	err := transaction.WithContext(ctx).Unscoped().
		Where("owner_id = ?", ownerID).
		Where("deleted_at IS NULL OR deleted_at >= ?", graceCutoff).
		Order("created_at desc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) ListTrashByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, cutoff time.Time) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Course
	err := transaction.WithContext(ctx).Unscoped().
		Where("owner_id = ? AND deleted_at IS NOT NULL AND deleted_at > ?", ownerID, cutoff).
		Order("deleted_at desc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) ListPublished(ctx context.Context, tx *gorm.DB, search, level string, limit, offset int) ([]*types.Course, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Model(&types.Course{}).
		Where("status = ?", types.CourseStatusPublished)
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	if level != "" {
		query = query.Where("level = ?", level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*types.Course
	err := query.Limit(limit).Offset(offset).
		Order("created_at desc").
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *courseRepo) UpdateFields(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Model(&types.Course{}).
		Where("id = ?", courseID).
		Updates(fields).Error
}

func (r *courseRepo) SoftDelete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, deletedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&types.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"status":     types.CourseStatusPendingDeletion,
			"deleted_at": deletedAt,
		}).Error
}

func (r *courseRepo) Restore(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Unscoped().Model(&types.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"status":     types.CourseStatusDraft,
			"deleted_at": nil,
		}).Error
}

func (r *courseRepo) ListExpired(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Course
	err := transaction.WithContext(ctx).Unscoped().
		Where("status = ? AND deleted_at IS NOT NULL AND deleted_at < ?", types.CourseStatusPendingDeletion, cutoff).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) PurgeByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(courseIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Unscoped().
		Where("id IN ?", courseIDs).
		Delete(&types.Course{}).Error
}
