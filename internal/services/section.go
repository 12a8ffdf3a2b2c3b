package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/repos"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

type UpdateSectionInput struct {
	Title *string `json:"title"`
}

type SectionService interface {
	Create(ctx context.Context, ownerID, courseID uuid.UUID, title string) (*types.Section, error)
	ListActive(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) ([]*types.Section, error)
	ListTrash(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) ([]*types.Section, error)
	Update(ctx context.Context, tx *gorm.DB, ownerID, sectionID uuid.UUID, input UpdateSectionInput) (*types.Section, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, ownerID, sectionID uuid.UUID) (*types.Section, error)
	Restore(ctx context.Context, ownerID, sectionID uuid.UUID) (*types.Section, error)
}

type sectionService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	sectionRepo repos.SectionRepo
	verifier    *OwnershipVerifier
	now         func() time.Time
}

func NewSectionService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, sectionRepo repos.SectionRepo, verifier *OwnershipVerifier) SectionService {
	serviceLog := baseLog.With("service", "SectionService")
	return &sectionService{
		db:          db,
		log:         serviceLog,
		courseRepo:  courseRepo,
		sectionRepo: sectionRepo,
		verifier:    verifier,
		now:         time.Now,
	}
}

// Create appends the new section after the last active sibling. The count and
// the insert run in one transaction holding the course row lock, so two
// concurrent creates against the same course cannot claim the same index.
func (ss *sectionService) Create(ctx context.Context, ownerID, courseID uuid.UUID, title string) (*types.Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.Validation(fmt.Errorf("section title is required"))
	}

	var section *types.Section
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ss.verifier.VerifyActiveCourse(ctx, tx, ownerID, courseID); err != nil {
			return err
		}
		if err := ss.courseRepo.LockByID(ctx, tx, courseID); err != nil {
			return fmt.Errorf("lock course: %w", err)
		}
		count, err := ss.sectionRepo.CountActiveByCourse(ctx, tx, courseID)
		if err != nil {
			return fmt.Errorf("count sections: %w", err)
		}
		now := ss.now()
		section = &types.Section{
			ID:         uuid.New(),
			CourseID:   courseID,
			Title:      title,
			OrderIndex: int(count),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return ss.sectionRepo.Create(ctx, tx, section)
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

func (ss *sectionService) ListActive(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	if _, err := ss.verifier.VerifyActiveCourse(ctx, transaction, ownerID, courseID); err != nil {
		return nil, err
	}
	sections, err := ss.sectionRepo.ListActiveByCourse(ctx, transaction, courseID)
	if err != nil {
		ss.log.Error("ListActive sections failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

func (ss *sectionService) ListTrash(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	if _, err := ss.verifier.VerifyActiveCourse(ctx, transaction, ownerID, courseID); err != nil {
		return nil, err
	}
	sections, err := ss.sectionRepo.ListTrashByCourse(ctx, transaction, courseID, GraceCutoff(ss.now()))
	if err != nil {
		ss.log.Error("ListTrash sections failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("list trashed sections: %w", err)
	}
	return sections, nil
}

func (ss *sectionService) Update(ctx context.Context, tx *gorm.DB, ownerID, sectionID uuid.UUID, input UpdateSectionInput) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	section, err := ss.verifier.VerifySection(ctx, transaction, ownerID, sectionID)
	if err != nil {
		return nil, err
	}
	if section.DeletedAt.Valid {
		return nil, apierr.Forbidden(fmt.Errorf("section is pending deletion"))
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apierr.Validation(fmt.Errorf("section title cannot be empty"))
		}
		fields["title"] = title
	}
	if len(fields) == 0 {
		return section, nil
	}
	fields["updated_at"] = ss.now()

	if err := ss.sectionRepo.UpdateFields(ctx, transaction, sectionID, fields); err != nil {
		ss.log.Error("Update section failed", "error", err, "section_id", sectionID)
		return nil, fmt.Errorf("update section: %w", err)
	}
	return ss.sectionRepo.GetByID(ctx, transaction, sectionID)
}

func (ss *sectionService) SoftDelete(ctx context.Context, tx *gorm.DB, ownerID, sectionID uuid.UUID) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	section, err := ss.verifier.VerifySection(ctx, transaction, ownerID, sectionID)
	if err != nil {
		return nil, err
	}
	if section.DeletedAt.Valid {
		return section, nil
	}
	if err := ss.sectionRepo.SoftDelete(ctx, transaction, sectionID, ss.now()); err != nil {
		ss.log.Error("SoftDelete section failed", "error", err, "section_id", sectionID)
		return nil, fmt.Errorf("soft delete section: %w", err)
	}
	return ss.sectionRepo.GetByIDAnyState(ctx, transaction, sectionID)
}

// Restore places the section at the end of the active list rather than its
// old slot; the old index may belong to someone else by now.
func (ss *sectionService) Restore(ctx context.Context, ownerID, sectionID uuid.UUID) (*types.Section, error) {
	var restored *types.Section
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		section, err := ss.verifier.VerifySection(ctx, tx, ownerID, sectionID)
		if err != nil {
			return err
		}
		if !section.DeletedAt.Valid {
			return apierr.NotRestorable(fmt.Errorf("section is not pending deletion"))
		}
		if GraceExpired(section.DeletedAt.Time, ss.now()) {
			return apierr.NotRestorable(fmt.Errorf("restore window has expired"))
		}
		if err := ss.courseRepo.LockByID(ctx, tx, section.CourseID); err != nil {
			return fmt.Errorf("lock course: %w", err)
		}
		count, err := ss.sectionRepo.CountActiveByCourse(ctx, tx, section.CourseID)
		if err != nil {
			return fmt.Errorf("count sections: %w", err)
		}
		if err := ss.sectionRepo.Restore(ctx, tx, sectionID, int(count)); err != nil {
			return fmt.Errorf("restore section: %w", err)
		}
		restored, err = ss.sectionRepo.GetByID(ctx, tx, sectionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}
