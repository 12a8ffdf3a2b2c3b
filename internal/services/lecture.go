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

type UpdateLectureInput struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	IsPreviewable *bool   `json:"is_previewable"`
}

type LectureService interface {
	Create(ctx context.Context, ownerID, sectionID uuid.UUID, title string) (*types.Lecture, error)
	ListActive(ctx context.Context, tx *gorm.DB, ownerID, sectionID uuid.UUID) ([]*types.Lecture, error)
	ListTrash(ctx context.Context, tx *gorm.DB, ownerID, sectionID uuid.UUID) ([]*types.Lecture, error)
	Update(ctx context.Context, tx *gorm.DB, ownerID, lectureID uuid.UUID, input UpdateLectureInput) (*types.Lecture, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, ownerID, lectureID uuid.UUID) (*types.Lecture, error)
	Restore(ctx context.Context, ownerID, lectureID uuid.UUID) (*types.Lecture, error)
}

type lectureService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	sectionRepo repos.SectionRepo
	lectureRepo repos.LectureRepo
	verifier    *OwnershipVerifier
	now         func() time.Time
}

func NewLectureService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, sectionRepo repos.SectionRepo, lectureRepo repos.LectureRepo, verifier *OwnershipVerifier) LectureService {
	serviceLog := baseLog.With("service", "LectureService")
	return &lectureService{
		db:          db,
		log:         serviceLog,
		courseRepo:  courseRepo,
		sectionRepo: sectionRepo,
		lectureRepo: lectureRepo,
		verifier:    verifier,
		now:         time.Now,
	}
}

func (ls *lectureService) Create(ctx context.Context, ownerID, sectionID uuid.UUID, title string) (*types.Lecture, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.Validation(fmt.Errorf("lecture title is required"))
	}

	var lecture *types.Lecture
	err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		section, err := ls.verifier.VerifyActiveSection(ctx, tx, ownerID, sectionID)
		if err != nil {
			return err
		}
		// Sibling indices are serialized on the course row, same as section
		// creation.
		if err := ls.courseRepo.LockByID(ctx, tx, section.CourseID); err != nil {
			return fmt.Errorf("lock course: %w", err)
		}
		count, err := ls.lectureRepo.CountActiveBySection(ctx, tx, sectionID)
		if err != nil {
			return fmt.Errorf("count lectures: %w", err)
		}
		now := ls.now()
		lecture = &types.Lecture{
			ID:         uuid.New(),
			SectionID:  sectionID,
			Title:      title,
			OrderIndex: int(count),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return ls.lectureRepo.Create(ctx, tx, lecture)
	})
	if err != nil {
		return nil, err
	}
	return lecture, nil
}

func (ls *lectureService) ListActive(ctx context.Context, tx *gorm.DB, ownerID, sectionID uuid.UUID) ([]*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = ls.db
	}
	if _, err := ls.verifier.VerifyActiveSection(ctx, transaction, ownerID, sectionID); err != nil {
		return nil, err
	}
	lectures, err := ls.lectureRepo.ListActiveBySection(ctx, transaction, sectionID)
	if err != nil {
		ls.log.Error("ListActive lectures failed", "error", err, "section_id", sectionID)
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return lectures, nil
}

func (ls *lectureService) ListTrash(ctx context.Context, tx *gorm.DB, ownerID, sectionID uuid.UUID) ([]*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = ls.db
	}
	if _, err := ls.verifier.VerifyActiveSection(ctx, transaction, ownerID, sectionID); err != nil {
		return nil, err
	}
	lectures, err := ls.lectureRepo.ListTrashBySection(ctx, transaction, sectionID, GraceCutoff(ls.now()))
	if err != nil {
		ls.log.Error("ListTrash lectures failed", "error", err, "section_id", sectionID)
		return nil, fmt.Errorf("list trashed lectures: %w", err)
	}
	return lectures, nil
}

func (ls *lectureService) Update(ctx context.Context, tx *gorm.DB, ownerID, lectureID uuid.UUID, input UpdateLectureInput) (*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = ls.db
	}
	lecture, err := ls.verifier.VerifyLecture(ctx, transaction, ownerID, lectureID)
	if err != nil {
		return nil, err
	}
	if lecture.DeletedAt.Valid {
		return nil, apierr.Forbidden(fmt.Errorf("lecture is pending deletion"))
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apierr.Validation(fmt.Errorf("lecture title cannot be empty"))
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.IsPreviewable != nil {
		fields["is_previewable"] = *input.IsPreviewable
	}
	if len(fields) == 0 {
		return lecture, nil
	}
	fields["updated_at"] = ls.now()

	if err := ls.lectureRepo.UpdateFields(ctx, transaction, lectureID, fields); err != nil {
		ls.log.Error("Update lecture failed", "error", err, "lecture_id", lectureID)
		return nil, fmt.Errorf("update lecture: %w", err)
	}
	return ls.lectureRepo.GetByID(ctx, transaction, lectureID)
}

func (ls *lectureService) SoftDelete(ctx context.Context, tx *gorm.DB, ownerID, lectureID uuid.UUID) (*types.Lecture, error) {
	transaction := tx
	if transaction == nil {
		transaction = ls.db
	}
	lecture, err := ls.verifier.VerifyLecture(ctx, transaction, ownerID, lectureID)
	if err != nil {
		return nil, err
	}
	if lecture.DeletedAt.Valid {
		return lecture, nil
	}
	if err := ls.lectureRepo.SoftDelete(ctx, transaction, lectureID, ls.now()); err != nil {
		ls.log.Error("SoftDelete lecture failed", "error", err, "lecture_id", lectureID)
		return nil, fmt.Errorf("soft delete lecture: %w", err)
	}
	return ls.lectureRepo.GetByIDAnyState(ctx, transaction, lectureID)
}

func (ls *lectureService) Restore(ctx context.Context, ownerID, lectureID uuid.UUID) (*types.Lecture, error) {
	var restored *types.Lecture
	err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lecture, err := ls.verifier.VerifyLecture(ctx, tx, ownerID, lectureID)
		if err != nil {
			return err
		}
		if !lecture.DeletedAt.Valid {
			return apierr.NotRestorable(fmt.Errorf("lecture is not pending deletion"))
		}
		if GraceExpired(lecture.DeletedAt.Time, ls.now()) {
			return apierr.NotRestorable(fmt.Errorf("restore window has expired"))
		}
		section, err := ls.sectionRepo.GetByIDAnyState(ctx, tx, lecture.SectionID)
		if err != nil {
			return fmt.Errorf("load section: %w", err)
		}
		if section == nil {
			return apierr.NotFound(fmt.Errorf("section not found"))
		}
		if err := ls.courseRepo.LockByID(ctx, tx, section.CourseID); err != nil {
			return fmt.Errorf("lock course: %w", err)
		}
		count, err := ls.lectureRepo.CountActiveBySection(ctx, tx, lecture.SectionID)
		if err != nil {
			return fmt.Errorf("count lectures: %w", err)
		}
		if err := ls.lectureRepo.Restore(ctx, tx, lectureID, int(count)); err != nil {
			return fmt.Errorf("restore lecture: %w", err)
		}
		restored, err = ls.lectureRepo.GetByID(ctx, tx, lectureID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}
