package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/repos"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

type CreateCourseInput struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Language    string `json:"language"`
}

type UpdateCourseInput struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Description *string `json:"description"`
	Level       *string `json:"level"`
	Language    *string `json:"language"`
	Status      *string `json:"status"`
}

type CourseService interface {
	Create(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, input CreateCourseInput) (*types.Course, error)
	ListForOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Course, error)
	ListTrashForOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Course, error)
	GetForOwner(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) (*types.Course, error)
	Update(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID, input UpdateCourseInput) (*types.Course, error)
	// UploadThumbnail stores the image and points the course's thumbnail at it.
	UploadThumbnail(ctx context.Context, ownerID, courseID uuid.UUID, fileName string, file io.Reader) (*types.Course, error)
	SoftDelete(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) (*types.Course, error)
	Restore(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) (*types.Course, error)
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	verifier   *OwnershipVerifier
	bucket     BucketService
	now        func() time.Time
}

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, verifier *OwnershipVerifier, bucket BucketService) CourseService {
	serviceLog := baseLog.With("service", "CourseService")
	return &courseService{
		db:         db,
		log:        serviceLog,
		courseRepo: courseRepo,
		verifier:   verifier,
		bucket:     bucket,
		now:        time.Now,
	}
}

func (cs *courseService) Create(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, input CreateCourseInput) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierr.Validation(fmt.Errorf("course title is required"))
	}

	slug, err := cs.uniqueSlug(ctx, transaction, title)
	if err != nil {
		return nil, fmt.Errorf("derive slug: %w", err)
	}

	level := input.Level
	if level == "" {
		level = "BEGINNER"
	}
	language := input.Language
	if language == "" {
		language = "English"
	}

	now := cs.now()
	course := &types.Course{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Slug:        slug,
		Subtitle:    input.Subtitle,
		Description: input.Description,
		Level:       level,
		Language:    language,
		Status:      types.CourseStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := cs.courseRepo.Create(ctx, transaction, course); err != nil {
		cs.log.Error("Create course failed", "error", err, "owner_id", ownerID)
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (cs *courseService) uniqueSlug(ctx context.Context, tx *gorm.DB, title string) (string, error) {
	base := slugify(title)
	slug := base
	for {
		taken, err := cs.courseRepo.SlugExists(ctx, tx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
	}
}

func slugify(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := false
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (cs *courseService) ListForOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	courses, err := cs.courseRepo.ListByOwner(ctx, transaction, ownerID, GraceCutoff(cs.now()))
	if err != nil {
		cs.log.Error("ListForOwner failed", "error", err, "owner_id", ownerID)
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (cs *courseService) ListTrashForOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	courses, err := cs.courseRepo.ListTrashByOwner(ctx, transaction, ownerID, GraceCutoff(cs.now()))
	if err != nil {
		cs.log.Error("ListTrashForOwner failed", "error", err, "owner_id", ownerID)
		return nil, fmt.Errorf("list trashed courses: %w", err)
	}
	return courses, nil
}

// GetForOwner treats a pending-deletion course whose grace window has lapsed
// as not found, even before the sweeper has caught up with it.
func (cs *courseService) GetForOwner(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	course, err := cs.courseRepo.GetByIDAnyState(ctx, transaction, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil || course.OwnerID != ownerID {
		return nil, apierr.NotFound(fmt.Errorf("course not found"))
	}
	if course.DeletedAt.Valid && GraceExpired(course.DeletedAt.Time, cs.now()) {
		return nil, apierr.NotFound(fmt.Errorf("course not found"))
	}
	return course, nil
}

func (cs *courseService) Update(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID, input UpdateCourseInput) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	course, err := cs.verifier.VerifyCourse(ctx, transaction, ownerID, courseID)
	if err != nil {
		return nil, err
	}
	if course.DeletedAt.Valid {
		return nil, apierr.Forbidden(fmt.Errorf("course is pending deletion"))
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apierr.Validation(fmt.Errorf("course title cannot be empty"))
		}
		fields["title"] = title
	}
	if input.Subtitle != nil {
		fields["subtitle"] = *input.Subtitle
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Level != nil {
		fields["level"] = *input.Level
	}
	if input.Language != nil {
		fields["language"] = *input.Language
	}
	if input.Status != nil {
		status := types.CourseStatus(*input.Status)
		if status != types.CourseStatusDraft && status != types.CourseStatusPublished {
			return nil, apierr.Validation(fmt.Errorf("status must be DRAFT or PUBLISHED"))
		}
		fields["status"] = status
	}
	if len(fields) == 0 {
		return course, nil
	}
	fields["updated_at"] = cs.now()

	if err := cs.courseRepo.UpdateFields(ctx, transaction, courseID, fields); err != nil {
		cs.log.Error("Update course failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("update course: %w", err)
	}
	return cs.courseRepo.GetByID(ctx, transaction, courseID)
}

func (cs *courseService) UploadThumbnail(ctx context.Context, ownerID, courseID uuid.UUID, fileName string, file io.Reader) (*types.Course, error) {
	if _, err := cs.verifier.VerifyActiveCourse(ctx, nil, ownerID, courseID); err != nil {
		return nil, err
	}

	fileName = path.Base(fileName)
	key := fmt.Sprintf("media/thumbnails/courses/%s/%s", courseID, fileName)
	if err := cs.bucket.UploadFile(ctx, key, file); err != nil {
		cs.log.Error("Thumbnail upload failed", "error", err, "course_id", courseID)
		return nil, apierr.UpstreamIO(fmt.Errorf("store thumbnail: %w", err))
	}

	if err := cs.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
		"thumbnail_url": key,
		"updated_at":    cs.now(),
	}); err != nil {
		return nil, fmt.Errorf("record thumbnail url: %w", err)
	}
	return cs.courseRepo.GetByID(ctx, nil, courseID)
}

// SoftDelete on an already-pending course is a no-op returning the current
// state; the grace clock is not reset.
func (cs *courseService) SoftDelete(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	course, err := cs.verifier.VerifyCourse(ctx, transaction, ownerID, courseID)
	if err != nil {
		return nil, err
	}
	if course.DeletedAt.Valid {
		return course, nil
	}
	if err := cs.courseRepo.SoftDelete(ctx, transaction, courseID, cs.now()); err != nil {
		cs.log.Error("SoftDelete course failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("soft delete course: %w", err)
	}
	return cs.courseRepo.GetByIDAnyState(ctx, transaction, courseID)
}

func (cs *courseService) Restore(ctx context.Context, tx *gorm.DB, ownerID, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cs.db
	}
	course, err := cs.verifier.VerifyCourse(ctx, transaction, ownerID, courseID)
	if err != nil {
		return nil, err
	}
	if !course.DeletedAt.Valid || course.Status != types.CourseStatusPendingDeletion {
		return nil, apierr.NotRestorable(fmt.Errorf("course is not pending deletion"))
	}
	if GraceExpired(course.DeletedAt.Time, cs.now()) {
		return nil, apierr.NotRestorable(fmt.Errorf("restore window has expired"))
	}
	if err := cs.courseRepo.Restore(ctx, transaction, courseID); err != nil {
		cs.log.Error("Restore course failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("restore course: %w", err)
	}
	return cs.courseRepo.GetByID(ctx, transaction, courseID)
}
