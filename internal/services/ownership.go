package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
	"github.com/yungbote/coursebridge-backend/internal/repos"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

// OwnershipVerifier resolves an entity's owning instructor through its parent
// chain: a course carries its owner directly, a section inherits it from its
// course, a lecture from its section's course. Every mutation goes through
// one of these before touching the row.
type OwnershipVerifier struct {
	courseRepo  repos.CourseRepo
	sectionRepo repos.SectionRepo
	lectureRepo repos.LectureRepo
}

func NewOwnershipVerifier(courseRepo repos.CourseRepo, sectionRepo repos.SectionRepo, lectureRepo repos.LectureRepo) *OwnershipVerifier {
	return &OwnershipVerifier{
		courseRepo:  courseRepo,
		sectionRepo: sectionRepo,
		lectureRepo: lectureRepo,
	}
}

// VerifyCourse checks that requesterID owns the course, in any deletion
// state. Missing row and owner mismatch are indistinguishable to the caller.
func (v *OwnershipVerifier) VerifyCourse(ctx context.Context, tx *gorm.DB, requesterID, courseID uuid.UUID) (*types.Course, error) {
	course, err := v.courseRepo.GetByIDAnyState(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil || course.OwnerID != requesterID {
		return nil, apierr.Forbidden(fmt.Errorf("course is not owned by requester"))
	}
	return course, nil
}

// VerifyActiveCourse additionally rejects a soft-deleted course: children of
// a trashed course cannot be touched until the course itself is restored.
func (v *OwnershipVerifier) VerifyActiveCourse(ctx context.Context, tx *gorm.DB, requesterID, courseID uuid.UUID) (*types.Course, error) {
	course, err := v.VerifyCourse(ctx, tx, requesterID, courseID)
	if err != nil {
		return nil, err
	}
	if course.DeletedAt.Valid {
		return nil, apierr.Forbidden(fmt.Errorf("course is pending deletion"))
	}
	return course, nil
}

func (v *OwnershipVerifier) VerifySection(ctx context.Context, tx *gorm.DB, requesterID, sectionID uuid.UUID) (*types.Section, error) {
	section, err := v.sectionRepo.GetByIDAnyState(ctx, tx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("load section: %w", err)
	}
	if section == nil {
		return nil, apierr.Forbidden(fmt.Errorf("section is not owned by requester"))
	}
	if _, err := v.VerifyActiveCourse(ctx, tx, requesterID, section.CourseID); err != nil {
		return nil, err
	}
	return section, nil
}

// VerifyActiveSection additionally rejects a soft-deleted section, so lecture
// mutations cannot reach into a trashed part of the tree.
func (v *OwnershipVerifier) VerifyActiveSection(ctx context.Context, tx *gorm.DB, requesterID, sectionID uuid.UUID) (*types.Section, error) {
	section, err := v.VerifySection(ctx, tx, requesterID, sectionID)
	if err != nil {
		return nil, err
	}
	if section.DeletedAt.Valid {
		return nil, apierr.Forbidden(fmt.Errorf("section is pending deletion"))
	}
	return section, nil
}

func (v *OwnershipVerifier) VerifyLecture(ctx context.Context, tx *gorm.DB, requesterID, lectureID uuid.UUID) (*types.Lecture, error) {
	lecture, err := v.lectureRepo.GetByIDAnyState(ctx, tx, lectureID)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	if lecture == nil {
		return nil, apierr.Forbidden(fmt.Errorf("lecture is not owned by requester"))
	}
	if _, err := v.VerifyActiveSection(ctx, tx, requesterID, lecture.SectionID); err != nil {
		return nil, err
	}
	return lecture, nil
}
