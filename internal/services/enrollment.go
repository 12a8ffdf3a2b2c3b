package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/repos"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Enrollment, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewEnrollmentService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, enrollmentRepo repos.EnrollmentRepo) EnrollmentService {
	return &enrollmentService{
		db:             db,
		log:            baseLog.With("service", "EnrollmentService"),
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Enroll registers a student in a published course. Courses that are
// drafts, deleted, or pending deletion are not enrollable.
func (es *enrollmentService) Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	course, err := es.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}
	if course == nil || course.Status != types.CourseStatusPublished {
		return nil, apierr.NotFound(fmt.Errorf("course not found"))
	}
	existing, err := es.enrollmentRepo.GetByStudentAndCourse(ctx, nil, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if existing != nil {
		return nil, apierr.Validation(fmt.Errorf("already enrolled in this course"))
	}
	enrollment := &types.Enrollment{
		ID:        uuid.New(),
		StudentID: studentID,
		CourseID:  courseID,
	}
	if err := es.enrollmentRepo.Create(ctx, nil, enrollment); err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}
	es.log.Info("Student enrolled", "studentId", studentID.String(), "courseId", courseID.String())
	return enrollment, nil
}

func (es *enrollmentService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Enrollment, error) {
	return es.enrollmentRepo.ListByStudent(ctx, nil, studentID)
}
