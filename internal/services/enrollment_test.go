package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

func publishCourse(t *testing.T, env *testEnv, ownerID uuid.UUID, courseID uuid.UUID) {
	t.Helper()
	published := string(types.CourseStatusPublished)
	if _, err := env.courseService.Update(context.Background(), nil, ownerID, courseID, UpdateCourseInput{Status: &published}); err != nil {
		t.Fatalf("publish course: %v", err)
	}
}

func TestEnroll(t *testing.T) {
	env := newTestEnv(t)
	ownerID := uuid.New()
	studentID := uuid.New()
	course := env.mustCreateCourse(t, ownerID, "Learn Go")
	publishCourse(t, env, ownerID, course.ID)
	ctx := context.Background()

	enrollment, err := env.enrollmentService.Enroll(ctx, studentID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.StudentID != studentID || enrollment.CourseID != course.ID {
		t.Fatalf("enrollment fields: %+v", enrollment)
	}

	if _, err := env.enrollmentService.Enroll(ctx, studentID, course.ID); !apierr.Is(err, apierr.CodeValidation) {
		t.Fatalf("duplicate enroll: got %v, want validation error", err)
	}

	mine, err := env.enrollmentService.ListForStudent(ctx, studentID)
	if err != nil {
		t.Fatalf("list enrollments: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("enrollments: got %d, want 1", len(mine))
	}
}

func TestEnrollRejectsUnpublishedCourses(t *testing.T) {
	env := newTestEnv(t)
	ownerID := uuid.New()
	studentID := uuid.New()
	ctx := context.Background()

	draft := env.mustCreateCourse(t, ownerID, "Draft Course")
	if _, err := env.enrollmentService.Enroll(ctx, studentID, draft.ID); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("enroll in draft: got %v, want not_found", err)
	}

	deleted := env.mustCreateCourse(t, ownerID, "Deleted Course")
	publishCourse(t, env, ownerID, deleted.ID)
	if _, err := env.courseService.SoftDelete(ctx, nil, ownerID, deleted.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := env.enrollmentService.Enroll(ctx, studentID, deleted.ID); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("enroll in deleted: got %v, want not_found", err)
	}

	if _, err := env.enrollmentService.Enroll(ctx, studentID, uuid.New()); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("enroll in missing: got %v, want not_found", err)
	}
}
