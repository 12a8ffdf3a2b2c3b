package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
)

func TestLectureOrderIndexAssignment(t *testing.T) {
	env := newTestEnv(t)
	ownerID := uuid.New()
	course := env.mustCreateCourse(t, ownerID, "Learn Go")
	section := env.mustCreateSection(t, ownerID, course.ID, "Basics")
	ctx := context.Background()

	a := env.mustCreateLecture(t, ownerID, section.ID, "Intro")
	b := env.mustCreateLecture(t, ownerID, section.ID, "Setup")
	if a.OrderIndex != 0 || b.OrderIndex != 1 {
		t.Fatalf("initial indexes: a=%d b=%d, want 0 and 1", a.OrderIndex, b.OrderIndex)
	}

	if _, err := env.lectureService.SoftDelete(ctx, nil, ownerID, a.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	c := env.mustCreateLecture(t, ownerID, section.ID, "Variables")
	if c.OrderIndex != 1 {
		t.Fatalf("after deleting A, C got index %d, want 1", c.OrderIndex)
	}

	restored, err := env.lectureService.Restore(ctx, ownerID, a.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.OrderIndex != 2 {
		t.Fatalf("restored lecture got index %d, want 2", restored.OrderIndex)
	}
}

func TestLectureOpsForbiddenUnderDeletedSection(t *testing.T) {
	env := newTestEnv(t)
	ownerID := uuid.New()
	course := env.mustCreateCourse(t, ownerID, "Learn Go")
	section := env.mustCreateSection(t, ownerID, course.ID, "Basics")
	lecture := env.mustCreateLecture(t, ownerID, section.ID, "Intro")
	ctx := context.Background()

	if _, err := env.sectionService.SoftDelete(ctx, nil, ownerID, section.ID); err != nil {
		t.Fatalf("soft delete section: %v", err)
	}
	if _, err := env.lectureService.Create(ctx, ownerID, section.ID, "Setup"); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("create under deleted section: got %v, want forbidden", err)
	}
	title := "Renamed"
	if _, err := env.lectureService.Update(ctx, nil, ownerID, lecture.ID, UpdateLectureInput{Title: &title}); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("update under deleted section: got %v, want forbidden", err)
	}
	if _, err := env.lectureService.ListActive(ctx, nil, ownerID, section.ID); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("list under deleted section: got %v, want forbidden", err)
	}
}

func TestLectureUpdate(t *testing.T) {
	env := newTestEnv(t)
	ownerID := uuid.New()
	course := env.mustCreateCourse(t, ownerID, "Learn Go")
	section := env.mustCreateSection(t, ownerID, course.ID, "Basics")
	lecture := env.mustCreateLecture(t, ownerID, section.ID, "Intro")
	ctx := context.Background()

	title := "Introduction"
	preview := true
	updated, err := env.lectureService.Update(ctx, nil, ownerID, lecture.ID, UpdateLectureInput{
		Title:         &title,
		IsPreviewable: &preview,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || !updated.IsPreviewable {
		t.Fatalf("update not applied: title=%q previewable=%v", updated.Title, updated.IsPreviewable)
	}

	if _, err := env.lectureService.Update(ctx, nil, uuid.New(), lecture.ID, UpdateLectureInput{Title: &title}); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("foreign update: got %v, want forbidden", err)
	}
}

func TestLectureRestoreWindow(t *testing.T) {
	env := newTestEnv(t)
	ownerID := uuid.New()
	course := env.mustCreateCourse(t, ownerID, "Learn Go")
	section := env.mustCreateSection(t, ownerID, course.ID, "Basics")
	lecture := env.mustCreateLecture(t, ownerID, section.ID, "Intro")
	ctx := context.Background()

	if _, err := env.lectureService.SoftDelete(ctx, nil, ownerID, lecture.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	backdateDeletion(t, env.db, "lecture", lecture.ID, time.Now().Add(-GracePeriod-time.Minute))

	if _, err := env.lectureService.Restore(ctx, ownerID, lecture.ID); !apierr.Is(err, apierr.CodeNotRestorable) {
		t.Fatalf("expired restore: got %v, want not_restorable", err)
	}
}
