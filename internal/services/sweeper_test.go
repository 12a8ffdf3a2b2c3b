package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
)

func newSweeperEnv(t *testing.T) (*testEnv, *RetentionSweeper, *fakeBucket) {
	t.Helper()
	env := newTestEnv(t)
	bucket := newFakeBucket()
	sweeper := NewRetentionSweeper(env.db, logger.NewNop(), env.courseRepo, env.sectionRepo, env.lectureRepo, bucket)
	return env, sweeper, bucket
}

func TestSweeperPurgesExpiredCourses(t *testing.T) {
	env, sweeper, bucket := newSweeperEnv(t)
	ownerID := uuid.New()
	ctx := context.Background()

	course := env.mustCreateCourse(t, ownerID, "Old Course")
	section := env.mustCreateSection(t, ownerID, course.ID, "Basics")
	lecture := env.mustCreateLecture(t, ownerID, section.ID, "Intro")

	// Give the course and lecture stored media the sweep must remove.
	thumbKey := "media/thumbnails/" + course.ID.String() + ".jpg"
	videoKey := "media/hls/lectures/" + lecture.ID.String() + "/master.m3u8"
	bucket.objects[thumbKey] = []byte("thumb")
	bucket.objects[videoKey] = []byte("video")
	if err := env.db.Exec("UPDATE course SET thumbnail_url = ? WHERE id = ?", thumbKey, course.ID).Error; err != nil {
		t.Fatalf("set thumbnail: %v", err)
	}
	if err := env.lectureRepo.SetVideo(ctx, nil, lecture.ID, &videoKey, nil); err != nil {
		t.Fatalf("set video: %v", err)
	}

	if _, err := env.courseService.SoftDelete(ctx, nil, ownerID, course.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	backdateDeletion(t, env.db, "course", course.ID, time.Now().Add(-GracePeriod-time.Hour))

	if err := sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if got, err := env.courseRepo.GetByIDAnyState(ctx, nil, course.ID); err != nil || got != nil {
		t.Fatalf("course survived the sweep: %v, err=%v", got, err)
	}
	// Children go with the course via the FK cascade.
	if got, err := env.sectionRepo.GetByIDAnyState(ctx, nil, section.ID); err != nil || got != nil {
		t.Fatalf("section survived the course purge: %v, err=%v", got, err)
	}
	if got, err := env.lectureRepo.GetByIDAnyState(ctx, nil, lecture.ID); err != nil || got != nil {
		t.Fatalf("lecture survived the course purge: %v, err=%v", got, err)
	}

	deleted := bucket.deletedKeys()
	want := map[string]bool{thumbKey: true, videoKey: true}
	for _, key := range deleted {
		delete(want, key)
	}
	if len(want) != 0 {
		t.Fatalf("media not deleted: %v", want)
	}
}

func TestSweeperLeavesEntitiesInsideWindow(t *testing.T) {
	env, sweeper, _ := newSweeperEnv(t)
	ownerID := uuid.New()
	ctx := context.Background()

	course := env.mustCreateCourse(t, ownerID, "Fresh Delete")
	if _, err := env.courseService.SoftDelete(ctx, nil, ownerID, course.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if err := sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	got, err := env.courseRepo.GetByIDAnyState(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("reload course: %v", err)
	}
	if got == nil {
		t.Fatalf("course inside the grace window was purged")
	}
}

func TestSweeperPurgesExpiredSectionsAndLectures(t *testing.T) {
	env, sweeper, bucket := newSweeperEnv(t)
	ownerID := uuid.New()
	ctx := context.Background()

	course := env.mustCreateCourse(t, ownerID, "Live Course")
	section := env.mustCreateSection(t, ownerID, course.ID, "Doomed")
	lecture := env.mustCreateLecture(t, ownerID, section.ID, "Doomed Too")

	videoKey := "media/hls/lectures/" + lecture.ID.String() + "/master.m3u8"
	bucket.objects[videoKey] = []byte("video")
	if err := env.lectureRepo.SetVideo(ctx, nil, lecture.ID, &videoKey, nil); err != nil {
		t.Fatalf("set video: %v", err)
	}

	if _, err := env.sectionService.SoftDelete(ctx, nil, ownerID, section.ID); err != nil {
		t.Fatalf("soft delete section: %v", err)
	}
	backdateDeletion(t, env.db, "section", section.ID, time.Now().Add(-GracePeriod-time.Hour))

	if err := sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if got, _ := env.sectionRepo.GetByIDAnyState(ctx, nil, section.ID); got != nil {
		t.Fatalf("expired section survived the sweep")
	}
	// The course itself was never deleted and must remain.
	if got, _ := env.courseRepo.GetByID(ctx, nil, course.ID); got == nil {
		t.Fatalf("live course was purged")
	}
	deleted := bucket.deletedKeys()
	if len(deleted) != 1 || deleted[0] != videoKey {
		t.Fatalf("descendant media not deleted: %v", deleted)
	}
}

func TestSweeperToleratesMissingMedia(t *testing.T) {
	env, sweeper, _ := newSweeperEnv(t)
	ownerID := uuid.New()
	ctx := context.Background()

	course := env.mustCreateCourse(t, ownerID, "No Media")
	if err := env.db.Exec("UPDATE course SET thumbnail_url = ? WHERE id = ?", "media/thumbnails/ghost.jpg", course.ID).Error; err != nil {
		t.Fatalf("set thumbnail: %v", err)
	}
	if _, err := env.courseService.SoftDelete(ctx, nil, ownerID, course.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	backdateDeletion(t, env.db, "course", course.ID, time.Now().Add(-GracePeriod-time.Hour))

	// The referenced object was never stored; the sweep must not fail on it.
	if err := sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got, _ := env.courseRepo.GetByIDAnyState(ctx, nil, course.ID); got != nil {
		t.Fatalf("course with missing media was not purged")
	}
}
