package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/repos"
)

// RetentionSweeper permanently removes entities whose grace window has
// lapsed, deleting their stored media first. It runs on a timer and can be
// triggered manually.
type RetentionSweeper struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	sectionRepo repos.SectionRepo
	lectureRepo repos.LectureRepo
	bucket      BucketService
	now         func() time.Time
}

func NewRetentionSweeper(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, sectionRepo repos.SectionRepo, lectureRepo repos.LectureRepo, bucket BucketService) *RetentionSweeper {
	return &RetentionSweeper{
		db:          db,
		log:         baseLog.With("component", "RetentionSweeper"),
		courseRepo:  courseRepo,
		sectionRepo: sectionRepo,
		lectureRepo: lectureRepo,
		bucket:      bucket,
		now:         time.Now,
	}
}

// Start launches the periodic sweep loop. It returns immediately; the loop
// stops when ctx is cancelled.
func (s *RetentionSweeper) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	s.log.Info("Starting retention sweeper", "interval", interval.String())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.log.Info("Retention sweeper stopped")
				return
			case <-ticker.C:
				if err := s.RunOnce(ctx); err != nil {
					s.log.Error("Retention sweep finished with errors", "error", err)
				}
			}
		}
	}()
}

// RunOnce sweeps all three entity kinds. The kinds are independent: one
// failing phase is reported but never stops the others, and anything left
// behind stays purge-eligible for the next run.
func (s *RetentionSweeper) RunOnce(ctx context.Context) error {
	s.log.Info("Retention sweep starting")
	cutoff := GraceCutoff(s.now())

	var g errgroup.Group
	g.Go(func() error { return s.sweepCourses(ctx, cutoff) })
	g.Go(func() error { return s.sweepSections(ctx, cutoff) })
	g.Go(func() error { return s.sweepLectures(ctx, cutoff) })
	err := g.Wait()
	s.log.Info("Retention sweep finished")
	return err
}

func (s *RetentionSweeper) sweepCourses(ctx context.Context, cutoff time.Time) error {
	courses, err := s.courseRepo.ListExpired(ctx, nil, cutoff)
	if err != nil {
		s.log.Error("Course sweep query failed", "error", err)
		return fmt.Errorf("list expired courses: %w", err)
	}
	if len(courses) == 0 {
		s.log.Debug("No expired courses to clean up")
		return nil
	}

	ids := make([]uuid.UUID, 0, len(courses))
	for _, course := range courses {
		ids = append(ids, course.ID)
		s.deleteMedia(ctx, course.ThumbnailURL)
		s.deleteMedia(ctx, course.PromoVideoURL)
	}
	lectures, err := s.lectureRepo.ListAnyByCourseIDs(ctx, nil, ids)
	if err != nil {
		s.log.Error("Course sweep descendant query failed", "error", err)
		return fmt.Errorf("list course lectures: %w", err)
	}
	for _, lecture := range lectures {
		s.deleteMedia(ctx, lecture.VideoURL)
	}

	if err := s.courseRepo.PurgeByIDs(ctx, nil, ids); err != nil {
		s.log.Error("Course purge failed", "error", err)
		return fmt.Errorf("purge courses: %w", err)
	}
	s.log.Info("Permanently deleted expired courses", "count", len(ids))
	return nil
}

func (s *RetentionSweeper) sweepSections(ctx context.Context, cutoff time.Time) error {
	sections, err := s.sectionRepo.ListExpired(ctx, nil, cutoff)
	if err != nil {
		s.log.Error("Section sweep query failed", "error", err)
		return fmt.Errorf("list expired sections: %w", err)
	}
	if len(sections) == 0 {
		s.log.Debug("No expired sections to clean up")
		return nil
	}

	ids := make([]uuid.UUID, 0, len(sections))
	for _, section := range sections {
		ids = append(ids, section.ID)
	}
	lectures, err := s.lectureRepo.ListAnyBySectionIDs(ctx, nil, ids)
	if err != nil {
		s.log.Error("Section sweep descendant query failed", "error", err)
		return fmt.Errorf("list section lectures: %w", err)
	}
	for _, lecture := range lectures {
		s.deleteMedia(ctx, lecture.VideoURL)
	}

	if err := s.sectionRepo.PurgeByIDs(ctx, nil, ids); err != nil {
		s.log.Error("Section purge failed", "error", err)
		return fmt.Errorf("purge sections: %w", err)
	}
	s.log.Info("Permanently deleted expired sections", "count", len(ids))
	return nil
}

func (s *RetentionSweeper) sweepLectures(ctx context.Context, cutoff time.Time) error {
	lectures, err := s.lectureRepo.ListExpired(ctx, nil, cutoff)
	if err != nil {
		s.log.Error("Lecture sweep query failed", "error", err)
		return fmt.Errorf("list expired lectures: %w", err)
	}
	if len(lectures) == 0 {
		s.log.Debug("No expired lectures to clean up")
		return nil
	}

	ids := make([]uuid.UUID, 0, len(lectures))
	for _, lecture := range lectures {
		ids = append(ids, lecture.ID)
		s.deleteMedia(ctx, lecture.VideoURL)
	}

	if err := s.lectureRepo.PurgeByIDs(ctx, nil, ids); err != nil {
		s.log.Error("Lecture purge failed", "error", err)
		return fmt.Errorf("purge lectures: %w", err)
	}
	s.log.Info("Permanently deleted expired lectures", "count", len(ids))
	return nil
}

// deleteMedia is best-effort: an already-absent object counts as done, any
// other failure is logged and the batch moves on. The row purge proceeds
// regardless.
func (s *RetentionSweeper) deleteMedia(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	err := s.bucket.DeleteFile(ctx, *key)
	if err == nil || errors.Is(err, ErrObjectNotFound) {
		return
	}
	s.log.Error("Media file deletion failed", "key", *key, "error", err)
}
