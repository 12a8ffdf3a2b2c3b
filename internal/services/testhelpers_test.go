package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/repos"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&types.Course{}, &types.Section{}, &types.Lecture{}, &types.Enrollment{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// testEnv wires the full service stack over one in-memory database.
type testEnv struct {
	db                *gorm.DB
	courseRepo        repos.CourseRepo
	sectionRepo       repos.SectionRepo
	lectureRepo       repos.LectureRepo
	enrollmentRepo    repos.EnrollmentRepo
	verifier          *OwnershipVerifier
	bucket            *fakeBucket
	courseService     CourseService
	sectionService    SectionService
	lectureService    LectureService
	enrollmentService EnrollmentService
	catalogService    CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := logger.NewNop()
	courseRepo := repos.NewCourseRepo(db, log)
	sectionRepo := repos.NewSectionRepo(db, log)
	lectureRepo := repos.NewLectureRepo(db, log)
	enrollmentRepo := repos.NewEnrollmentRepo(db, log)
	verifier := NewOwnershipVerifier(courseRepo, sectionRepo, lectureRepo)
	bucket := newFakeBucket()
	return &testEnv{
		db:                db,
		courseRepo:        courseRepo,
		sectionRepo:       sectionRepo,
		lectureRepo:       lectureRepo,
		enrollmentRepo:    enrollmentRepo,
		verifier:          verifier,
		bucket:            bucket,
		courseService:     NewCourseService(db, log, courseRepo, verifier, bucket),
		sectionService:    NewSectionService(db, log, courseRepo, sectionRepo, verifier),
		lectureService:    NewLectureService(db, log, courseRepo, sectionRepo, lectureRepo, verifier),
		enrollmentService: NewEnrollmentService(db, log, courseRepo, enrollmentRepo),
		catalogService:    NewCatalogService(db, log, courseRepo),
	}
}

func (e *testEnv) mustCreateCourse(t *testing.T, ownerID uuid.UUID, title string) *types.Course {
	t.Helper()
	course, err := e.courseService.Create(context.Background(), nil, ownerID, CreateCourseInput{Title: title})
	if err != nil {
		t.Fatalf("create course %q: %v", title, err)
	}
	return course
}

func (e *testEnv) mustCreateSection(t *testing.T, ownerID, courseID uuid.UUID, title string) *types.Section {
	t.Helper()
	section, err := e.sectionService.Create(context.Background(), ownerID, courseID, title)
	if err != nil {
		t.Fatalf("create section %q: %v", title, err)
	}
	return section
}

func (e *testEnv) mustCreateLecture(t *testing.T, ownerID, sectionID uuid.UUID, title string) *types.Lecture {
	t.Helper()
	lecture, err := e.lectureService.Create(context.Background(), ownerID, sectionID, title)
	if err != nil {
		t.Fatalf("create lecture %q: %v", title, err)
	}
	return lecture
}

// backdateDeletion rewrites an entity's deletion mark so grace-window paths
// can be exercised without a clock.
func backdateDeletion(t *testing.T, db *gorm.DB, table string, id uuid.UUID, deletedAt time.Time) {
	t.Helper()
	if err := db.Exec(fmt.Sprintf("UPDATE %s SET deleted_at = ? WHERE id = ?", table), deletedAt, id).Error; err != nil {
		t.Fatalf("backdate %s deletion: %v", table, err)
	}
}

// fakeBucket records uploads and deletions in memory.
type fakeBucket struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (b *fakeBucket) UploadFile(ctx context.Context, key string, file io.Reader) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *fakeBucket) DeleteFile(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	if _, ok := b.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *fakeBucket) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (b *fakeBucket) deletedKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.deleted...)
}

// fakeQueue captures published payloads per queue name.
type fakeQueue struct {
	mu         sync.Mutex
	published  map[string][][]byte
	publishErr error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{published: map[string][][]byte{}}
}

func (q *fakeQueue) Publish(ctx context.Context, queue string, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published[queue] = append(q.published[queue], bytes.Clone(payload))
	return nil
}

func (q *fakeQueue) Subscribe(ctx context.Context, queue string, handler func(ctx context.Context, payload []byte) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func (q *fakeQueue) Close() error { return nil }

func (q *fakeQueue) publishedTo(queue string) [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([][]byte(nil), q.published[queue]...)
}
