package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/clients/redis"
	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/repos"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

const (
	QueueVideoProcessing = "video_processing_queue"
	QueueVideoResult     = "video_result_queue"

	videoResultCompleted = "COMPLETED"
	videoResultFailed    = "FAILED"
)

// videoJob is what the external transcoding worker consumes.
type videoJob struct {
	LectureID string `json:"lectureId"`
	FileName  string `json:"fileName"`
}

// videoResult is what the worker reports back.
type videoResult struct {
	LectureID string   `json:"lectureId"`
	Status    string   `json:"status"`
	HLSURL    string   `json:"hls_url,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type VideoService interface {
	// AcceptUpload stores the raw file and hands the transcode off to the
	// worker. It returns as soon as the job is queued; the lecture's video
	// URL points at the raw file until a result arrives.
	AcceptUpload(ctx context.Context, ownerID, lectureID uuid.UUID, fileName string, file io.Reader) (*types.Lecture, error)
	// StartResultConsumer runs the result subscription loop until ctx ends.
	StartResultConsumer(ctx context.Context)
}

type videoService struct {
	db          *gorm.DB
	log         *logger.Logger
	lectureRepo repos.LectureRepo
	verifier    *OwnershipVerifier
	bucket      BucketService
	queue       redis.WorkQueue
}

func NewVideoService(db *gorm.DB, baseLog *logger.Logger, lectureRepo repos.LectureRepo, verifier *OwnershipVerifier, bucket BucketService, queue redis.WorkQueue) VideoService {
	serviceLog := baseLog.With("service", "VideoService")
	return &videoService{
		db:          db,
		log:         serviceLog,
		lectureRepo: lectureRepo,
		verifier:    verifier,
		bucket:      bucket,
		queue:       queue,
	}
}

func (vs *videoService) AcceptUpload(ctx context.Context, ownerID, lectureID uuid.UUID, fileName string, file io.Reader) (*types.Lecture, error) {
	lecture, err := vs.verifier.VerifyLecture(ctx, nil, ownerID, lectureID)
	if err != nil {
		return nil, err
	}
	if lecture.DeletedAt.Valid {
		return nil, apierr.Forbidden(fmt.Errorf("lecture is pending deletion"))
	}

	fileName = path.Base(fileName)
	rawKey := fmt.Sprintf("media/raw/lectures/%s/%s", lectureID, fileName)
	if err := vs.bucket.UploadFile(ctx, rawKey, file); err != nil {
		vs.log.Error("Raw video upload failed", "error", err, "lecture_id", lectureID)
		return nil, apierr.UpstreamIO(fmt.Errorf("store raw video: %w", err))
	}

	if err := vs.lectureRepo.UpdateFields(ctx, nil, lectureID, map[string]interface{}{
		"video_url":  rawKey,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("record raw video url: %w", err)
	}

	job := videoJob{LectureID: lectureID.String(), FileName: fileName}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode video job: %w", err)
	}
	if err := vs.queue.Publish(ctx, QueueVideoProcessing, payload); err != nil {
		vs.log.Error("Video job publish failed", "error", err, "lecture_id", lectureID)
		return nil, apierr.UpstreamIO(fmt.Errorf("queue video job: %w", err))
	}
	vs.log.Info("Video processing job dispatched", "lecture_id", lectureID, "file_name", fileName)

	return vs.lectureRepo.GetByID(ctx, nil, lectureID)
}

func (vs *videoService) StartResultConsumer(ctx context.Context) {
	go func() {
		err := vs.queue.Subscribe(ctx, QueueVideoResult, vs.applyResult)
		if err != nil && ctx.Err() == nil {
			vs.log.Error("Video result consumer stopped", "error", err)
		}
	}()
}

// applyResult handles one worker result. Returning an error only logs it at
// the queue layer; the message is acked either way so a bad result cannot
// wedge the queue.
func (vs *videoService) applyResult(ctx context.Context, payload []byte) error {
	var result videoResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return fmt.Errorf("decode video result: %w", err)
	}

	lectureID, err := uuid.Parse(result.LectureID)
	if err != nil {
		return fmt.Errorf("video result carries invalid lecture id %q: %w", result.LectureID, err)
	}

	lecture, err := vs.lectureRepo.GetByIDAnyState(ctx, nil, lectureID)
	if err != nil {
		return fmt.Errorf("load lecture: %w", err)
	}
	if lecture == nil {
		// Stale reference, e.g. the lecture was purged while the worker ran.
		vs.log.Warn("Video result for unknown lecture", "lecture_id", result.LectureID)
		return nil
	}

	switch result.Status {
	case videoResultCompleted:
		hlsURL := result.HLSURL
		if err := vs.lectureRepo.SetVideo(ctx, nil, lectureID, &hlsURL, result.Duration); err != nil {
			return fmt.Errorf("apply completed result: %w", err)
		}
		vs.log.Info("Lecture video updated with processed URL", "lecture_id", result.LectureID)
	case videoResultFailed:
		if err := vs.lectureRepo.SetVideo(ctx, nil, lectureID, nil, nil); err != nil {
			return fmt.Errorf("apply failed result: %w", err)
		}
		vs.log.Error("Video processing failed for lecture", "lecture_id", result.LectureID, "worker_error", result.Error)
	default:
		vs.log.Warn("Video result with unknown status", "lecture_id", result.LectureID, "status", result.Status)
	}
	return nil
}
