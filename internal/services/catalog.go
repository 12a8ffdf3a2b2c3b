package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/repos"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

const (
	catalogDefaultPageSize = 20
	catalogMaxPageSize     = 100
)

type CatalogPage struct {
	Courses  []*types.Course `json:"courses"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// CatalogService serves the public course listing. Only published, live
// courses are visible here regardless of who asks.
type CatalogService interface {
	ListPublished(ctx context.Context, search, level string, page, pageSize int) (*CatalogPage, error)
}

type catalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
}

func NewCatalogService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo) CatalogService {
	return &catalogService{
		db:         db,
		log:        baseLog.With("service", "CatalogService"),
		courseRepo: courseRepo,
	}
}

func (cs *catalogService) ListPublished(ctx context.Context, search, level string, page, pageSize int) (*CatalogPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = catalogDefaultPageSize
	}
	if pageSize > catalogMaxPageSize {
		pageSize = catalogMaxPageSize
	}
	offset := (page - 1) * pageSize
	courses, total, err := cs.courseRepo.ListPublished(ctx, nil, search, level, pageSize, offset)
	if err != nil {
		return nil, err
	}
	return &CatalogPage{
		Courses:  courses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
