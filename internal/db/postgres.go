package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/coursebridge-backend/internal/platform/envutil"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := envutil.Str("POSTGRES_HOST", "localhost")
	postgresPort := envutil.Str("POSTGRES_PORT", "5432")
	postgresUser := envutil.Str("POSTGRES_USER", "postgres")
	postgresPassword := envutil.Str("POSTGRES_PASSWORD", "")
	postgresName := envutil.Str("POSTGRES_NAME", "coursebridge")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Course{},
		&types.Section{},
		&types.Lecture{},
		&types.Enrollment{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	// Cascading FKs let a course purge take its sections, lectures and
	// enrollments with it in one statement.
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		model any
		name  string
		ddl   string
	}{
		{
			model: &types.Section{},
			name:  "fk_section_course_id",
			ddl: `ALTER TABLE "section"
				ADD CONSTRAINT "fk_section_course_id"
				FOREIGN KEY ("course_id") REFERENCES "course"("id")
				ON DELETE CASCADE`,
		},
		{
			model: &types.Lecture{},
			name:  "fk_lecture_section_id",
			ddl: `ALTER TABLE "lecture"
				ADD CONSTRAINT "fk_lecture_section_id"
				FOREIGN KEY ("section_id") REFERENCES "section"("id")
				ON DELETE CASCADE`,
		},
		{
			model: &types.Enrollment{},
			name:  "fk_enrollment_course_id",
			ddl: `ALTER TABLE "enrollment"
				ADD CONSTRAINT "fk_enrollment_course_id"
				FOREIGN KEY ("course_id") REFERENCES "course"("id")
				ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		if s.db.Migrator().HasConstraint(c.model, c.name) {
			continue
		}
		if err := s.db.Exec(c.ddl).Error; err != nil {
			s.log.Error("Failed to add foreign key constraint", "constraint", c.name, "error", err)
			return err
		}
	}
	return nil
}
