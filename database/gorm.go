package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/config"
	"github.com/sahilchouksey/quiz-brain/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrArtifactNotFound is returned when no artifact exists for a job
var ErrArtifactNotFound = errors.New("artifact not found")

type GORMStore struct {
	db *gorm.DB
}

// DSN builds the PostgreSQL connection string from the environment
func DSN(env *config.EnviornmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnviornmentVariable) (*GORMStore, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if env.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(DSN(env)), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		log.Errorf("Database: unable to connect to PostgreSQL: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Database: connected to PostgreSQL")

	return NewGORMStore(db), nil
}

// NewGORMStore wraps an open connection
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Init creates or updates the artifact and cron run tables
func (s *GORMStore) Init() error {
	log.Info("Database: running AutoMigrate")

	if err := s.db.AutoMigrate(
		&model.GenerationArtifact{},
		&model.GeneratedQuestion{},
		&model.CronRun{},
	); err != nil {
		log.Errorf("Database: AutoMigrate failed: %v", err)
		return err
	}
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SaveArtifact stores an artifact and its questions in one transaction
func (s *GORMStore) SaveArtifact(ctx context.Context, artifact *model.GenerationArtifact) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(artifact).Error; err != nil {
			return fmt.Errorf("failed to save artifact for job %s: %w", artifact.JobID, err)
		}
		return nil
	})
}

// GetArtifactByJobID loads an artifact with its questions in position order
func (s *GORMStore) GetArtifactByJobID(ctx context.Context, jobID string) (*model.GenerationArtifact, error) {
	var artifact model.GenerationArtifact
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("job_id = ?", jobID).
		First(&artifact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// DeleteArtifactsBefore soft-deletes artifacts generated before cutoff
func (s *GORMStore) DeleteArtifactsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("generated_at < ?", cutoff).Delete(&model.GenerationArtifact{})
	return result.RowsAffected, result.Error
}

// RecordCronRun inserts a new run or updates the one already saved
func (s *GORMStore) RecordCronRun(ctx context.Context, run *model.CronRun) error {
	return s.db.WithContext(ctx).Save(run).Error
}

// DeleteCronRunsBefore removes run history older than cutoff
func (s *GORMStore) DeleteCronRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("started_at < ?", cutoff).Delete(&model.CronRun{})
	return result.RowsAffected, result.Error
}
