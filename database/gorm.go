package database

import (
	"time"

	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/model"
	applog "github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db  *gorm.DB
	log *applog.Logger
}

// Models lists every table managed by AutoMigrate, parents before children.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.UserSession{},
		&model.JWTTokenBlacklist{},
		&model.PasswordResetToken{},

		&model.Category{},
		&model.Course{},
		&model.Lesson{},
		&model.Coupon{},

		&model.Enrollment{},
		&model.Payment{},
		&model.Progress{},

		&model.Review{},
		&model.Comment{},
		&model.ContentBlock{},
		&model.UserNotification{},

		&model.AppSetting{},
		&model.CronJobLog{},
		&model.AdminAuditLog{},
	}
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.EnvironmentVariable, log *applog.Logger) (*GORMStore, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if env.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(env.DSN()), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		log.Error("unable to connect to PostgreSQL", "error", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("connected to PostgreSQL with GORM", "host", env.DB_HOST, "db", env.DB_NAME)

	return &GORMStore{db: db, log: log}, nil
}

// NewGORMStore wraps an already opened connection.
func NewGORMStore(db *gorm.DB, log *applog.Logger) *GORMStore {
	return &GORMStore{db: db, log: log}
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	s.log.Info("running GORM AutoMigrate")

	if err := s.db.AutoMigrate(Models()...); err != nil {
		s.log.Error("AutoMigrate failed", "error", err)
		return err
	}

	s.log.Info("GORM AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	s.log.Info("closing GORM connection")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the typed connection.
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
