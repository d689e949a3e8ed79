package database

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/sahilchouksey/learnhub-api/config"
	applog "github.com/sahilchouksey/learnhub-api/utils/logger"
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error
}

// PostgreSQLStore is a raw database/sql store on lib/pq. It owns the DDL GORM cannot
// express portably and the aggregate report queries.
type PostgreSQLStore struct {
	db  *sql.DB
	log *applog.Logger
}

func Start(env *config.EnvironmentVariable, log *applog.Logger) (*PostgreSQLStore, error) {
	db, err := sql.Open("postgres", env.DSN())
	if err != nil {
		log.Error("unable to open lib/pq connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(10)

	return &PostgreSQLStore{db: db, log: log}, nil
}

// NewPostgreSQLStore wraps an existing *sql.DB.
func NewPostgreSQLStore(db *sql.DB, log *applog.Logger) *PostgreSQLStore {
	return &PostgreSQLStore{db: db, log: log}
}

func (s *PostgreSQLStore) Init() error {
	s.log.Info("applying table constraints")
	return s.Initialize()
}

func (s *PostgreSQLStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database connection is alive
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}
