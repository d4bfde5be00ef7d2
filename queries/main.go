package queries

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"gitlab.com/agentlink-marketplace/attribution_api/config"
)

// Repo holds the database handles for the engine. Writes go through
// ConnWriter, heavy read only queries through ConnReader; Conn aliases the
// writer for transactional read-then-write sequences
type Repo struct {
	Conn       *gorm.DB
	ConnReader *gorm.DB
	ConnWriter *gorm.DB
}

var repo *Repo

// InitRepo connects to the database cluster and stores the singleton
func InitRepo(cfg config.DatabaseClusterConfig) *Repo {
	writer := connect(cfg.Writer)
	reader := connect(cfg.Reader)
	repo = &Repo{
		Conn:       writer,
		ConnReader: reader,
		ConnWriter: writer,
	}
	return repo
}

// InitTestRepo injects prebuilt connections, used by tests running on sqlmock
func InitTestRepo(writer, reader *gorm.DB) *Repo {
	repo = &Repo{Conn: writer, ConnReader: reader, ConnWriter: writer}
	return repo
}

// GetRepo returns the repo singleton
func GetRepo() *Repo {
	return repo
}

// Close the database connections on shutdown
func Close() {
	if repo == nil {
		return
	}
	closeConn(repo.ConnWriter)
	if repo.ConnReader != repo.ConnWriter {
		closeConn(repo.ConnReader)
	}
}

func closeConn(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Str("section", "queries").Msg("Unable to close database connection")
	}
}

func connect(cfg config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name, cfg.SSLmode, cfg.ApplicationName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		log.Fatal().Err(err).Str("section", "queries").Str("host", cfg.Host).Msg("Unable to connect to database")
	}
	return db
}
