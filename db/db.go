package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Need for postgres driver.
	"go.uber.org/zap"
	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/dialects/postgresql"

	"github.com/admon/ledger-mirror/config"
)

// ConnectArgs returns connection string for database connection.
func ConnectArgs(cfg *config.DB) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s"+
		" port=%d sslmode=%s", cfg.Host, cfg.User, cfg.Password,
		cfg.DBName, cfg.Port, sslMode)
}

// Connect opens and checks a postgres connection pool.
func Connect(connectArgs string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", connectArgs)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// NewDB wraps a connection pool. A nil logger disables query logging.
func NewDB(conn *sql.DB, log *zap.Logger) *reform.DB {
	var logger reform.Logger
	if log != nil {
		logger = &queryLogger{log: log.Named("sql")}
	}

	return reform.NewDB(conn, postgresql.Dialect, logger)
}

// CloseDB closes database.
func CloseDB(db *reform.DB) {
	_ = db.DBInterface().(*sql.DB).Close()
}

// queryLogger logs reform queries at debug level.
type queryLogger struct {
	log *zap.Logger
}

func (l *queryLogger) Before(query string, args []interface{}) {}

func (l *queryLogger) After(query string, args []interface{},
	d time.Duration, err error) {
	if err != nil {
		l.log.Debug("query failed", zap.String("query", query),
			zap.Duration("duration", d), zap.Error(err))
		return
	}

	l.log.Debug("query", zap.String("query", query),
		zap.Duration("duration", d))
}
