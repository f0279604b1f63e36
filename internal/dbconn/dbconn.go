// Package dbconn opens the backend database. File paths and file: URLs go to
// SQLite, postgres:// URLs go to Postgres through lib/pq.
package dbconn

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	mu sync.Mutex
	db *gorm.DB
)

type DBConf struct {
	URL         string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    logger.LogLevel
}

type DBOpts func(*DBConf)

func NewConf() *DBConf {
	return &DBConf{
		URL:         "file:taskdeck.db",
		MaxIdle:     25,
		MaxOpen:     25,
		MaxLifetime: 300 * time.Second,
		LogLevel:    logger.Warn,
	}
}

func WithURL(url string) DBOpts {
	return func(d *DBConf) {
		d.URL = url
	}
}

func WithMaxIdle(idle int) DBOpts {
	return func(d *DBConf) {
		d.MaxIdle = idle
	}
}

func WithMaxOpen(open int) DBOpts {
	return func(d *DBConf) {
		d.MaxOpen = open
	}
}

func WithMaxLifetime(lifetime time.Duration) DBOpts {
	return func(d *DBConf) {
		d.MaxLifetime = lifetime
	}
}

func WithLogLevel(level logger.LogLevel) DBOpts {
	return func(d *DBConf) {
		d.LogLevel = level
	}
}

// IsPostgres reports whether url selects the Postgres driver.
func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func dialector(url string) (gorm.Dialector, error) {
	if !IsPostgres(url) {
		return sqlite.Open(url), nil
	}
	sqlDB, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return postgres.New(postgres.Config{Conn: sqlDB}), nil
}

// Open returns a new, pinged connection pool. Callers own closing it.
func Open(options ...DBOpts) (*gorm.DB, error) {
	conf := NewConf()
	for _, o := range options {
		o(conf)
	}
	if strings.TrimSpace(conf.URL) == "" {
		return nil, errors.New("database url is required")
	}

	dial, err := dialector(conf.URL)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(conf.LogLevel),
	})
	if err != nil {
		return nil, err
	}

	sdb, err := conn.DB()
	if err != nil {
		return nil, err
	}

	sdb.SetMaxIdleConns(conf.MaxIdle)
	sdb.SetMaxOpenConns(conf.MaxOpen)
	sdb.SetConnMaxLifetime(conf.MaxLifetime)

	if err := sdb.Ping(); err != nil {
		sdb.Close()
		return nil, err
	}

	return conn, nil
}

// GetConn returns the process-wide connection, opening it on first use.
// Options are ignored once the connection exists.
func GetConn(options ...DBOpts) (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}

	conn, err := Open(options...)
	if err != nil {
		return nil, err
	}
	db = conn
	return db, nil
}

func Migrate(models ...any) error {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return errors.New("db is not defined")
	}
	return db.AutoMigrate(models...)
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return nil
	}
	sdb, err := db.DB()
	db = nil
	if err != nil {
		return err
	}
	return sdb.Close()
}
