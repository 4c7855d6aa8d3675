package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/yukikurage/kanban-board/internal/config"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"golang.org/x/sync/singleflight"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Handle is a live, migrated connection to the store.
type Handle struct {
	DB      *gorm.DB
	Version int
}

// Manager owns at most one open handle. Concurrent Open calls share a single
// in-flight open and every later call gets the same handle back.
type Manager struct {
	dialector func() (gorm.Dialector, error)
	gormCfg   *gorm.Config

	mu     sync.Mutex
	handle *Handle
	group  singleflight.Group
}

// NewManager creates a Manager for the database described by cfg.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		dialector: func() (gorm.Dialector, error) { return Dialector(cfg) },
		gormCfg:   GormConfig(cfg.DBLogLevel),
	}
}

// NewManagerWithDialector creates a Manager over an explicit dialector. Tests
// use it to open sqlite files and sqlmock connections.
func NewManagerWithDialector(d gorm.Dialector, gormCfg *gorm.Config) *Manager {
	if gormCfg == nil {
		gormCfg = GormConfig("silent")
	}
	gormCfg.TranslateError = true
	return &Manager{
		dialector: func() (gorm.Dialector, error) { return d, nil },
		gormCfg:   gormCfg,
	}
}

// Open returns the store handle, opening and upgrading it to targetVersion on
// first use. Failures wrap ErrStoreUnavailable.
func (m *Manager) Open(ctx context.Context, targetVersion int) (*Handle, error) {
	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()
	if h != nil && h.Version >= targetVersion {
		return h, nil
	}

	// The flight is shared, so one caller's cancellation must not fail the rest.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := m.group.Do(strconv.Itoa(targetVersion), func() (any, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		// Another flight may have finished while we waited for the lock.
		if m.handle != nil && m.handle.Version >= targetVersion {
			return m.handle, nil
		}

		db := (*gorm.DB)(nil)
		if m.handle != nil {
			db = m.handle.DB
		} else {
			opened, err := m.connect()
			if err != nil {
				return nil, err
			}
			db = opened
		}

		version, err := Migrate(flightCtx, db, targetVersion)
		if err != nil {
			if m.handle == nil {
				closeDB(db)
			}
			return nil, fmt.Errorf("%w: %v", apierrors.ErrStoreUnavailable, err)
		}

		m.handle = &Handle{DB: db, Version: version}
		return m.handle, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Handle), nil
}

// Handle returns the open handle, or nil before the first successful Open.
func (m *Manager) Handle() *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// Close releases the handle. A later Open reconnects.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return nil
	}

	sqlDB, err := m.handle.DB.DB()
	m.handle = nil
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

func (m *Manager) connect() (*gorm.DB, error) {
	d, err := m.dialector()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrStoreUnavailable, err)
	}

	db, err := gorm.Open(d, m.gormCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %v", apierrors.ErrStoreUnavailable, err)
	}

	// Surface unreadable or locked files now instead of on the first query.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrStoreUnavailable, err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: failed to reach database: %v", apierrors.ErrStoreUnavailable, err)
	}

	log.Println("Database connection established")
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// Dialector selects the gorm dialector for the configured driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite, "":
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		return sqlite.Open(cfg.DBPath + "?_foreign_keys=on&_busy_timeout=5000"), nil
	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// GormConfig builds the gorm configuration shared by every dialect.
func GormConfig(level string) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(level)),
		TranslateError: true,
	}
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

var defaultManager struct {
	sync.Mutex
	m *Manager
}

// Init installs the process-wide manager. Calling it again is a no-op so that
// every caller converges on one store.
func Init(cfg *config.Config) *Manager {
	defaultManager.Lock()
	defer defaultManager.Unlock()
	if defaultManager.m == nil {
		defaultManager.m = NewManager(cfg)
	}
	return defaultManager.m
}

// Open opens the process-wide store at targetVersion.
func Open(ctx context.Context, targetVersion int) (*Handle, error) {
	defaultManager.Lock()
	m := defaultManager.m
	defaultManager.Unlock()
	if m == nil {
		return nil, fmt.Errorf("%w: database manager not initialized", apierrors.ErrStoreUnavailable)
	}
	return m.Open(ctx, targetVersion)
}

// GetDB returns the process-wide connection, or nil if it is not open.
func GetDB() *gorm.DB {
	defaultManager.Lock()
	m := defaultManager.m
	defaultManager.Unlock()
	if m == nil {
		return nil
	}
	if h := m.Handle(); h != nil {
		return h.DB
	}
	return nil
}

// SetManager replaces the process-wide manager (used for testing).
func SetManager(m *Manager) {
	defaultManager.Lock()
	defer defaultManager.Unlock()
	defaultManager.m = m
}

// Close closes the process-wide store.
func Close() error {
	defaultManager.Lock()
	m := defaultManager.m
	defaultManager.Unlock()
	if m == nil {
		return nil
	}
	return m.Close()
}
