package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options selects and configures the backing database.
type Options struct {
	Driver       string // mysql or sqlite
	User         string // mysql user
	Pass         string // mysql password (optional)
	Host         string // mysql host
	Port         string // mysql port
	Name         string // mysql database name
	Path         string // sqlite file path, or :memory:
	MaxOpenConns int    // pool size for mysql
}

// Open connects to the configured database and verifies the connection.
func Open(opts Options) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch opts.Driver {
	case DriverMySQL:
		db, err = openMySQL(opts)
	case DriverSQLite:
		db, err = openSQLite(opts.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory returns a migrated, private in-memory SQLite database.
func OpenMemory() (*sql.DB, error) {
	db, err := openSQLite(":memory:")
	if err != nil {
		return nil, err
	}
	if err := Migrate(context.Background(), db, DriverSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openMySQL(opts Options) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Pass
	cfg.Net = "tcp"
	cfg.Addr = opts.Host + ":" + opts.Port
	cfg.DBName = opts.Name
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// report matched rather than changed rows so a no-op UPDATE is not a miss
	cfg.ClientFoundRows = true
	cfg.MultiStatements = false
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open(DriverMySQL, cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	size := opts.MaxOpenConns
	if size <= 0 {
		size = 25
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	dsn := path +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection: SQLite serialises writers and :memory: is per-connection
	db.SetMaxOpenConns(1)
	return db, nil
}
