package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

//go:embed schema.sql
var schemaSQL string

// driverName is the database/sql driver registered with the casefold function.
const driverName = "sqlite3_transcriptions"

// DefaultTimeout bounds connection acquisition and lock waits.
const DefaultTimeout = 30 * time.Second

// DefaultMaxOpenConns is the pool size. SQLite allows one writer; the extra
// connections serve concurrent WAL readers.
const DefaultMaxOpenConns = 4

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", casefold, true)
		},
	})
}

// casefold performs Unicode case folding for case-insensitive matching.
// A Caser is stateful, so a fresh one is built per call.
func casefold(s string) string {
	return cases.Fold().String(s)
}

// uriPathEscaper percent-encodes the characters that end the path part of a
// SQLite URI filename. SQLite decodes them again when opening the file.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// Options configures a Store.
type Options struct {
	// Timeout bounds every operation, including waits for the write lock.
	// Defaults to DefaultTimeout.
	Timeout time.Duration

	// MaxOpenConns limits the connection pool. Defaults to DefaultMaxOpenConns.
	MaxOpenConns int

	// Now returns the creation time for new records. Defaults to time.Now.
	Now func() time.Time
}

// Store provides durable storage for transcription records.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	now     func() time.Time
}

// Open creates or opens the SQLite database at path and ensures the schema
// exists. The path is required; there is no implicit default location.
func Open(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open database: path is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = DefaultMaxOpenConns
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_txlock=immediate&_synchronous=NORMAL",
		uriPathEscaper.Replace(path), opts.Timeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)

	s := &Store{db: db, timeout: opts.Timeout, now: opts.Now}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", classify(err))
	}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init creates the transcriptions table if it does not exist.
// Safe to call repeatedly and concurrently.
func (s *Store) Init(ctx context.Context) error {
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, schemaSQL)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// withConn checks out a dedicated connection for one operation, bounded by
// the store timeout, and always returns it to the pool.
func (s *Store) withConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return classify(fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()

	err = fn(ctx, conn)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// The driver reports an interrupted statement, not the deadline.
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}
	return classify(err)
}
