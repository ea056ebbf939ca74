package recording

import (
	"database/sql"
	"fmt"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
)

// ResultsTable is the table SQLiteRecorder writes to.
const ResultsTable = "results"

// SQLiteRecorder writes rows into a SQLite database, batching inserts in a
// transaction. Existing databases are appended to, so several sweeps can
// share one file and be told apart by run_id.
type SQLiteRecorder struct {
	*sql.DB

	path      string
	rows      []Row
	batchSize int
	closed    bool
}

// NewSQLiteRecorder opens (or creates) the database at path and ensures the
// results table exists.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}
	return newSQLiteRecorder(db, path)
}

// NewSQLiteRecorderWithDB creates a SQLiteRecorder on an open database.
func NewSQLiteRecorderWithDB(db *sql.DB) (*SQLiteRecorder, error) {
	return newSQLiteRecorder(db, "")
}

func newSQLiteRecorder(db *sql.DB, path string) (*SQLiteRecorder, error) {
	r := &SQLiteRecorder{
		DB:        db,
		path:      path,
		batchSize: 10000,
	}
	createTableSQL := `CREATE TABLE IF NOT EXISTS ` + ResultsTable + ` (
	run_id     TEXT NOT NULL,
	policy     TEXT NOT NULL,
	experiment INTEGER NOT NULL,
	trial      INTEGER NOT NULL,
	devices    INTEGER NOT NULL,
	latency    INTEGER NOT NULL,
	rounds     INTEGER NOT NULL
);`
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating results table: %w", err)
	}

	atexit.Register(func() {
		if err := r.Close(); err != nil {
			logrus.Errorf("closing results database %s: %v", r.path, err)
		}
	})
	return r, nil
}

// Record buffers a row, flushing when the batch is full.
func (r *SQLiteRecorder) Record(row Row) error {
	if r.closed {
		return fmt.Errorf("recording to closed database %s", r.path)
	}
	r.rows = append(r.rows, row)
	if len(r.rows) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Flush inserts all buffered rows in a single transaction.
func (r *SQLiteRecorder) Flush() error {
	if r.closed || len(r.rows) == 0 {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertSQL := "INSERT INTO " + ResultsTable + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range r.rows {
		if _, err := stmt.Exec(row.RunID, row.Policy, row.Experiment, row.Trial, row.Devices, row.Latency, row.Rounds); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing results: %w", err)
	}

	logrus.Debugf("flushed %d result rows", len(r.rows))
	r.rows = nil
	return nil
}

// Close flushes and closes the database.
func (r *SQLiteRecorder) Close() error {
	if r.closed {
		return nil
	}
	flushErr := r.Flush()
	r.closed = true
	if err := r.DB.Close(); err != nil {
		return fmt.Errorf("closing results database: %w", err)
	}
	return flushErr
}
