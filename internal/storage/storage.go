// Package storage keeps the history of model-selection benchmark runs.
// It uses BoltDB as the underlying storage engine; each run is stored as a
// JSON document keyed by its start time so range scans come back in order.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mood-predictor/internal/benchmark"
	"mood-predictor/internal/common"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

const (
	dbFile       = "mood-runs.db"
	runsBucket   = "runs"    // start time key -> report JSON
	runIDsBucket = "run_ids" // run id -> start time key
)

// Store provides persistent storage for benchmark reports using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the run database under dataPath.
func New(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataPath, dbFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(runIDsBucket)); err != nil {
			return fmt.Errorf("create run ids bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is harmless.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun stores a benchmark report. Saving the same run id again replaces it.
func (s *Store) SaveRun(report *benchmark.Report) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("%w: report has no run id", common.ErrInvalidInput)
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(runsBucket))
		ids := tx.Bucket([]byte(runIDsBucket))

		if old := ids.Get([]byte(report.RunID)); old != nil {
			if err := runs.Delete(old); err != nil {
				return err
			}
		}
		key := runKey(report.StartedAt, report.RunID)
		if err := runs.Put(key, data); err != nil {
			return err
		}
		return ids.Put([]byte(report.RunID), key)
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", report.RunID, err)
	}

	log.Debug().Str("run_id", report.RunID).Msg("Benchmark run stored")
	return nil
}

// GetRun returns the run with the given id, or ErrNotFound.
func (s *Store) GetRun(runID string) (*benchmark.Report, error) {
	var report *benchmark.Report
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(runIDsBucket)).Get([]byte(runID))
		if key == nil {
			return fmt.Errorf("%w: run %s", common.ErrNotFound, runID)
		}
		data := tx.Bucket([]byte(runsBucket)).Get(key)
		if data == nil {
			return fmt.Errorf("%w: run %s", common.ErrNotFound, runID)
		}
		var r benchmark.Report
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("unmarshal run %s: %w", runID, err)
		}
		report = &r
		return nil
	})
	return report, err
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]benchmark.Report, error) {
	var reports []benchmark.Report
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r benchmark.Report
			if err := json.Unmarshal(v, &r); err != nil {
				log.Warn().Err(err).Str("key", string(k)).Msg("Skipping malformed run record")
				continue
			}
			reports = append(reports, r)
			if limit > 0 && len(reports) == limit {
				break
			}
		}
		return nil
	})
	return reports, err
}

// GetRunsInRange returns runs started within [start, end], oldest first.
func (s *Store) GetRunsInRange(start, end time.Time) ([]benchmark.Report, error) {
	var reports []benchmark.Report
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		startKey := timeKey(start)
		endKey := timeKey(end)

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k[:len(endKey)], endKey) <= 0; k, v = c.Next() {
			var r benchmark.Report
			if err := json.Unmarshal(v, &r); err != nil {
				continue // Skip malformed records
			}
			reports = append(reports, r)
		}
		return nil
	})
	return reports, err
}

// timeKey is zero padded so byte order matches time order.
func timeKey(t time.Time) []byte {
	return []byte(fmt.Sprintf("%020d", t.UnixNano()))
}

func runKey(t time.Time, runID string) []byte {
	return append(timeKey(t), []byte("_"+runID)...)
}
