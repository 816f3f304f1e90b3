package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/meshbench/meshbench/pkg/types"
)

var (
	// Bucket names
	bucketRuns      = []byte("runs")
	bucketSamples   = []byte("samples")
	bucketLatencies = []byte("latencies")
)

// ErrRunNotFound reports that no archived run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Store archives experiment runs in a BoltDB file so results survive
// the harness process.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the run archive in dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "meshbench.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketRuns, bucketSamples, bucketLatencies} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the archive
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a run's summary and its measurement series in one
// transaction. Either series may be empty depending on the run kind.
func (s *Store) SaveRun(summary *types.RunSummary, samples []types.MetricSample, latencies []types.LatencyRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		key := []byte(summary.ID)

		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal run summary: %w", err)
		}
		if err := tx.Bucket(bucketRuns).Put(key, data); err != nil {
			return err
		}

		data, err = json.Marshal(samples)
		if err != nil {
			return fmt.Errorf("failed to marshal samples: %w", err)
		}
		if err := tx.Bucket(bucketSamples).Put(key, data); err != nil {
			return err
		}

		data, err = json.Marshal(latencies)
		if err != nil {
			return fmt.Errorf("failed to marshal latencies: %w", err)
		}
		return tx.Bucket(bucketLatencies).Put(key, data)
	})
}

// GetRun returns one archived run summary.
func (s *Store) GetRun(id string) (*types.RunSummary, error) {
	var summary types.RunSummary
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get([]byte(id))
		if data == nil {
			return ErrRunNotFound
		}
		return json.Unmarshal(data, &summary)
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetSamples returns the metric samples of one archived run.
func (s *Store) GetSamples(id string) ([]types.MetricSample, error) {
	var samples []types.MetricSample
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSamples).Get([]byte(id))
		if data == nil {
			return ErrRunNotFound
		}
		return json.Unmarshal(data, &samples)
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// GetLatencies returns the latency records of one archived run.
func (s *Store) GetLatencies(id string) ([]types.LatencyRecord, error) {
	var latencies []types.LatencyRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketLatencies).Get([]byte(id))
		if data == nil {
			return ErrRunNotFound
		}
		return json.Unmarshal(data, &latencies)
	})
	if err != nil {
		return nil, err
	}
	return latencies, nil
}

// ListRuns returns every archived run summary, most recent first.
func (s *Store) ListRuns() ([]*types.RunSummary, error) {
	var runs []*types.RunSummary
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var summary types.RunSummary
			if err := json.Unmarshal(v, &summary); err != nil {
				return err
			}
			runs = append(runs, &summary)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}
