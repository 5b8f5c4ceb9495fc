// Package store implements the durable job store: atomic read-modify-write
// transactions over a JSON-encoded job collection, guarded by a
// cross-process file lock, plus the claim-selection (dispatch) and retry
// policies that run inside those transactions.
package store

import (
	"os"
	"path/filepath"
	"time"

	"oss.nandlabs.io/taskqueue/codec"
	"oss.nandlabs.io/taskqueue/fsutils"
	"oss.nandlabs.io/taskqueue/internal/jobs"
	"oss.nandlabs.io/taskqueue/l3"
	"oss.nandlabs.io/taskqueue/uuid"
)

var logger = l3.Get()

// lockTimeout is the bounded wait for acquiring the store's file lock
// before giving up with a LockTimeoutError.
const lockTimeout = 5 * time.Second

// Store is a durable, transactional container for the job collection. Every
// public method runs as a single transaction: acquire the cross-process
// lock, read the on-disk state, mutate it in memory, write it back
// atomically, release the lock.
type Store struct {
	dir          string
	jobsPath     string
	lock         *fsutils.Lock
	codec        codec.Codec
	backoffBase  float64
	maxRetries   int
}

// New creates a Store rooted at dir, creating the directory if it does not
// exist. backoffBase and defaultMaxRetries back the retry policy and
// Enqueue's default for jobs that don't specify MaxRetries.
func New(dir string, backoffBase float64, defaultMaxRetries int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &jobs.StoreIOError{Op: "mkdir", Err: err}
	}
	jobsPath := filepath.Join(dir, "jobs.json")
	c, err := codec.GetDefault(fsutils.LookupContentType(jobsPath))
	if err != nil {
		return nil, &jobs.StoreIOError{Op: "select jobs file codec", Err: err}
	}
	return &Store{
		dir:         dir,
		jobsPath:    jobsPath,
		lock:        fsutils.NewLock(filepath.Join(dir, ".lock")),
		codec:       c,
		backoffBase: backoffBase,
		maxRetries:  defaultMaxRetries,
	}, nil
}

// collection is the on-disk shape of jobs.json: a flat JSON array of jobs.
type collection struct {
	Jobs []*jobs.Job
}

// withLock acquires the store's cross-process lock, loads the current
// collection, runs fn against it, and — if fn succeeds — writes the
// (possibly mutated) collection back atomically before releasing the lock.
// fn's returned error is propagated without writing back, leaving on-disk
// state unchanged, per the all-or-nothing transaction guarantee.
func (s *Store) withLock(fn func(c *collection) error) error {
	if err := s.lock.Acquire(lockTimeout); err != nil {
		return &jobs.LockTimeoutError{Waited: lockTimeout}
	}
	defer s.lock.Release()

	c, err := s.load()
	if err != nil {
		return err
	}

	if err := fn(c); err != nil {
		return err
	}

	return s.save(c)
}

// load reads and decodes jobs.json. A missing file is treated as an empty
// collection rather than an error.
func (s *Store) load() (*collection, error) {
	c := &collection{}
	f, err := os.Open(s.jobsPath)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, &jobs.StoreIOError{Op: "read jobs.json", Err: err}
	}
	defer f.Close()

	if err := s.codec.Read(f, &c.Jobs); err != nil {
		return nil, &jobs.StoreIOError{Op: "decode jobs.json", Err: err}
	}
	return c, nil
}

// save writes the collection to a temp file sibling to jobs.json, then
// renames it into place, so a crash mid-write never leaves a truncated or
// half-written jobs.json.
func (s *Store) save(c *collection) error {
	tmp := s.jobsPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &jobs.StoreIOError{Op: "create temp jobs file", Err: err}
	}
	if err := s.codec.Write(c.Jobs, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return &jobs.StoreIOError{Op: "write jobs.json", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &jobs.StoreIOError{Op: "close temp jobs file", Err: err}
	}
	if err := os.Rename(tmp, s.jobsPath); err != nil {
		return &jobs.StoreIOError{Op: "rename jobs.json", Err: err}
	}
	return nil
}

// find returns the job with the given id, or nil if absent.
func (c *collection) find(id string) *jobs.Job {
	for _, j := range c.Jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// newID generates a collision-resistant job id: a nanosecond timestamp
// prefix (for readability and rough ordering) plus a random UUIDv4 suffix,
// per spec's "high-resolution time + random suffix" guidance.
func newID(now time.Time) (string, error) {
	u, err := uuid.V4()
	if err != nil {
		return "", err
	}
	return now.UTC().Format("20060102T150405.000000000") + "-" + u.String(), nil
}
