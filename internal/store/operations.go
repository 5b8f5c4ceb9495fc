package store

import (
	"sort"
	"time"

	"oss.nandlabs.io/taskqueue/codec/validator"
	"oss.nandlabs.io/taskqueue/internal/jobs"
)

var structValidator = validator.NewStructValidatorWithCache()

// EnqueueRequest carries the caller-supplied fields for Enqueue; zero
// values mean "use the default".
type EnqueueRequest struct {
	ID         string
	Command    string
	Priority   int
	MaxRetries int
	TimeoutMs  int
}

// Enqueue validates and inserts a new job in state Pending, filling in
// defaults for any field the caller left at its zero value. It fails with
// a ValidationError if Command is empty, or if ID is supplied and already
// exists in the collection.
func (s *Store) Enqueue(req EnqueueRequest) (*jobs.Job, error) {
	if req.Command == "" {
		return nil, &jobs.ValidationError{Field: "command", Reason: "must not be empty"}
	}
	if req.Priority != 0 && (req.Priority < 1 || req.Priority > 5) {
		return nil, &jobs.ValidationError{Field: "priority", Reason: "must be between 1 and 5"}
	}

	var created *jobs.Job
	err := s.withLock(func(c *collection) error {
		now := time.Now().UTC()

		id := req.ID
		if id == "" {
			newID, err := newID(now)
			if err != nil {
				return &jobs.StoreIOError{Op: "generate job id", Err: err}
			}
			id = newID
		} else if c.find(id) != nil {
			return &jobs.ValidationError{Field: "id", Reason: "already exists"}
		}

		priority := req.Priority
		if priority == 0 {
			priority = jobs.DefaultPriority
		}
		maxRetries := req.MaxRetries
		if maxRetries == 0 {
			maxRetries = s.maxRetries
		}
		timeoutMs := req.TimeoutMs
		if timeoutMs == 0 {
			timeoutMs = jobs.DefaultTimeoutMs
		}

		j := &jobs.Job{
			ID:         id,
			Command:    req.Command,
			State:      jobs.Pending,
			Priority:   priority,
			Attempts:   0,
			MaxRetries: maxRetries,
			TimeoutMs:  timeoutMs,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if verr := structValidator.Validate(*j); verr != nil {
			return &jobs.ValidationError{Field: "job", Reason: verr.Error()}
		}
		c.Jobs = append(c.Jobs, j)
		created = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ClaimNext selects the next eligible job under the dispatch policy and
// transitions it to Processing, locked by workerID. It returns (nil, nil)
// if nothing is eligible.
func (s *Store) ClaimNext(workerID string) (*jobs.Job, error) {
	var claimed *jobs.Job
	err := s.withLock(func(c *collection) error {
		now := time.Now().UTC()
		j := selectNext(c.Jobs, now)
		if j == nil {
			return nil
		}
		j.State = jobs.Processing
		j.LockedBy = &workerID
		j.LockedAt = &now
		j.UpdatedAt = now
		claimed = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Complete marks a processing job as completed. It fails with a
// PreconditionError if the job is not currently Processing.
func (s *Store) Complete(id string) error {
	return s.withLock(func(c *collection) error {
		j := c.find(id)
		if j == nil {
			return &jobs.NotFoundError{ID: id}
		}
		if j.State != jobs.Processing {
			return &jobs.PreconditionError{ID: id, From: j.State, Want: string(jobs.Processing)}
		}
		j.State = jobs.Completed
		j.clearLock()
		j.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// Fail applies the retry policy to a processing job: reschedule with
// backoff, or move to the dead letter queue if MaxRetries is exhausted.
func (s *Store) Fail(id, errMsg string, backoffBase float64) error {
	return s.withLock(func(c *collection) error {
		j := c.find(id)
		if j == nil {
			return &jobs.NotFoundError{ID: id}
		}
		if j.State != jobs.Processing {
			return &jobs.PreconditionError{ID: id, From: j.State, Want: string(jobs.Processing)}
		}
		applyFailure(j, errMsg, backoffBase, time.Now().UTC())
		return nil
	})
}

// Cancel transitions a job to Cancelled. Legal only from Pending, Failed,
// or Dead; cancelling a Processing or Completed job fails with a
// PreconditionError (use the worker pool's CancelRunning for a job that is
// actually executing).
func (s *Store) Cancel(id string) error {
	return s.withLock(func(c *collection) error {
		j := c.find(id)
		if j == nil {
			return &jobs.NotFoundError{ID: id}
		}
		switch j.State {
		case jobs.Pending, jobs.Failed, jobs.Dead:
			j.State = jobs.Cancelled
			j.clearLock()
			j.UpdatedAt = time.Now().UTC()
			return nil
		default:
			return &jobs.PreconditionError{ID: id, From: j.State, Want: "pending, failed, or dead"}
		}
	})
}

// RetryFromDLQ revives a dead job: resets Attempts to 0, clears Error and
// NextRetryAt, and transitions it back to Pending. Legal only from Dead.
func (s *Store) RetryFromDLQ(id string) error {
	return s.withLock(func(c *collection) error {
		j := c.find(id)
		if j == nil {
			return &jobs.NotFoundError{ID: id}
		}
		if j.State != jobs.Dead {
			return &jobs.PreconditionError{ID: id, From: j.State, Want: string(jobs.Dead)}
		}
		j.State = jobs.Pending
		j.Attempts = 0
		j.Error = nil
		j.NextRetryAt = nil
		j.clearLock()
		j.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// List returns jobs newest-first by CreatedAt, optionally filtered to a
// single state.
func (s *Store) List(state *jobs.State) ([]*jobs.Job, error) {
	var result []*jobs.Job
	err := s.withLock(func(c *collection) error {
		for _, j := range c.Jobs {
			if state == nil || j.State == *state {
				result = append(result, j)
			}
		}
		sort.SliceStable(result, func(i, k int) bool {
			return result[i].CreatedAt.After(result[k].CreatedAt)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListDLQ returns all Dead jobs, newest-first by UpdatedAt.
func (s *Store) ListDLQ() ([]*jobs.Job, error) {
	var result []*jobs.Job
	err := s.withLock(func(c *collection) error {
		for _, j := range c.Jobs {
			if j.State == jobs.Dead {
				result = append(result, j)
			}
		}
		sort.SliceStable(result, func(i, k int) bool {
			return result[i].UpdatedAt.After(result[k].UpdatedAt)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Status is a count of jobs per state.
type Status struct {
	Pending    int
	Processing int
	Failed     int
	Completed  int
	Dead       int
	Cancelled  int
}

// Status returns the count of jobs in each state.
func (s *Store) Status() (Status, error) {
	var st Status
	err := s.withLock(func(c *collection) error {
		for _, j := range c.Jobs {
			switch j.State {
			case jobs.Pending:
				st.Pending++
			case jobs.Processing:
				st.Processing++
			case jobs.Failed:
				st.Failed++
			case jobs.Completed:
				st.Completed++
			case jobs.Dead:
				st.Dead++
			case jobs.Cancelled:
				st.Cancelled++
			}
		}
		return nil
	})
	return st, err
}

// Metrics summarizes throughput and latency across the whole collection.
type Metrics struct {
	Total                  int
	Completed              int
	SuccessRate            float64
	AvgCompletionLatencyMs float64
}

// Metrics computes aggregate counters: total jobs, completed count, success
// rate (completed/total), and average completion latency measured only
// over completed jobs (UpdatedAt - CreatedAt). All derived values are zero
// when the collection is empty.
func (s *Store) Metrics() (Metrics, error) {
	var m Metrics
	err := s.withLock(func(c *collection) error {
		m.Total = len(c.Jobs)
		var totalLatency time.Duration
		for _, j := range c.Jobs {
			if j.State == jobs.Completed {
				m.Completed++
				totalLatency += j.UpdatedAt.Sub(j.CreatedAt)
			}
		}
		if m.Total > 0 {
			m.SuccessRate = float64(m.Completed) / float64(m.Total)
		}
		if m.Completed > 0 {
			m.AvgCompletionLatencyMs = float64(totalLatency.Milliseconds()) / float64(m.Completed)
		}
		return nil
	})
	return m, err
}
