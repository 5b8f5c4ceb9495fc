package main

import (
	"testing"

	"oss.nandlabs.io/taskqueue/internal/jobs"
	"oss.nandlabs.io/taskqueue/testing/assert"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &jobs.ValidationError{Field: "x", Reason: "y"}, 1},
		{"not found", &jobs.NotFoundError{ID: "j1"}, 2},
		{"precondition", &jobs.PreconditionError{ID: "j1", From: jobs.Processing, Want: "pending"}, 3},
		{"lock timeout", &jobs.LockTimeoutError{}, 4},
		{"store io", &jobs.StoreIOError{Op: "read"}, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, exitCode(c.err))
	}
}

func TestParseIntFlag(t *testing.T) {
	n, err := parseIntFlag("priority", "")
	if err != nil {
		t.Fatalf("parseIntFlag(\"\") error = %v", err)
	}
	assert.Equal(t, 0, n)

	n, err = parseIntFlag("priority", "3")
	if err != nil {
		t.Fatalf("parseIntFlag(\"3\") error = %v", err)
	}
	assert.Equal(t, 3, n)

	if _, err := parseIntFlag("priority", "abc"); err == nil {
		t.Fatal("parseIntFlag(\"abc\") error = nil, want ValidationError")
	}
}

func TestIsTruthy(t *testing.T) {
	assert.True(t, isTruthy("true"))
	assert.True(t, isTruthy("TRUE"))
	assert.True(t, isTruthy("1"))
	assert.False(t, isTruthy(""))
	assert.False(t, isTruthy("false"))
	assert.False(t, isTruthy("no"))
}

func TestValidState(t *testing.T) {
	assert.True(t, validState(jobs.Pending))
	assert.True(t, validState(jobs.Dead))
	assert.False(t, validState(jobs.State("bogus")))
}

func TestDefaultFor(t *testing.T) {
	assert.Equal(t, "3", defaultFor("max-retries"))
	assert.Equal(t, "2", defaultFor("backoff-base"))
	assert.Equal(t, "", defaultFor("unknown-key"))
}
