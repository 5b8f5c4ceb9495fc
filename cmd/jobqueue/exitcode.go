package main

import (
	"errors"
	"fmt"
	"os"

	"oss.nandlabs.io/taskqueue/internal/jobs"
)

// exitCode maps the typed errors from spec §7 to CLI exit codes. Every CLI
// verb that can fail exits non-zero; the codes are differentiated so a
// script can distinguish "bad input" from "lock contention" from "disk
// trouble" without parsing the message.
func exitCode(err error) int {
	var validation *jobs.ValidationError
	var notFound *jobs.NotFoundError
	var precondition *jobs.PreconditionError
	var lockTimeout *jobs.LockTimeoutError
	var storeIO *jobs.StoreIOError

	switch {
	case errors.As(err, &validation):
		return 1
	case errors.As(err, &notFound):
		return 2
	case errors.As(err, &precondition):
		return 3
	case errors.As(err, &lockTimeout):
		return 4
	case errors.As(err, &storeIO):
		return 5
	default:
		return 1
	}
}

// die prints err to stderr and exits with its mapped code. Used by every
// command Action that can fail.
func die(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitCode(err))
	return nil
}
