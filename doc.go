// Package taskqueue is a local, persistent background job queue.
//
// It durably stores shell-command jobs, dispatches them to one or more
// worker processes under a priority- and retry-aware policy, and retries
// failed jobs with exponential backoff before parking them in a dead letter
// queue. The job store, dispatch policy, retry policy, worker pool,
// subprocess runner, and shutdown coordinator live under internal/; cmd/
// contains the CLI binary that drives them.
//
// A handful of general-purpose sub-packages support the above and are
// independently importable:
//
//	import "oss.nandlabs.io/taskqueue/l3"        // Logging
//	import "oss.nandlabs.io/taskqueue/codec"     // Encoding/decoding (JSON, XML, YAML)
//	import "oss.nandlabs.io/taskqueue/config"    // Application configuration
//	import "oss.nandlabs.io/taskqueue/cli"       // Command-line framework
//	import "oss.nandlabs.io/taskqueue/lifecycle" // Component start/stop management
package taskqueue
