package main

import (
	"fmt"
	"strconv"

	"oss.nandlabs.io/taskqueue/cli"
	"oss.nandlabs.io/taskqueue/internal/jobs"
	"oss.nandlabs.io/taskqueue/internal/runner"
	"oss.nandlabs.io/taskqueue/internal/worker"
)

func newWorkerCommand() *cli.Command {
	cmd := cli.NewCommand("worker", "manage the worker pool", version, nil)

	start := cli.NewCommand("start", "spawn N worker loops and block until stopped", version, runWorkerStart)
	start.Flags = []*cli.Flag{
		{Name: "count", Aliases: []string{"c"}, Usage: "number of worker loops to run", Default: "1"},
	}
	cmd.AddSubCommand(start)

	cmd.AddSubCommand(cli.NewCommand("stop", "signal a running worker pool to shut down", version, runWorkerStop))
	return cmd
}

// runWorkerStart implements the "worker start" verb: spawn N workers
// against the store at DATA_PATH and block until SIGINT/SIGTERM arrive.
// lifecycle.NewSimpleComponentManager (pulled in via worker.Pool) already
// installs that signal handler and calls StopAll from it, so this command
// doesn't need a handler of its own — it only needs to block on Pool.Wait
// until that happens.
func runWorkerStart(ctx *cli.Context) error {
	countStr, _ := ctx.GetFlag("count")
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 1 {
		return die(&jobs.ValidationError{Field: "count", Reason: "must be a positive integer"})
	}

	dir := dataDir()
	st, backoffBase, err := newStore(dir)
	if err != nil {
		return die(err)
	}
	rn, err := runner.New()
	if err != nil {
		return die(err)
	}

	if err := writePIDFile(dir); err != nil {
		return die(err)
	}
	defer removePIDFile(dir)

	pool := worker.New(st, rn, backoffBase)
	if err := pool.Start(count); err != nil {
		return die(err)
	}
	fmt.Printf("worker pool started: %d worker(s), data dir %s\n", count, dir)

	pool.Wait()
	fmt.Println("worker pool stopped")
	return nil
}

// runWorkerStop implements "worker stop" run from a second invocation: it
// reads the pid a running "worker start" recorded and sends it the
// platform's shutdown signal.
func runWorkerStop(ctx *cli.Context) error {
	dir := dataDir()
	pid, err := readPIDFile(dir)
	if err != nil {
		return die(err)
	}
	if err := terminateProcess(pid); err != nil {
		return die(err)
	}
	fmt.Printf("sent shutdown signal to worker pool (pid %d)\n", pid)
	return nil
}
