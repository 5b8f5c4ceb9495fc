package main

import (
	"fmt"

	"oss.nandlabs.io/taskqueue/cli"
	"oss.nandlabs.io/taskqueue/internal/jobs"
)

func newStatusCommand() *cli.Command {
	return cli.NewCommand("status", "show job counts per state", version, runStatus)
}

func newMetricsCommand() *cli.Command {
	return cli.NewCommand("metrics", "show throughput and latency metrics", version, runMetrics)
}

func newListCommand() *cli.Command {
	cmd := cli.NewCommand("list", "list jobs, newest first", version, runList)
	cmd.Flags = []*cli.Flag{
		{Name: "state", Aliases: []string{"s"}, Usage: "filter to one state (pending, processing, failed, completed, dead, cancelled)"},
	}
	return cmd
}

func newCancelCommand() *cli.Command {
	return cli.NewCommand("cancel", "cancel JOB_ID (pending, failed, or dead only)", version, runCancel)
}

func runStatus(ctx *cli.Context) error {
	dir := dataDir()
	st, _, err := newStore(dir)
	if err != nil {
		return die(err)
	}
	status, err := st.Status()
	if err != nil {
		return die(err)
	}
	fmt.Printf("pending:    %d\n", status.Pending)
	fmt.Printf("processing: %d\n", status.Processing)
	fmt.Printf("failed:     %d\n", status.Failed)
	fmt.Printf("completed:  %d\n", status.Completed)
	fmt.Printf("dead:       %d\n", status.Dead)
	fmt.Printf("cancelled:  %d\n", status.Cancelled)
	return nil
}

func runMetrics(ctx *cli.Context) error {
	dir := dataDir()
	st, _, err := newStore(dir)
	if err != nil {
		return die(err)
	}
	m, err := st.Metrics()
	if err != nil {
		return die(err)
	}
	fmt.Printf("total:                  %d\n", m.Total)
	fmt.Printf("completed:              %d\n", m.Completed)
	fmt.Printf("success_rate:           %.4f\n", m.SuccessRate)
	fmt.Printf("avg_completion_latency: %.1fms\n", m.AvgCompletionLatencyMs)
	return nil
}

func runList(ctx *cli.Context) error {
	stateStr, _ := ctx.GetFlag("state")

	dir := dataDir()
	st, _, err := newStore(dir)
	if err != nil {
		return die(err)
	}

	var filter *jobs.State
	if stateStr != "" {
		s := jobs.State(stateStr)
		if !validState(s) {
			return die(&jobs.ValidationError{Field: "state", Reason: "unrecognized state"})
		}
		filter = &s
	}

	list, err := st.List(filter)
	if err != nil {
		return die(err)
	}
	printJobTable(list)
	return nil
}

func runCancel(ctx *cli.Context) error {
	if len(ctx.Args) == 0 {
		return die(&jobs.ValidationError{Field: "job_id", Reason: "cancel requires a JOB_ID argument"})
	}
	dir := dataDir()
	st, _, err := newStore(dir)
	if err != nil {
		return die(err)
	}
	if err := st.Cancel(ctx.Args[0]); err != nil {
		return die(err)
	}
	fmt.Printf("cancelled %s\n", ctx.Args[0])
	return nil
}

func validState(s jobs.State) bool {
	switch s {
	case jobs.Pending, jobs.Processing, jobs.Failed, jobs.Completed, jobs.Dead, jobs.Cancelled:
		return true
	default:
		return false
	}
}
