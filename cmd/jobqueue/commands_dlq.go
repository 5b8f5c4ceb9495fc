package main

import (
	"fmt"

	"oss.nandlabs.io/taskqueue/cli"
	"oss.nandlabs.io/taskqueue/internal/jobs"
)

func newDLQCommand() *cli.Command {
	cmd := cli.NewCommand("dlq", "inspect and revive dead-lettered jobs", version, nil)
	cmd.AddSubCommand(cli.NewCommand("list", "list dead jobs, newest first", version, runDLQList))
	cmd.AddSubCommand(cli.NewCommand("retry", "retry JOB_ID: revive a dead job back to pending", version, runDLQRetry))
	return cmd
}

func runDLQList(ctx *cli.Context) error {
	dir := dataDir()
	st, _, err := newStore(dir)
	if err != nil {
		return die(err)
	}
	list, err := st.ListDLQ()
	if err != nil {
		return die(err)
	}
	printJobTable(list)
	return nil
}

func runDLQRetry(ctx *cli.Context) error {
	if len(ctx.Args) == 0 {
		return die(&jobs.ValidationError{Field: "job_id", Reason: "dlq retry requires a JOB_ID argument"})
	}
	dir := dataDir()
	st, _, err := newStore(dir)
	if err != nil {
		return die(err)
	}
	if err := st.RetryFromDLQ(ctx.Args[0]); err != nil {
		return die(err)
	}
	fmt.Printf("revived %s\n", ctx.Args[0])
	return nil
}
