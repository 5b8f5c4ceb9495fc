package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"oss.nandlabs.io/taskqueue/cli"
	"oss.nandlabs.io/taskqueue/internal/jobs"
	"oss.nandlabs.io/taskqueue/internal/store"
)

func newEnqueueCommand() *cli.Command {
	cmd := cli.NewCommand("enqueue", "enqueue a new job", version, runEnqueue)
	cmd.Flags = []*cli.Flag{
		{Name: "command", Aliases: []string{"c"}, Usage: "shell command to run"},
		{Name: "id", Aliases: []string{"i"}, Usage: "job id (generated if omitted)"},
		{Name: "max-retries", Aliases: []string{"r"}, Usage: "attempts before moving to the DLQ (default 3)"},
		{Name: "priority", Aliases: []string{"p"}, Usage: "1 (highest) .. 5 (lowest), default 5"},
		{Name: "timeout-ms", Aliases: []string{"t"}, Usage: "per-attempt wall-clock limit in ms, default 300000"},
		{Name: "interactive", Usage: "prompt on stdin for any field left unset (pass --interactive true)", Default: "false"},
	}
	return cmd
}

func newAddCommand() *cli.Command {
	cmd := cli.NewCommand("add", "shorthand for enqueue: add CMD [-r N] [-p N]", version, runAdd)
	cmd.Flags = []*cli.Flag{
		{Name: "max-retries", Aliases: []string{"r"}, Usage: "attempts before moving to the DLQ (default 3)"},
		{Name: "priority", Aliases: []string{"p"}, Usage: "1 (highest) .. 5 (lowest), default 5"},
	}
	return cmd
}

func runEnqueue(ctx *cli.Context) error {
	command, _ := ctx.GetFlag("command")
	id, _ := ctx.GetFlag("id")
	maxRetriesStr, _ := ctx.GetFlag("max-retries")
	priorityStr, _ := ctx.GetFlag("priority")
	timeoutStr, _ := ctx.GetFlag("timeout-ms")
	interactiveStr, _ := ctx.GetFlag("interactive")

	if isTruthy(interactiveStr) {
		command, id, maxRetriesStr, priorityStr, timeoutStr = promptForMissing(command, id, maxRetriesStr, priorityStr, timeoutStr)
	}

	return doEnqueue(command, id, maxRetriesStr, priorityStr, timeoutStr)
}

func runAdd(ctx *cli.Context) error {
	if len(ctx.Args) == 0 {
		return die(&jobs.ValidationError{Field: "command", Reason: "add requires a CMD argument"})
	}
	maxRetriesStr, _ := ctx.GetFlag("max-retries")
	priorityStr, _ := ctx.GetFlag("priority")
	return doEnqueue(ctx.Args[0], "", maxRetriesStr, priorityStr, "")
}

func doEnqueue(command, id, maxRetriesStr, priorityStr, timeoutStr string) error {
	if command == "" {
		return die(&jobs.ValidationError{Field: "command", Reason: "must not be empty"})
	}
	maxRetries, err := parseIntFlag("max-retries", maxRetriesStr)
	if err != nil {
		return die(err)
	}
	priority, err := parseIntFlag("priority", priorityStr)
	if err != nil {
		return die(err)
	}
	timeoutMs, err := parseIntFlag("timeout-ms", timeoutStr)
	if err != nil {
		return die(err)
	}

	dir := dataDir()
	st, _, err := newStore(dir)
	if err != nil {
		return die(err)
	}

	job, err := st.Enqueue(store.EnqueueRequest{
		ID:         id,
		Command:    command,
		Priority:   priority,
		MaxRetries: maxRetries,
		TimeoutMs:  timeoutMs,
	})
	if err != nil {
		return die(err)
	}
	printJob(job)
	return nil
}

// parseIntFlag parses s as an int, treating "" as "use the store's
// default" (represented as the zero value Store.Enqueue recognizes).
func parseIntFlag(field, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &jobs.ValidationError{Field: field, Reason: "must be an integer"}
	}
	return n, nil
}

func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// promptForMissing reads any still-empty field from stdin, for `enqueue
// --interactive=true`.
func promptForMissing(command, id, maxRetries, priority, timeoutMs string) (string, string, string, string, string) {
	reader := bufio.NewReader(os.Stdin)
	ask := func(label, current string) string {
		if current != "" {
			return current
		}
		fmt.Printf("%s: ", label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}
	command = ask("command", command)
	id = ask("id (blank to generate)", id)
	maxRetries = ask("max-retries (blank for default)", maxRetries)
	priority = ask("priority 1-5 (blank for default)", priority)
	timeoutMs = ask("timeout-ms (blank for default)", timeoutMs)
	return command, id, maxRetries, priority, timeoutMs
}
