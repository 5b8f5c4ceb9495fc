package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"oss.nandlabs.io/taskqueue/internal/jobs"
)

func printJob(j *jobs.Job) {
	fmt.Printf("id:            %s\n", j.ID)
	fmt.Printf("command:       %s\n", j.Command)
	fmt.Printf("state:         %s\n", j.State)
	fmt.Printf("priority:      %d\n", j.Priority)
	fmt.Printf("attempts:      %d/%d\n", j.Attempts, j.MaxRetries)
	fmt.Printf("timeout_ms:    %d\n", j.TimeoutMs)
	fmt.Printf("created_at:    %s\n", j.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Printf("updated_at:    %s\n", j.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
	if j.NextRetryAt != nil {
		fmt.Printf("next_retry_at: %s\n", j.NextRetryAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	if j.Error != nil {
		fmt.Printf("error:         %s\n", *j.Error)
	}
	if j.LockedBy != nil {
		fmt.Printf("locked_by:     %s\n", *j.LockedBy)
	}
}

func printJobTable(list []*jobs.Job) {
	if len(list) == 0 {
		fmt.Println("no jobs")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tPRIORITY\tATTEMPTS\tCOMMAND")
	for _, j := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%s\n", j.ID, j.State, j.Priority, j.Attempts, j.MaxRetries, j.Command)
	}
	w.Flush()
}
