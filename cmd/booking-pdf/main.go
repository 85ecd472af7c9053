package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phoenix-shipper/booking-docs/internal/model"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

// run executes the CLI and returns the process exit code. Cobra is told to
// stay quiet so the error is printed exactly once here.
func run(stdout, stderr io.Writer, args []string) int {
	root := newRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "booking-pdf",
		Short:         "Render Phoenix Shipper booking documents offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd(), newPagesCmd())
	return root
}

func loadJob(path string) (model.Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("read job: %w", err)
	}
	var job model.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return model.Job{}, fmt.Errorf("decode job %s: %w", path, err)
	}
	return job, nil
}
