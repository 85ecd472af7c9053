package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phoenix-shipper/booking-docs/internal/pdf"
)

func newPagesCmd() *cobra.Command {
	var jobPath string
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Print the page plan of a job without rendering it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := loadJob(jobPath)
			if err != nil {
				return err
			}
			job = job.Normalize()
			if err := job.Validate(); err != nil {
				return err
			}
			plan := pdf.BuildPlan(job)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PAGE\tKIND\tSTOP\tUNIT")
			for _, page := range plan.Pages {
				stop, unit := "-", "-"
				if page.Kind != pdf.PageSummary {
					stop = fmt.Sprintf("%d", page.Location+1)
				}
				if page.Unit != nil {
					unit = page.Unit.Describe()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", page.Number, page.Kind, stop, unit)
			}
			fmt.Fprintf(w, "total\t%d\t\t\n", plan.Total)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "path to the job JSON")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
