package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phoenix-shipper/booking-docs/internal/codes"
	"github.com/phoenix-shipper/booking-docs/internal/config"
	"github.com/phoenix-shipper/booking-docs/internal/excel"
	"github.com/phoenix-shipper/booking-docs/internal/logger"
	"github.com/phoenix-shipper/booking-docs/internal/pdf"
	"github.com/phoenix-shipper/booking-docs/internal/service"
)

var errRenderFailed = errors.New("render failed")

type renderOptions struct {
	jobPath string
	jobID   string
	otp     string
	outDir  string
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write Phoenix_Shipper_Complete_<id>.pdf for a job file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.jobPath, "job", "", "path to the job JSON")
	cmd.Flags().StringVar(&opts.jobID, "id", "", "job id printed on every page")
	cmd.Flags().StringVar(&opts.otp, "otp", "", "delivery verification code")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory (defaults to PDF_OUTPUT_DIR)")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func runRender(cmd *cobra.Command, opts renderOptions) error {
	cfg := config.LoadDocuments()
	log := logger.New(cfg.Environment).Output(cmd.ErrOrStderr())
	alerter := service.AlerterFunc(func(message string) {
		fmt.Fprintln(cmd.ErrOrStderr(), message)
	})

	job, err := loadJob(opts.jobPath)
	if err != nil {
		log.Error().Err(err).Str("job_id", opts.jobID).Msg("failed to load job")
		alerter.Alert(service.PDFFailureMessage)
		return fmt.Errorf("%w: %w", errRenderFailed, err)
	}

	generator, err := pdf.NewGenerator(
		codes.NewGenerator(log, codes.WithQRSize(cfg.Documents.QRSize)),
		pdf.Options{
			CompanyName:     cfg.Documents.CompanyName,
			TrackingBaseURL: cfg.Documents.TrackingBaseURL,
			Logger:          log,
		},
	)
	if err != nil {
		return err
	}

	svc := service.NewDocumentService(generator, excel.NewGenerator(), nil, nil, alerter, log)

	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.Documents.OutputDir
	}
	input := service.GenerateInput{JobID: opts.jobID, OTP: opts.otp, Job: job}
	if !svc.DownloadBookingPDF(cmd.Context(), input, outDir) {
		return errRenderFailed
	}
	fmt.Fprintln(cmd.OutOrStdout(), pdf.FileName(opts.jobID))
	return nil
}
