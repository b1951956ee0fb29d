package cli

import (
	"github.com/spf13/cobra"

	"github.com/defm/console/internal/core/domain"
)

func newReportsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Generate and fetch case reports",
	}
	cmd.AddCommand(
		newReportsListCommand(a),
		newReportsShowCommand(a),
		newReportsGenerateCommand(a),
		newReportsDownloadCommand(a),
		newReportsDeleteCommand(a),
	)
	return cmd
}

func newReportsListCommand(a *app) *cobra.Command {
	var (
		opts   domain.ListOptions
		caseID int64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			reports, err := a.client.Reports.List(cmd.Context(), opts, caseID)
			if err != nil {
				return err
			}
			return a.print(reports)
		},
	}
	cmd.Flags().Int64Var(&caseID, "case", 0, "filter by case id")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum records")
	return cmd
}

func newReportsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			r, err := a.client.Reports.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(r)
		},
	}
}

func newReportsGenerateCommand(a *app) *cobra.Command {
	opts := domain.DefaultGenerateOptions()
	cmd := &cobra.Command{
		Use:   "generate <case-id>",
		Short: "Render a report for a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			out, err := a.client.Reports.Generate(cmd.Context(), id, opts)
			if err != nil {
				return err
			}
			return a.print(out)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&opts.ReportType, "type", opts.ReportType, "report type")
	fl.StringVar(&opts.Format, "format", opts.Format, "output format requested from the backend")
	fl.BoolVar(&opts.IncludeEvidence, "evidence", opts.IncludeEvidence, "include evidence items")
	fl.BoolVar(&opts.IncludeCustody, "custody", opts.IncludeCustody, "include chain of custody")
	return cmd
}

func newReportsDownloadCommand(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a generated report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			dl, err := a.client.Reports.Download(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.saveDownload(dl, target)
		},
	}
	cmd.Flags().StringVarP(&target, "file", "f", "", "destination path")
	return cmd
}

func newReportsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report (admin or manager)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			msg, err := a.client.Reports.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(msg)
		},
	}
}
