package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/defm/console/internal/core/domain"
)

func newAuditCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the audit trail",
	}
	cmd.AddCommand(
		newAuditListCommand(a),
		newAuditRecentCommand(a),
		newAuditUserCommand(a),
		newAuditEntityCommand(a),
	)
	return cmd
}

func newAuditListCommand(a *app) *cobra.Command {
	var (
		f            domain.AuditFilter
		since, until string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search audit entries (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if f.StartDate, err = parseOptionalTime(since); err != nil {
				return err
			}
			if f.EndDate, err = parseOptionalTime(until); err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			logs, err := a.client.AuditLogs.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.print(logs)
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&f.UserID, "user", 0, "filter by user id")
	fl.StringVar(&f.Action, "action", "", "filter by action (substring)")
	fl.StringVar(&f.EntityType, "entity-type", "", "filter by entity type")
	fl.StringVar(&since, "since", "", "earliest timestamp (RFC3339)")
	fl.StringVar(&until, "until", "", "latest timestamp (RFC3339)")
	fl.IntVar(&f.Skip, "skip", 0, "records to skip")
	fl.IntVar(&f.Limit, "limit", 0, "maximum records")
	return cmd
}

func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func newAuditRecentCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the newest audit entries (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			logs, err := a.client.AuditLogs.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.print(logs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultRecentLimit, "number of entries")
	return cmd
}

func newAuditUserCommand(a *app) *cobra.Command {
	var opts domain.ListOptions
	cmd := &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show the audit trail of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			logs, err := a.client.AuditLogs.ForUser(cmd.Context(), id, opts)
			if err != nil {
				return err
			}
			return a.print(logs)
		},
	}
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum records")
	return cmd
}

func newAuditEntityCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entity <type> <id>",
		Short: "Show the audit trail of a case, evidence item or other entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			logs, err := a.client.AuditLogs.ForEntity(cmd.Context(), args[0], id)
			if err != nil {
				return err
			}
			return a.print(logs)
		},
	}
}
