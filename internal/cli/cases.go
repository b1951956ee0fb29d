package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/infrastructure/queue"
)

func newCasesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cases",
		Aliases: []string{"case"},
		Short:   "Manage investigation cases",
	}
	cmd.AddCommand(
		newCasesListCommand(a),
		newCasesShowCommand(a),
		newCasesCreateCommand(a),
		newCasesUpdateCommand(a),
		newCasesDeleteCommand(a),
	)
	return cmd
}

func newCasesListCommand(a *app) *cobra.Command {
	var f domain.CaseFilter
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			f.Status = domain.CaseStatus(status)
			cases, err := a.client.Cases.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.print(cases)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().BoolVar(&f.AssignedToMe, "mine", false, "only cases assigned to me")
	cmd.Flags().IntVar(&f.Skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "maximum records")
	return cmd
}

// caseDetail is what `cases show` prints. Sections that failed to load carry
// their error instead of data.
type caseDetail struct {
	Case     *domain.Case      `json:"case,omitempty"           yaml:"case,omitempty"`
	Evidence []domain.Evidence `json:"evidence,omitempty"       yaml:"evidence,omitempty"`
	Reports  []domain.Report   `json:"reports,omitempty"        yaml:"reports,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"         yaml:"errors,omitempty"`
}

func newCasesShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a case with its evidence and reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(ctx); err != nil {
				return err
			}

			results := a.dispatch(ctx,
				queue.Task{Key: "case", Run: func(ctx context.Context) (any, error) {
					return a.client.Cases.Get(ctx, id)
				}},
				queue.Task{Key: "evidence", Run: func(ctx context.Context) (any, error) {
					return a.client.Evidence.List(ctx, domain.EvidenceFilter{CaseID: id})
				}},
				queue.Task{Key: "reports", Run: func(ctx context.Context) (any, error) {
					return a.client.Reports.List(ctx, domain.ListOptions{}, id)
				}},
			)

			var out caseDetail
			var caseErr error
			for _, r := range results {
				if r.Err != nil {
					if out.Errors == nil {
						out.Errors = make(map[string]string)
					}
					out.Errors[r.Key] = describe(r.Err)
				}
			}
			out.Case, caseErr = queue.Value[*domain.Case](results[0])
			out.Evidence, _ = queue.Value[[]domain.Evidence](results[1])
			out.Reports, _ = queue.Value[[]domain.Report](results[2])
			if caseErr != nil && results[1].Err != nil && results[2].Err != nil {
				return caseErr
			}
			return a.print(out)
		},
	}
}

type caseFlags struct {
	in           domain.CaseInput
	status       string
	priority     string
	assignedTo   int64
	incidentDate string
}

func (f *caseFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.in.Title, "title", "", "case title")
	fl.StringVar(&f.in.Description, "description", "", "description")
	fl.StringVar(&f.status, "status", "", "open, in_progress, closed or archived")
	fl.StringVar(&f.priority, "priority", "", "low, medium, high or critical")
	fl.Int64Var(&f.assignedTo, "assign", 0, "assignee user id")
	fl.StringVar(&f.incidentDate, "incident-date", "", "incident date (YYYY-MM-DD)")
	fl.StringVar(&f.in.Location, "location", "", "incident location")
	fl.StringVar(&f.in.ClientName, "client", "", "client name")
	fl.StringVar(&f.in.ClientContact, "client-contact", "", "client contact")
}

func (f *caseFlags) input() (domain.CaseInput, error) {
	in := f.in
	in.Status = domain.CaseStatus(f.status)
	in.Priority = domain.Priority(f.priority)
	if f.assignedTo > 0 {
		id := f.assignedTo
		in.AssignedTo = &id
	}
	if f.incidentDate != "" {
		t, err := time.Parse("2006-01-02", f.incidentDate)
		if err != nil {
			return in, err
		}
		in.IncidentDate = &t
	}
	return in, nil
}

func newCasesCreateCommand(a *app) *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			c, err := a.client.Cases.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.print(c)
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newCasesUpdateCommand(a *app) *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := f.input()
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			c, err := a.client.Cases.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.print(c)
		},
	}
	f.bind(cmd)
	return cmd
}

func newCasesDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a case (admin or manager)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			msg, err := a.client.Cases.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(msg)
		},
	}
}
