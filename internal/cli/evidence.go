package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/infrastructure/queue"
)

func newEvidenceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Manage evidence items and their files",
	}
	cmd.AddCommand(
		newEvidenceListCommand(a),
		newEvidenceShowCommand(a),
		newEvidenceCreateCommand(a),
		newEvidenceDeleteCommand(a),
		newEvidenceUploadCommand(a),
		newEvidenceDownloadCommand(a),
		newEvidenceVerifyCommand(a),
	)
	return cmd
}

func newEvidenceListCommand(a *app) *cobra.Command {
	var (
		f            domain.EvidenceFilter
		kind, status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List evidence items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			f.EvidenceType = domain.EvidenceType(kind)
			f.Status = domain.EvidenceStatus(status)
			items, err := a.client.Evidence.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.print(items)
		},
	}
	cmd.Flags().Int64Var(&f.CaseID, "case", 0, "filter by case id")
	cmd.Flags().StringVar(&kind, "type", "", "filter by evidence type")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&f.Skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "maximum records")
	return cmd
}

func newEvidenceShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one evidence item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			e, err := a.client.Evidence.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(e)
		},
	}
}

func newEvidenceCreateCommand(a *app) *cobra.Command {
	var (
		in   domain.EvidenceInput
		kind string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an evidence item for a case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			in.EvidenceType = domain.EvidenceType(kind)
			e, err := a.client.Evidence.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.print(e)
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&in.CaseID, "case", 0, "case id")
	fl.StringVar(&in.Title, "title", "", "title")
	fl.StringVar(&in.Description, "description", "", "description")
	fl.StringVar(&kind, "type", string(domain.EvidenceDigital), "evidence type")
	fl.StringVar(&in.CollectionLocation, "location", "", "collection location")
	fl.StringVar(&in.CollectionMethod, "method", "", "collection method")
	_ = cmd.MarkFlagRequired("case")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newEvidenceDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an evidence item (admin or manager)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			msg, err := a.client.Evidence.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(msg)
		},
	}
}

func newEvidenceUploadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <id> <file>",
		Short: "Attach a file to an evidence item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			up, err := a.client.Evidence.Upload(cmd.Context(), id, filepath.Base(args[1]), f)
			if err != nil {
				return err
			}
			return a.print(up)
		},
	}
}

func newEvidenceDownloadCommand(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the file attached to an evidence item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			dl, err := a.client.Evidence.Download(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.saveDownload(dl, target)
		},
	}
	cmd.Flags().StringVarP(&target, "file", "f", "", "destination path")
	return cmd
}

// verifyOutcome is one line of a bulk integrity check.
type verifyOutcome struct {
	EvidenceID int64                   `json:"evidence_id"      yaml:"evidence_id"`
	Report     *domain.IntegrityReport `json:"report,omitempty" yaml:"report,omitempty"`
	Error      string                  `json:"error,omitempty"  yaml:"error,omitempty"`
}

func newEvidenceVerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>...",
		Short: "Recompute file hashes and compare them with the recorded ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}

			tasks := make([]queue.Task, len(ids))
			for i, id := range ids {
				id := id
				tasks[i] = queue.Task{Key: strconv.FormatInt(id, 10), Run: func(ctx context.Context) (any, error) {
					return a.client.Evidence.VerifyIntegrity(ctx, id)
				}}
			}
			results := a.dispatch(cmd.Context(), tasks...)

			out := make([]verifyOutcome, len(ids))
			failed := 0
			for i, r := range results {
				out[i].EvidenceID = ids[i]
				rep, err := queue.Value[*domain.IntegrityReport](r)
				if err != nil {
					out[i].Error = describe(err)
					failed++
					continue
				}
				out[i].Report = rep
				if !rep.IntegrityVerified {
					failed++
				}
			}
			if err := a.print(out); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d items failed verification", failed, len(ids))
			}
			return nil
		},
	}
}
