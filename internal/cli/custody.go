package cli

import (
	"github.com/spf13/cobra"

	"github.com/defm/console/internal/core/domain"
)

func newCustodyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custody",
		Short: "Inspect and extend the chain of custody",
	}
	cmd.AddCommand(
		newCustodyListCommand(a),
		newCustodyShowCommand(a),
		newCustodyChainCommand(a),
		newCustodyTransferCommand(a),
		newCustodyDeleteCommand(a),
	)
	return cmd
}

func newCustodyListCommand(a *app) *cobra.Command {
	var f domain.CustodyFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List custody records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			recs, err := a.client.Custody.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.print(recs)
		},
	}
	cmd.Flags().Int64Var(&f.EvidenceID, "evidence", 0, "filter by evidence id")
	cmd.Flags().IntVar(&f.Skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "maximum records")
	return cmd
}

func newCustodyShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one custody record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			rec, err := a.client.Custody.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(rec)
		},
	}
}

func newCustodyChainCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chain <evidence-id>",
		Short: "Show the full chain of custody of an evidence item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			recs, err := a.client.Custody.ForEvidence(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(recs)
		},
	}
}

func newCustodyTransferCommand(a *app) *cobra.Command {
	var in domain.TransferInput
	cmd := &cobra.Command{
		Use:   "transfer <evidence-id>",
		Short: "Hand an evidence item over to another user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			in.EvidenceID = id
			rec, err := a.client.Custody.Transfer(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.print(rec)
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&in.TransferredTo, "to", 0, "receiving user id")
	fl.StringVar(&in.Location, "location", "", "where the hand-over happens")
	fl.StringVar(&in.Purpose, "purpose", "", "reason for the transfer")
	fl.StringVar(&in.Notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("purpose")
	return cmd
}

func newCustodyDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custody record (admin or manager)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			msg, err := a.client.Custody.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(msg)
		},
	}
}
