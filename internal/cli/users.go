package cli

import (
	"github.com/spf13/cobra"

	"github.com/defm/console/internal/core/domain"
)

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage backend accounts",
	}
	cmd.AddCommand(
		newUsersListCommand(a),
		newUsersShowCommand(a),
		newUsersCreateCommand(a),
		newUsersUpdateCommand(a),
		newUsersDeleteCommand(a),
	)
	return cmd
}

func newUsersListCommand(a *app) *cobra.Command {
	var opts domain.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			users, err := a.client.Users.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(users)
		},
	}
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum records")
	return cmd
}

func newUsersShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			u, err := a.client.Users.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(u)
		},
	}
}

func newUsersCreateCommand(a *app) *cobra.Command {
	var (
		in            domain.UserCreate
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			password, err := a.readPassword(passwordStdin)
			if err != nil {
				return err
			}
			in.Password = password
			u, err := a.client.Users.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.print(u)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.Username, "username", "", "login name")
	fl.StringVar(&in.Email, "email", "", "email address")
	fl.StringVar(&in.FullName, "name", "", "full name")
	fl.StringVar(&in.Role, "role", domain.RoleInvestigator, "admin, manager or investigator")
	fl.BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUsersUpdateCommand(a *app) *cobra.Command {
	var (
		email, name, role string
		active            bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a user; role and activation need admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var upd domain.UserUpdate
			fl := cmd.Flags()
			if fl.Changed("email") {
				upd.Email = &email
			}
			if fl.Changed("name") {
				upd.FullName = &name
			}
			if fl.Changed("role") {
				upd.Role = &role
			}
			if fl.Changed("active") {
				upd.IsActive = &active
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			u, err := a.client.Users.Update(cmd.Context(), id, upd)
			if err != nil {
				return err
			}
			return a.print(u)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&email, "email", "", "email address")
	fl.StringVar(&name, "name", "", "full name")
	fl.StringVar(&role, "role", "", "admin, manager or investigator")
	fl.BoolVar(&active, "active", true, "whether the account may log in")
	return cmd
}

func newUsersDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			msg, err := a.client.Users.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(msg)
		},
	}
}
