package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mespms/clinicalforms/pkg/format"
	"github.com/mespms/clinicalforms/pkg/session"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the signed-in user",
	}
	cmd.AddCommand(newLoginCmd(a), newWhoamiCmd(a), newLogoutCmd(a))
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		user   session.User
		role   string
		clinic int64
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the user notes and templates are acted on as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user.Role = session.Role(strings.ToUpper(strings.TrimSpace(role)))
			if !user.Role.Valid() {
				return fmt.Errorf("unknown role %q (ADMIN, PRACTITIONER, STAFF)", role)
			}
			if user.ID <= 0 {
				return fmt.Errorf("--id is required")
			}
			if user.Email != "" && !format.ValidEmail(user.Email) {
				return fmt.Errorf("invalid email %q", user.Email)
			}
			if clinic > 0 {
				user.Clinic = &clinic
			}
			if err := a.session.Begin(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "signed in as %s (%s)\n", user.DisplayName(), user.Role)
			return nil
		},
	}
	cmd.Flags().Int64Var(&user.ID, "id", 0, "user id")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address")
	cmd.Flags().StringVar(&user.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&user.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&role, "role", string(session.RolePractitioner), "ADMIN, PRACTITIONER or STAFF")
	cmd.Flags().Int64Var(&clinic, "clinic", 0, "clinic id")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.session.User()
			if err != nil {
				return err
			}
			return printJSON(a.out, user)
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.session.Clear(cmd.Context())
		},
	}
}
