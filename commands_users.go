package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"library-manager/library"
)

func newSignUpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.readLine("Username: ")
			if err != nil {
				return err
			}
			password, err := a.readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			email, err := a.readLine("Email: ")
			if err != nil {
				return err
			}
			if !library.ValidatePassword(password) {
				fmt.Fprintln(a.out, "Tip: passwords of 8+ characters with an upper-case letter are stronger.")
			}
			u, err := a.mgr.SignUp(username, password, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account created for '%s' with ID %d\n", u.Username, u.ID)
			return nil
		},
	}
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage registered users (admin)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List registered users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				users, err := a.mgr.ListUsers()
				if err != nil {
					return err
				}
				if len(users) == 0 {
					fmt.Fprintln(a.out, "No registered users.")
					return nil
				}
				fmt.Fprintf(a.out, "%-5s %-25s %s\n", "ID", "Username", "Email")
				fmt.Fprintln(a.out, strings.Repeat("-", 60))
				for _, u := range users {
					fmt.Fprintf(a.out, "%-5d %-25s %s\n", u.ID, u.Username, u.Email)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <user-id>",
			Short: "Delete a user, returning any books they hold",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("user", args[0])
				if err != nil {
					return err
				}
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.mgr.DeleteUser(id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "User %d deleted\n", id)
				return nil
			},
		},
	)
	return cmd
}
