package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBorrowCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Borrow an available book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			user, err := a.login(username)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			if err := a.mgr.Borrow(user, bookID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Book %d borrowed by %s\n", bookID, user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username (prompted when empty)")
	return cmd
}

func newReturnCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "return <book-id>",
		Short: "Return a book you borrowed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			user, err := a.login(username)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			if err := a.mgr.Return(user.ID, bookID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Book %d returned by %s\n", bookID, user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username (prompted when empty)")
	return cmd
}
