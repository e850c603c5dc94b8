package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"library-manager/library"
)

func newShellCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Sign in once and work interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.login(username)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			return a.runShell(user)
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username (prompted when empty)")
	return cmd
}

func (a *app) runShell(user *library.User) error {
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Username)
	fmt.Fprintln(a.out, "Available commands:")
	fmt.Fprintln(a.out, "  Books: list books, search book")
	fmt.Fprintln(a.out, "  Circulation: borrow, return")
	fmt.Fprintln(a.out, "  System: exit")

	for {
		cmd, err := a.readLine("\n> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch cmd {
		case "list books":
			a.shellListBooks()
		case "search book":
			a.shellSearch()
		case "borrow":
			a.shellBorrow(user)
		case "return":
			a.shellReturn(user)
		case "exit":
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		case "":
		default:
			fmt.Fprintln(a.out, "Unknown command. Type one of the available commands listed above.")
		}
	}
}

func (a *app) shellListBooks() {
	books, err := a.mgr.ListBooks()
	if err != nil {
		fmt.Fprintf(a.out, "Error retrieving books: %v\n", err)
		return
	}
	printBooks(a.out, books)
}

func (a *app) shellSearch() {
	author, err := a.readLine("Author: ")
	if err != nil {
		return
	}
	if author == "" {
		fmt.Fprintln(a.out, "Please enter an author name")
		return
	}
	books, err := a.mgr.SearchByAuthor(author)
	if err != nil {
		fmt.Fprintf(a.out, "Error searching books: %v\n", err)
		return
	}
	printBooks(a.out, books)
}

func (a *app) shellBookID() (int64, bool) {
	s, err := a.readLine("Book ID: ")
	if err != nil {
		return 0, false
	}
	id, err := parseID("book", s)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return 0, false
	}
	return id, true
}

func (a *app) shellBorrow(user *library.User) {
	id, ok := a.shellBookID()
	if !ok {
		return
	}
	if err := a.mgr.Borrow(user, id); err != nil {
		fmt.Fprintf(a.out, "Could not borrow book: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Book borrowed successfully")
}

func (a *app) shellReturn(user *library.User) {
	id, ok := a.shellBookID()
	if !ok {
		return
	}
	if err := a.mgr.Return(user.ID, id); err != nil {
		fmt.Fprintf(a.out, "Could not return book. Make sure you borrowed this book: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Book returned successfully")
}
