package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"library-manager/library"
)

func newBooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage the catalog",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every book",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				books, err := a.mgr.ListBooks()
				if err != nil {
					return err
				}
				printBooks(a.out, books)
				return nil
			},
		},
		&cobra.Command{
			Use:   "search <author>",
			Short: "Find books whose author contains the given text",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				books, err := a.mgr.SearchByAuthor(strings.Join(args, " "))
				if err != nil {
					return err
				}
				printBooks(a.out, books)
				return nil
			},
		},
		newAddBookCmd(a),
		&cobra.Command{
			Use:   "delete <book-id>",
			Short: "Delete a book (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("book", args[0])
				if err != nil {
					return err
				}
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.mgr.DeleteBook(id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Book %d deleted\n", id)
				return nil
			},
		},
		newExportCmd(a),
	)
	return cmd
}

func newAddBookCmd(a *app) *cobra.Command {
	var title, author, category, detail string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if exists, err := a.mgr.BookExists(title, author); err == nil && exists {
				fmt.Fprintf(a.out, "Note: '%s' by %s is already in the catalog, adding another copy.\n", title, author)
			}
			id, err := a.mgr.AddBook(title, author, category, detail)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added book ID %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().StringVar(&category, "category", string(library.CategoryFiction), "fiction, non-fiction or general")
	cmd.Flags().StringVar(&detail, "detail", "", "genre for fiction, subject otherwise")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var format, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog to txt, csv or json (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := library.ParseExportFormat(format)
			if err != nil {
				return err
			}
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if dir == "" {
				dir = a.cfg.ExportDir
			}
			path, err := a.mgr.ExportToFile(dir, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Books exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(library.FormatCSV), "txt, csv or json")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default EXPORT_DIR)")
	return cmd
}

func printBooks(w io.Writer, books []*library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	fmt.Fprintf(w, "%-5s %-30s %-25s %-10s %-20s %s\n", "ID", "Title", "Author", "Status", "Borrower", "Details")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, b := range books {
		fmt.Fprintln(w, library.PrettyBook(b))
	}
}
