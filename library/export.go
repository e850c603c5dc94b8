package library

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ExportFormat selects the catalog export layout.
type ExportFormat string

const (
	FormatText ExportFormat = "txt"
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ParseExportFormat accepts txt, csv and json, case-insensitively.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// CSVHeader is the first row of a csv export.
var CSVHeader = []string{"ID", "Title", "Author", "Status", "Type", "Genre/Subject", "Borrower"}

const textRule = "--------------------------------------------------"

// Export writes the whole catalog to w.
func (lm *LibraryManager) Export(w io.Writer, format ExportFormat) error {
	books, err := lm.ListBooks()
	if err != nil {
		return err
	}
	switch format {
	case FormatText:
		err = writeText(w, books)
	case FormatCSV:
		err = writeCSV(w, books)
	case FormatJSON:
		err = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(books)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}

// ExportFileName is books_export.txt for text and a timestamped
// library_books_YYYYMMDD_HHMMSS name otherwise.
func (lm *LibraryManager) ExportFileName(format ExportFormat) string {
	if format == FormatText {
		return "books_export.txt"
	}
	return fmt.Sprintf("library_books_%s.%s", lm.now().Format("20060102_150405"), format)
}

// ExportToFile writes the catalog into dir and returns the file path.
func (lm *LibraryManager) ExportToFile(dir string, format ExportFormat) (string, error) {
	if _, err := ParseExportFormat(string(format)); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, lm.ExportFileName(format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := lm.Export(f, format); err != nil {
		f.Close()
		lm.log.Error("export failed", "path", path, "error", err)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	lm.log.Info("catalog exported", "path", path, "format", string(format))
	return path, nil
}

func writeText(w io.Writer, books []*Book) error {
	bw := bufio.NewWriter(w)
	for _, b := range books {
		fmt.Fprintf(bw, "ID: %d\n", b.ID)
		fmt.Fprintf(bw, "Title: %s\n", b.Title)
		fmt.Fprintf(bw, "Author: %s\n", b.Author)
		fmt.Fprintf(bw, "Status: %s\n", b.Status)
		fmt.Fprintf(bw, "Type: %s\n", b.Category)
		fmt.Fprintf(bw, "Genre/Subject: %s\n", b.GenreOrSubject)
		fmt.Fprintf(bw, "Borrower: %s\n", b.Borrower)
		fmt.Fprintln(bw, textRule)
	}
	return bw.Flush()
}

func writeCSV(w io.Writer, books []*Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range books {
		record := []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author,
			string(b.Status),
			string(b.Category),
			b.GenreOrSubject,
			b.Borrower,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
