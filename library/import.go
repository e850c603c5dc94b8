package library

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ImportRow is one catalog entry read from a csv file.
type ImportRow struct {
	Line           int
	Title          string
	Author         string
	Category       string
	GenreOrSubject string
}

// ReadCatalogCSV reads rows laid out like a csv export. Only the header
// names matter; Title and Author columns are required, Type and
// Genre/Subject are optional and other columns are ignored.
func ReadCatalogCSV(r io.Reader) ([]ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	titleCol, okTitle := cols["title"]
	authorCol, okAuthor := cols["author"]
	if !okTitle || !okAuthor {
		return nil, fmt.Errorf("%w: csv header needs Title and Author", ErrInvalidInput)
	}
	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var rows []ImportRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := ImportRow{Line: line, Category: field(rec, "type"), GenreOrSubject: field(rec, "genre/subject")}
		if titleCol < len(rec) {
			row.Title = strings.TrimSpace(rec[titleCol])
		}
		if authorCol < len(rec) {
			row.Author = strings.TrimSpace(rec[authorCol])
		}
		rows = append(rows, row)
	}
	return rows, nil
}
