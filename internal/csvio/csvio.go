// Package csvio writes and reads the collection CSV format.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"prodscan/internal/catalog"
)

// Header is the exact first row of every export.
var Header = []string{"Artist", "Album Title", "Label", "Year", "Credits", "Artwork URL", "Discogs URL"}

var (
	ErrHeaderMismatch = errors.New("csv header does not match the export format")
	ErrNoRows         = errors.New("csv contains no data rows")
)

// RowError describes a data row skipped during import.
type RowError struct {
	Line   int
	Fields int
	Want   int
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: expected %d fields, found %d", e.Line, e.Want, e.Fields)
}

// ImportResult holds parsed items and the rows that were skipped.
type ImportResult struct {
	Items   []catalog.Item
	Skipped []RowError
}

var sourcePattern = regexp.MustCompile(`/(master|release)/(\d+)`)

// Write emits the header and one row per item.
func Write(w io.Writer, items []catalog.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		if err := cw.Write(Row(it)); err != nil {
			return fmt.Errorf("write item %d: %w", it.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders an item in Header order.
func Row(it catalog.Item) []string {
	return []string{it.Artist, it.Title, it.Label, it.Year, it.Credits, it.ArtworkURL, it.SourceURL}
}

// Read parses an export. Blank lines are ignored; rows with the wrong number
// of fields are skipped and reported in ImportResult.Skipped.
func Read(r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ImportResult{}, ErrNoRows
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !slices.Equal(header, Header) {
		return ImportResult{}, fmt.Errorf("%w: got %q", ErrHeaderMismatch, strings.Join(header, ","))
	}

	var result ImportResult
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("read row: %w", err)
		}
		if len(record) != len(Header) {
			line, _ := cr.FieldPos(0)
			result.Skipped = append(result.Skipped, RowError{Line: line, Fields: len(record), Want: len(Header)})
			continue
		}
		result.Items = append(result.Items, itemFromRow(record))
	}
	if len(result.Items) == 0 {
		return result, ErrNoRows
	}
	return result, nil
}

func itemFromRow(record []string) catalog.Item {
	it := catalog.Item{
		Kind:       catalog.KindRelease,
		Artist:     record[0],
		Title:      record[1],
		Label:      record[2],
		Year:       record[3],
		Credits:    record[4],
		ArtworkURL: record[5],
		SourceURL:  record[6],
	}
	if m := sourcePattern.FindStringSubmatch(it.SourceURL); m != nil {
		if id, err := strconv.ParseInt(m[2], 10, 64); err == nil {
			it.ID = id
			it.Kind = catalog.ParseKind(m[1])
			it.IsMaster = it.Kind == catalog.KindMaster
		}
	}
	return it
}
