// Package loader reads item records from comma-delimited text.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/eugenenazirov/trip-planner/internal/planner"
)

// ErrMalformedRecord is returned when a line cannot be read as a name,weight pair.
var ErrMalformedRecord = errors.New("malformed item record")

// Load reads the item file at path.
func Load(path string) (planner.Items, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open item file: %w", err)
	}
	defer f.Close()

	items, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Parse reads one name,weight record per line. Blank lines are skipped,
// fields after the weight are ignored and a repeated name replaces the
// earlier weight.
func Parse(r io.Reader) (planner.Items, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	items := make(planner.Items)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, parseErr.Line, parseErr.Err)
			}
			return nil, fmt.Errorf("read item records: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected name,weight", ErrMalformedRecord, line)
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: empty item name", ErrMalformedRecord, line)
		}
		weight, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid weight %q", ErrMalformedRecord, line, record[1])
		}
		if weight < 0 {
			return nil, fmt.Errorf("%w: line %d: negative weight %d", ErrMalformedRecord, line, weight)
		}
		items[name] = weight
	}

	return items, nil
}
