// Package snapshot exports and imports the catalog as JSON Lines, one
// dataset per line, optionally compressed.
package snapshot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/mwantia/tomodb/pkg/catalog"
	"github.com/mwantia/tomodb/pkg/dataset"
	"github.com/mwantia/tomodb/pkg/db/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxLineSize = 10 * 1024 * 1024

// Source lists the datasets to export.
type Source interface {
	All(ctx context.Context) ([]dataset.Record, error)
}

// Sink stores an imported dataset under its existing identifier.
type Sink interface {
	Insert(ctx context.Context, record dataset.Record) error
}

// Skipped describes a line that was not imported.
type Skipped struct {
	Line   int    `json:"line"   yaml:"line"`
	ID     string `json:"id"     yaml:"id"`
	Reason string `json:"reason" yaml:"reason"`
}

type ImportResult struct {
	Imported int       `json:"imported" yaml:"imported"`
	Skipped  []Skipped `json:"skipped"  yaml:"skipped"`
}

// Write encodes records as JSON Lines through c.
func Write(w io.Writer, c Compressor, records []dataset.Record) error {
	cw, err := c.Compress(w)
	if err != nil {
		return fmt.Errorf("failed to open %s writer: %w", c.Name(), err)
	}

	enc := json.NewEncoder(cw)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			cw.Close()
			return fmt.Errorf("failed to encode dataset %s: %w", record.ID, err)
		}
	}
	return cw.Close()
}

// Export writes every dataset from src and returns how many were written.
func Export(ctx context.Context, src Source, w io.Writer, c Compressor) (int, error) {
	records, err := src.All(ctx)
	if err != nil {
		return 0, err
	}
	if err := Write(w, c, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Import reads JSON Lines from r and inserts each dataset into dst. Lines with
// an invalid or already used identifier are skipped and reported; decoding
// and storage failures abort the import.
func Import(ctx context.Context, dst Sink, r io.Reader, c Compressor) (ImportResult, error) {
	var result ImportResult

	cr, err := c.Decompress(r)
	if err != nil {
		return result, fmt.Errorf("failed to open %s reader: %w", c.Name(), err)
	}
	defer cr.Close()

	scanner := bufio.NewScanner(cr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var record dataset.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			return result, fmt.Errorf("failed to decode line %d: %w", line, err)
		}

		err := dst.Insert(ctx, record)
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, catalog.ErrInvalidID):
			result.Skipped = append(result.Skipped, Skipped{Line: line, ID: record.ID, Reason: "invalid identifier"})
		case errors.Is(err, store.ErrDuplicateID):
			result.Skipped = append(result.Skipped, Skipped{Line: line, ID: record.ID, Reason: "identifier already exists"})
		default:
			return result, fmt.Errorf("failed to import line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return result, nil
}
