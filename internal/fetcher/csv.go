// Package fetcher reads the raw tabular sources: delimited text files and
// XLSX workbooks. It knows nothing about the record schema; it returns rows
// of strings for the loader to interpret.
package fetcher

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// CSVOptions configures the delimited text reader.
type CSVOptions struct {
	Delimiter rune   // default ','
	Charset   string // IANA charset name; default utf-8
	Comment   rune   // comment character (0 = none)
	TrimSpace bool
}

// ReadCSV reads a delimited text file and returns all rows as string
// slices, including the header row. Rows may have varying field counts;
// the caller validates against its resolved header.
func ReadCSV(path string, opts CSVOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r, err := decodeCharset(f, opts.Charset)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}
		rows = append(rows, record)
	}

	return rows, nil
}

// decodeCharset wraps r with a decoder for the named charset. UTF-8 and an
// empty name pass through unchanged.
func decodeCharset(r io.Reader, charset string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: unknown charset %q", charset)
	}
	return enc.NewDecoder().Reader(r), nil
}
