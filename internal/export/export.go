// Package export writes extracted phrase records to JSON or TSV files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"txjs-cli/internal/phrase"
)

// Formats accepted by Encode.
const (
	FormatJSON = "json"
	FormatTSV  = "tsv"
)

// EncodeJSON writes records as an indented JSON array without HTML escaping.
func EncodeJSON(w io.Writer, records []phrase.Record) error {
	if records == nil {
		records = []phrase.Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

var tsvHeader = []string{"key", "string", "context", "developer_comment", "character_limit", "tags", "occurrences"}

// EncodeTSV writes one line per record. List columns are comma-joined and
// tabs or newlines inside values are escaped.
func EncodeTSV(w io.Writer, records []phrase.Record) error {
	if _, err := fmt.Fprintln(w, strings.Join(tsvHeader, "\t")); err != nil {
		return fmt.Errorf("write TSV header: %w", err)
	}
	for _, r := range records {
		limit := ""
		if r.CharLimit > 0 {
			limit = strconv.Itoa(r.CharLimit)
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			escapeTSV(r.Key),
			escapeTSV(r.String),
			escapeTSV(r.Context),
			escapeTSV(r.Comment),
			limit,
			escapeTSV(strings.Join(r.Tags, ",")),
			escapeTSV(strings.Join(r.Occurrences, ",")),
		)
		if err != nil {
			return fmt.Errorf("write TSV row: %w", err)
		}
	}
	return nil
}

// Encode writes records to w in format.
func Encode(w io.Writer, format string, records []phrase.Record) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return EncodeJSON(w, records)
	case FormatTSV:
		return EncodeTSV(w, records)
	default:
		return fmt.Errorf("unknown export format %q (want json or tsv)", format)
	}
}

// Write encodes records in format to a new file at outputPath.
func Write(format, outputPath string, records []phrase.Record) error {
	switch strings.ToLower(format) {
	case FormatJSON, FormatTSV, "":
	default:
		return fmt.Errorf("unknown export format %q (want json or tsv)", format)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	if err := Encode(f, format, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", outputPath, err)
	}

	log.Info().Str("path", outputPath).Str("format", format).Int("records", len(records)).Msg("exported phrases")
	return nil
}

// escapeTSV replaces tabs and newlines so a value stays in one cell.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
