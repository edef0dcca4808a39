package examreader

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavelanni/randomizer/internal/model"
)

// Format names an input dialect.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatMarkup Format = "markup"
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatXLSX   Format = "xlsx"
	FormatJSON   Format = "json"
)

// ParseFormat validates a user supplied format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatMarkup, FormatCSV, FormatTSV, FormatXLSX, FormatJSON:
		return f, nil
	case "tex":
		return FormatMarkup, nil
	case "txt", "tab":
		return FormatTSV, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex":
		return FormatMarkup, nil
	case ".csv":
		return FormatCSV, nil
	case ".txt", ".tsv":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("cannot infer format from %q", path)
}

// ReadFile reads and parses path. An auto format is resolved from the
// extension.
func ReadFile(path string, format Format) (model.Document, error) {
	if format == "" || format == FormatAuto {
		f, err := FormatFromPath(path)
		if err != nil {
			return model.Document{}, err
		}
		format = f
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, ioError(err)
	}
	slog.Debug("read exam file", "path", path, "format", format, "bytes", len(data))
	return Parse(data, format)
}

// Detect guesses the format of raw data that arrived without a file name.
func Detect(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return FormatXLSX
	case bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSON
	case bytes.Contains(data, []byte(TagDocStart)) || bytes.Contains(data, []byte(TagQuestionStart)):
		return FormatMarkup
	case firstDelimiter(data) == '\t':
		return FormatTSV
	}
	return FormatCSV
}

// firstDelimiter returns the first comma or tab on the first non-blank line,
// or 0 when that line has neither.
func firstDelimiter(data []byte) byte {
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if i := bytes.IndexAny(line, ",\t"); i >= 0 {
			return line[i]
		}
		return 0
	}
	return 0
}

// Parse dispatches data to the reader for format. An auto format is resolved
// with Detect.
func Parse(data []byte, format Format) (model.Document, error) {
	if format == "" || format == FormatAuto {
		format = Detect(data)
	}
	switch format {
	case FormatMarkup:
		return FromMarkup(string(data))
	case FormatCSV:
		qs, err := FromCSV(string(data))
		return model.Document{Questions: qs}, err
	case FormatTSV:
		qs, err := FromTSV(string(data))
		return model.Document{Questions: qs}, err
	case FormatXLSX:
		qs, err := FromXLSX(bytes.NewReader(data))
		return model.Document{Questions: qs}, err
	case FormatJSON:
		return FromJSON(data)
	}
	return model.Document{}, fmt.Errorf("unsupported format %q", format)
}
