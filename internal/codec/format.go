package codec

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"tracker/internal/core"
)

type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, CSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", core.ErrValidation, s)
}

// ContentType is the media type served for exports.
func (f Format) ContentType() string {
	if f == CSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Detect picks the import format from the request content type, falling back
// to sniffing the first non-blank byte of body.
func Detect(contentType string, body []byte) Format {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "application/json":
			return JSON
		case "text/csv", "application/csv":
			return CSV
		}
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return JSON
	}
	return CSV
}

func Write(f Format, w io.Writer, txs []core.Transaction) error {
	if f == CSV {
		return WriteCSV(w, txs)
	}
	return WriteJSON(w, txs)
}

// Read parses an import in format f, reading bare dates in loc.
func Read(f Format, r io.Reader, loc *time.Location) ([]core.Transaction, error) {
	if f == CSV {
		return ReadCSV(r, loc)
	}
	return ReadJSON(r, loc)
}
