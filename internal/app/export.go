package app

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/skillmatrix/internal/adapters/export"
	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/pkg/logger"
)

// Format is the file format of an export.
type Format string

// Export formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat converts s into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Export downloads a report and writes it to w, converted to a workbook
// when format is xlsx.
func (s *Session) Export(ctx context.Context, kind client.ExportKind, format Format, w io.Writer) error {
	if s.isClosed() {
		return ErrClosed
	}
	data, err := s.api.Export(ctx, kind)
	if err != nil {
		s.notes.Error(client.Message(err))
		return err
	}
	switch format {
	case FormatXLSX:
		err = export.CSVToXLSX(w, string(kind), data)
	default:
		_, err = w.Write(data)
	}
	if err != nil {
		s.notes.Error("export failed")
		return fmt.Errorf("write %s export: %w", kind, err)
	}
	s.logger.Debug(ctx, "export written",
		logger.String("kind", string(kind)),
		logger.String("format", string(format)),
		logger.Int("bytes", len(data)))
	return nil
}
