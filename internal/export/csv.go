package export

import (
	"io"
	"strings"

	"beconforms/internal/model"
)

// ResponsesCSV writes all responses of a form as CSV. The header row is
// "Submitted At" followed by the field labels in field order. Array answers
// are joined with "; ". Every cell is enclosed in double quotes with
// embedded quotes doubled, so the output is stable regardless of commas or
// newlines in answers.
func ResponsesCSV(w io.Writer, fields []model.FormField, responses []model.FormResponse) error {
	header := make([]string, 0, len(fields)+1)
	header = append(header, "Submitted At")
	for _, f := range fields {
		header = append(header, f.Label)
	}
	if err := writeRow(w, header); err != nil {
		return err
	}

	for _, r := range responses {
		row := make([]string, 0, len(fields)+1)
		row = append(row, r.CreatedAt)
		for _, f := range fields {
			row = append(row, cellValue(r.Data[f.ID]))
		}
		if err := writeRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, "; ")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func writeRow(w io.Writer, cells []string) error {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}
