// Package csvutil reads and writes the spreadsheet-flavoured CSV used by the
// import and export endpoints.
//
// The dialect is the one spreadsheet tools emit: comma separated, double-quote
// escaping, quoted cells may span lines, optional UTF-8 byte-order mark.
// encoding/csv rejects several inputs these files contain (bare quotes inside
// unquoted cells, ragged rows), so decoding is done by a small scanner.
package csvutil

import (
	"fmt"
	"strings"
	"time"
)

// BOM is prepended to every encoded document so that Excel opens it as UTF-8.
const BOM = "\uFEFF"

// ContentType is the MIME type of an encoded document.
const ContentType = "text/csv; charset=utf-8"

// Escape quotes a cell when it contains a comma, a double quote or a line break.
func Escape(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n\r") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// Encode joins rows into a single document prefixed with BOM.
func Encode(rows [][]string) string {
	var b strings.Builder
	b.WriteString(BOM)
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Escape(cell))
		}
	}
	return b.String()
}

// Decode splits text into rows of cells.
//
// Unquoted cells are trimmed; quoted cells keep their content verbatim,
// including commas and newlines. The last row is returned even when the
// text has no trailing newline.
func Decode(text string) [][]string {
	text = strings.TrimPrefix(text, BOM)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
		quoted   bool
	)

	flushCell := func() {
		v := cell.String()
		if !quoted {
			v = strings.TrimSpace(v)
		}
		row = append(row, v)
		cell.Reset()
		quoted = false
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					cell.WriteRune('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			cell.WriteRune(ch)
			continue
		}

		switch ch {
		case '"':
			// Whitespace before an opening quote is padding, not content.
			if !quoted && strings.TrimSpace(cell.String()) == "" {
				cell.Reset()
				quoted = true
			}
			inQuotes = true
		case ',':
			flushCell()
		case '\n':
			flushCell()
			rows = append(rows, row)
			row = nil
		default:
			if quoted && (ch == ' ' || ch == '\t') {
				continue
			}
			cell.WriteRune(ch)
		}
	}

	if cell.Len() > 0 || quoted || len(row) > 0 {
		flushCell()
		rows = append(rows, row)
	}
	return rows
}

// Filename builds "{name}_{YYYYMMDD}.{ext}".
func Filename(name string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", name, at.Format("20060102"), ext)
}
