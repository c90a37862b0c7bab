package patent

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/nuri428/mcp-kipris/pkg/kipris"
	"github.com/olekukonko/tablewriter"
)

// Render de-duplicates, selects and labels records per def and renders them
// as a markdown table or as an indented JSON array of objects.
func Render(def Definition, records kipris.RecordSet) (string, error) {
	records = Dedupe(records, def.DedupeBy)
	columns := SelectColumns(records, def.Columns)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = column
		if label, ok := def.Labels[column]; ok {
			headers[i] = label
		}
	}

	if def.Format == FormatJSON {
		return renderJSON(records, columns, headers)
	}
	return renderMarkdown(records, columns, headers), nil
}

// Dedupe keeps the first record for each value of field. Records without the
// field are always kept.
func Dedupe(records kipris.RecordSet, field string) kipris.RecordSet {
	if field == "" {
		return records
	}

	seen := make(map[string]struct{}, len(records))
	out := make(kipris.RecordSet, 0, len(records))
	for _, record := range records {
		value, ok := record[field]
		if ok {
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
		}
		out = append(out, record)
	}

	return out
}

// SelectColumns keeps the wanted columns the records actually carry, in the
// wanted order. If none are present, or none are wanted, every field is used.
func SelectColumns(records kipris.RecordSet, wanted []string) []string {
	fields := records.Fields()
	if len(wanted) == 0 {
		return fields
	}

	present := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		present[field] = struct{}{}
	}

	columns := make([]string, 0, len(wanted))
	for _, column := range wanted {
		if _, ok := present[column]; ok {
			columns = append(columns, column)
		}
	}

	if len(columns) == 0 {
		return fields
	}
	return columns
}

func renderMarkdown(records kipris.RecordSet, columns, headers []string) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader(headers)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = cell(record[column])
		}
		rows = append(rows, row)
	}
	table.AppendBulk(rows)
	table.Render()

	return strings.TrimRight(buf.String(), "\n")
}

var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", `\|`)

func cell(value string) string {
	return strings.TrimSpace(cellReplacer.Replace(value))
}

// orderedRecord marshals as a JSON object with keys in column order.
type orderedRecord struct {
	keys   []string
	values []*string
}

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')

		var value any
		if r.values[i] != nil {
			value = *r.values[i]
		}
		if err := writeJSON(&buf, value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, value any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func renderJSON(records kipris.RecordSet, columns, headers []string) (string, error) {
	rows := make([]orderedRecord, 0, len(records))
	for _, record := range records {
		row := orderedRecord{keys: headers, values: make([]*string, len(columns))}
		for i, column := range columns {
			if value, ok := record[column]; ok {
				v := value
				row.values[i] = &v
			}
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return "", err
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}
