package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goliatone/go-resources/core"
	"github.com/olekukonko/tablewriter"
)

func renderEnvelope(out io.Writer, env core.Envelope, format string) error {
	if strings.EqualFold(format, outputJSON) {
		return writeJSON(out, map[string]any{"status": env.Status(), "data": env.Data()})
	}
	if text, ok := env.Text(); ok {
		_, err := fmt.Fprintf(out, "%d %s\n", env.Status(), text)
		return err
	}
	if records, ok := env.Records(); ok {
		return renderRecords(out, records)
	}
	if record, ok := env.Record(); ok {
		return renderRecord(out, record)
	}
	if env.Data() == nil {
		_, err := fmt.Fprintf(out, "%d\n", env.Status())
		return err
	}
	return writeJSON(out, env.Data())
}

func renderLocal(out io.Writer, result core.LocalResult, format string) error {
	if strings.EqualFold(format, outputJSON) {
		return writeJSON(out, map[string]any{"keys": result.Keys, "local": result.Entities})
	}
	table := tablewriter.NewWriter(out)
	table.Header("Key", "Resource", "Updated")
	for _, entity := range result.Entities {
		_ = table.Append(entity.Key, entity.Resource, entity.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return table.Render()
}

// renderRecords prints one row per record. Columns are the sorted union of
// the record keys.
func renderRecords(out io.Writer, records []core.Record) error {
	columns := recordColumns(records)
	table := tablewriter.NewWriter(out)
	header := make([]any, 0, len(columns))
	for _, column := range columns {
		header = append(header, column)
	}
	table.Header(header...)
	for _, record := range records {
		row := make([]any, 0, len(columns))
		for _, column := range columns {
			row = append(row, cellValue(record[column]))
		}
		_ = table.Append(row...)
	}
	return table.Render()
}

func renderRecord(out io.Writer, record core.Record) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")
	for _, column := range recordColumns([]core.Record{record}) {
		_ = table.Append(column, cellValue(record[column]))
	}
	return table.Render()
}

func recordColumns(records []core.Record) []string {
	seen := map[string]struct{}{}
	columns := []string{}
	for _, record := range records {
		for key := range record {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	sort.Strings(columns)
	return columns
}

func cellValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case map[string]any, []any:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	default:
		return fmt.Sprint(typed)
	}
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
