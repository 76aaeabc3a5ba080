package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightninglabs/segaddr"
	"gopkg.in/yaml.v2"
)

// result is the output of a command in a form every output format can
// render.
type result interface {
	// writePlain writes the result as plain text lines.
	writePlain(w io.Writer) error

	// tableRows returns the header and the rows of the tabular form.
	tableRows() (table.Row, []table.Row)
}

// printResult writes res to w in the given format.
func printResult(w io.Writer, format string, res result) error {
	switch format {
	case segaddr.FormatJSON:
		b, err := json.MarshalIndent(res, "", "    ")
		if err != nil {
			return fmt.Errorf("unable to encode json: %w", err)
		}

		_, err = fmt.Fprintf(w, "%s\n", b)
		return err

	case segaddr.FormatYAML:
		b, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("unable to encode yaml: %w", err)
		}

		_, err = w.Write(b)
		return err

	case segaddr.FormatTable:
		header, rows := res.tableRows()

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(header)
		for _, row := range rows {
			t.AppendRow(row)
		}
		t.Render()

		return nil

	default:
		return res.writePlain(w)
	}
}

// fieldRows turns name/value pairs into table rows.
func fieldRows(fields ...string) []table.Row {
	rows := make([]table.Row, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		rows = append(rows, table.Row{fields[i], fields[i+1]})
	}

	return rows
}
