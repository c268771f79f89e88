package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/vietdv277/secops/internal/config"
)

// contextColumns are the header labels of the contexts table.
var contextColumns = []string{"CONTEXT", "LOCATION", "PROJECT", "CUSTOMER ID", "LOG TYPE"}

// PrintContextTable writes contexts sorted by name; the current one is
// marked with an asterisk.
func PrintContextTable(w io.Writer, contexts map[string]*config.Context, current string) {
	names := config.SortedNames(contexts)

	widths := make([]int, len(contextColumns))
	for i, h := range contextColumns {
		widths[i] = len(h)
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		ctx := contexts[name]
		row := []string{name, dash(ctx.Location), dash(ctx.Project), dash(ctx.CustomerID), dash(ctx.LogType)}
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(w)
	var header strings.Builder
	header.WriteString("  ")
	for i, h := range contextColumns {
		header.WriteString(HeaderStyle.Render(padRight(h, widths[i])))
		header.WriteString("  ")
	}
	fmt.Fprintln(w, strings.TrimRight(header.String(), " "))

	total := 0
	for _, wd := range widths {
		total += wd + 2
	}
	fmt.Fprintln(w, MutedStyle.Render("  "+strings.Repeat(Horizontal, total-2)))

	for i, row := range rows {
		marker := "  "
		if names[i] == current {
			marker = "* "
		}
		var line strings.Builder
		line.WriteString(marker)
		for j, cell := range row {
			text := padRight(cell, widths[j])
			if j == 0 && names[i] == current {
				text = SuccessStyle.Render(text)
			}
			line.WriteString(text)
			line.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %d contexts configured", len(contexts))
	if current != "" {
		fmt.Fprintf(w, ", current: %s", SuccessStyle.Render(current))
	}
	fmt.Fprintln(w)
}

// PrintSettings writes resolved settings as aligned label/value lines.
func PrintSettings(w io.Writer, s config.Settings) {
	for _, kv := range []struct{ label, value string }{
		{"Location:", s.Location},
		{"Project:", s.Project},
		{"Customer ID:", s.CustomerID},
		{"Feed ID:", s.FeedID},
		{"Forwarder ID:", s.ForwarderID},
		{"Log type:", s.LogType},
	} {
		value := ValueStyle.Render(kv.value)
		if kv.value == "" {
			value = MutedStyle.Render("(not set)")
		}
		fmt.Fprintf(w, "%s%s\n", padRight(kv.label, 14), value)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
