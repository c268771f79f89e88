package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const bannerWidth = 57

// Banner writes a three-line section header:
//
//	=========================================================
//	=========DEMO 1 HTTP GET to fetch Feed Details===========
//	=========================================================
func Banner(w io.Writer, title string) {
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(w, BorderStyle.Render(rule))
	fmt.Fprintln(w, HeaderStyle.Render(centerIn(title, bannerWidth, "=")))
	fmt.Fprintln(w, BorderStyle.Render(rule))
}

// centerIn places s inside a line of fill characters. The text starts after
// nine fill characters, matching the classic demo output, unless it is too long.
func centerIn(s string, width int, fill string) string {
	const lead = 9
	sw := runewidth.StringWidth(s)
	if sw+lead >= width {
		return s
	}
	return strings.Repeat(fill, lead) + s + strings.Repeat(fill, width-lead-sw)
}
