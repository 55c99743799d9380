// Package format renders roll results as display strings. Every function is
// pure: identical inputs always produce identical output.
package format

import (
	"strconv"
	"strings"

	"github.com/louisbranch/tableroll/internal/core/command"
)

// Arrow separates the stages of a result line.
const Arrow = " ＞ "

// CheckLine is everything shown for a check roll.
type CheckLine struct {
	// Echo is the normalized command, e.g. "3CH+2>=10".
	Echo     string
	Faces    []int
	Natural  int
	Modifier int
	Total    int
	// Verdict is the localized outcome label. Empty omits the last stage.
	Verdict string
}

// Check renders "(3CH+2>=10) ＞ 9[3,4,2]+2 ＞ 11 ＞ 成功".
func Check(line CheckLine) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(line.Echo)
	b.WriteString(")")
	b.WriteString(Arrow)
	b.WriteString(strconv.Itoa(line.Natural))
	b.WriteString("[")
	b.WriteString(Indices(line.Faces, ","))
	b.WriteString("]")
	b.WriteString(Modifier(line.Modifier))
	b.WriteString(Arrow)
	b.WriteString(strconv.Itoa(line.Total))
	if line.Verdict != "" {
		b.WriteString(Arrow)
		b.WriteString(line.Verdict)
	}
	return b.String()
}

// TableStyle is how a game system prints table results.
type TableStyle struct {
	// IndexSep joins rolled indices inside the parentheses.
	IndexSep string
	// TextSep sits between the header and the text.
	TextSep string
}

var (
	// ArrowStyle prints "覚醒表(15) ＞ text".
	ArrowStyle = TableStyle{IndexSep: ", ", TextSep: Arrow}
	// ColonStyle prints "감정표(15,3)：text".
	ColonStyle = TableStyle{IndexSep: ",", TextSep: "："}
)

// Table renders a table result header and text.
func Table(style TableStyle, name string, indices []int, text string) string {
	return name + "(" + Indices(indices, style.IndexSep) + ")" + style.TextSep + text
}

// Indices joins values with sep.
func Indices(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.Itoa(value)
	}
	return strings.Join(parts, sep)
}

// Modifier renders a signed modifier, or "" for zero.
func Modifier(value int) string {
	return command.Modifier(value)
}
