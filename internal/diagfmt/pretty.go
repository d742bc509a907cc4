package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"drift/internal/diag"
	"drift/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с
// аналогичным форматом. Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if w == nil || bag == nil || fs == nil {
		return
	}
	p := prettyPrinter{w: w, fs: fs, opts: opts}
	for _, d := range bag.Items() {
		p.printDiagnostic(&d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *prettyPrinter) paint(attrs ...color.Attribute) func(format string, a ...any) string {
	if !p.opts.Color {
		return fmt.Sprintf
	}
	return color.New(attrs...).Sprintf
}

func (p *prettyPrinter) severityPaint(sev diag.Severity) func(string, ...any) string {
	switch sev {
	case diag.SevError:
		return p.paint(color.FgRed, color.Bold)
	case diag.SevWarning:
		return p.paint(color.FgYellow, color.Bold)
	default:
		return p.paint(color.FgCyan, color.Bold)
	}
}

func (p *prettyPrinter) printDiagnostic(d *diag.Diagnostic) {
	p.printHeadline(d.Severity, d.Severity.String(), d.Code, d.Primary, d.Message)
	p.printSourceContext(d.Primary, d.Severity)

	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			p.printHeadline(diag.SevInfo, "note", d.Code, n.Span, n.Msg)
			p.printSourceContext(n.Span, diag.SevInfo)
		}
	}
	fmt.Fprintln(p.w)
}

func (p *prettyPrinter) printHeadline(sev diag.Severity, label string, code diag.Code, span source.Span, msg string) {
	sevPaint := p.severityPaint(sev)
	if int(span.File) >= p.fs.Len() {
		// Файл не был загружен, печатаем без позиции.
		fmt.Fprintf(p.w, "%s %s\n", sevPaint("%s[%s]:", label, code.ID()), msg)
		return
	}
	f := p.fs.Get(span.File)
	start, _ := p.fs.Resolve(span)

	bold := p.paint(color.Bold)

	fmt.Fprintf(p.w, "%s %s: %s\n",
		sevPaint("%s[%s]:", label, code.ID()),
		bold("%s:%d:%d", formatPath(f, p.fs, p.opts.PathMode), start.Line, start.Col),
		msg)
}

// printSourceContext shows the offending line with a ^~~~ underline.
func (p *prettyPrinter) printSourceContext(span source.Span, sev diag.Severity) {
	if int(span.File) >= p.fs.Len() {
		return
	}
	f := p.fs.Get(span.File)
	start, end := p.fs.Resolve(span)

	line := f.GetLine(start.Line)
	if line == "" {
		return
	}

	gutter := fmt.Sprintf("%4d", start.Line)
	dim := p.paint(color.Faint)
	fmt.Fprintf(p.w, "%s %s %s\n", dim("%s", gutter), dim("|"), truncateLine(line, p.opts.Width))

	// Подчёркивание в видимых колонках, а не в байтах.
	startCol := int(start.Col) - 1
	if startCol < 0 || startCol > len(line) {
		startCol = 0
	}
	prefixWidth := runewidth.StringWidth(firstN(line, startCol))

	markLen := 1
	if end.Line == start.Line && end.Col > start.Col {
		segment := firstN(line, int(end.Col)-1)
		markLen = runewidth.StringWidth(segment) - prefixWidth
		if markLen < 1 {
			markLen = 1
		}
	}

	underline := "^" + strings.Repeat("~", markLen-1)
	fmt.Fprintf(p.w, "%s %s %s%s\n",
		strings.Repeat(" ", len(gutter)),
		dim("|"),
		strings.Repeat(" ", prefixWidth),
		p.severityPaint(sev)("%s", underline))
}

// firstN returns the first n bytes of s, clamped to a rune boundary.
func firstN(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

func truncateLine(line string, width uint8) string {
	if width == 0 {
		return line
	}
	return runewidth.Truncate(line, int(width), "…")
}
