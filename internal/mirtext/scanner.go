package mirtext

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"drift/internal/diag"
	"drift/internal/source"
)

// TokKind enumerates token kinds of the textual MIR form.
type TokKind uint8

const (
	TokEOF TokKind = iota
	// TokIdent is a bare identifier or keyword (fn, ret, bb0, int32, ...).
	TokIdent
	// TokGlobal is @name.
	TokGlobal
	// TokLocal is %name.
	TokLocal
	// TokAnnot is !name (provenance annotation head).
	TokAnnot
	TokInt
	TokFloat
	// TokString carries the unquoted value in Text.
	TokString
	// TokPunct is one of ( ) { } [ ] , : = . -> ..
	TokPunct
)

func (k TokKind) String() string {
	switch k {
	case TokEOF:
		return "eof"
	case TokIdent:
		return "identifier"
	case TokGlobal:
		return "@name"
	case TokLocal:
		return "%name"
	case TokAnnot:
		return "!annotation"
	case TokInt:
		return "integer"
	case TokFloat:
		return "float"
	case TokString:
		return "string"
	case TokPunct:
		return "punctuation"
	}
	return "invalid"
}

type Token struct {
	Kind TokKind
	Text string
	Span source.Span
}

// Scanner produces tokens from a normalized MIR file. Malformed input is
// reported through the diag.Reporter and skipped; the scanner itself never
// fails.
type Scanner struct {
	file     *source.File
	reporter diag.Reporter
	off      uint32
	errs     int
}

// Errs returns the number of lexical errors reported so far.
func (sc *Scanner) Errs() int {
	return sc.errs
}

func NewScanner(file *source.File, reporter diag.Reporter) *Scanner {
	return &Scanner{file: file, reporter: reporter}
}

func (sc *Scanner) eof() bool {
	return int(sc.off) >= len(sc.file.Content)
}

func (sc *Scanner) peek() byte {
	return sc.file.Content[sc.off]
}

func (sc *Scanner) peekAt(delta uint32) (byte, bool) {
	idx := sc.off + delta
	if int(idx) >= len(sc.file.Content) {
		return 0, false
	}
	return sc.file.Content[idx], true
}

func (sc *Scanner) span(start uint32) source.Span {
	return source.Span{File: sc.file.ID, Start: start, End: sc.off}
}

// Next returns the next significant token. After EOF it always returns EOF.
func (sc *Scanner) Next() Token {
	sc.skipTrivia()
	if sc.eof() {
		return Token{Kind: TokEOF, Span: source.Span{File: sc.file.ID, Start: sc.off, End: sc.off}}
	}

	start := sc.off
	ch := sc.peek()

	switch {
	case isIdentStart(ch) || ch >= utf8.RuneSelf:
		return sc.scanIdent(start, TokIdent)

	case ch == '@':
		sc.off++
		return sc.scanSigil(start, TokGlobal)

	case ch == '%':
		sc.off++
		return sc.scanSigil(start, TokLocal)

	case ch == '!':
		sc.off++
		return sc.scanSigil(start, TokAnnot)

	case isDigit(ch):
		return sc.scanNumber(start, false)

	case ch == '-':
		if b, ok := sc.peekAt(1); ok && b == '>' {
			sc.off += 2
			return Token{Kind: TokPunct, Text: "->", Span: sc.span(start)}
		}
		if b, ok := sc.peekAt(1); ok && isDigit(b) {
			sc.off++
			return sc.scanNumber(start, true)
		}
		sc.off++
		sc.report(diag.ParseUnknownChar, start, "unexpected character '-'")
		return sc.Next()

	case ch == '"':
		return sc.scanString(start)

	case ch == '.':
		if b, ok := sc.peekAt(1); ok && b == '.' {
			sc.off += 2
			return Token{Kind: TokPunct, Text: "..", Span: sc.span(start)}
		}
		sc.off++
		return Token{Kind: TokPunct, Text: ".", Span: sc.span(start)}

	case ch == '(' || ch == ')' || ch == '{' || ch == '}' ||
		ch == '[' || ch == ']' || ch == ',' || ch == ':' || ch == '=':
		sc.off++
		return Token{Kind: TokPunct, Text: string(ch), Span: sc.span(start)}

	default:
		sc.off++
		sc.report(diag.ParseUnknownChar, start, fmt.Sprintf("unexpected character %q", string(ch)))
		return sc.Next()
	}
}

// skipTrivia consumes whitespace and // line comments.
func (sc *Scanner) skipTrivia() {
	for !sc.eof() {
		ch := sc.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			sc.off++
		case ch == '/':
			if b, ok := sc.peekAt(1); ok && b == '/' {
				for !sc.eof() && sc.peek() != '\n' {
					sc.off++
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (sc *Scanner) scanIdent(start uint32, kind TokKind) Token {
	for !sc.eof() {
		ch := sc.peek()
		if isIdentContinue(ch) || ch >= utf8.RuneSelf {
			sc.off++
			continue
		}
		break
	}
	text := string(sc.file.Content[start:sc.off])
	// Видимо одинаковые имена должны совпадать: нормализуем в NFC.
	if !isASCII(text) {
		text = norm.NFC.String(text)
	}
	return Token{Kind: kind, Text: text, Span: sc.span(start)}
}

// scanSigil scans the identifier after @, % or !.
func (sc *Scanner) scanSigil(start uint32, kind TokKind) Token {
	if sc.eof() || !(isIdentStart(sc.peek()) || sc.peek() >= utf8.RuneSelf) {
		sc.report(diag.ParseUnexpectedToken, start, "expected name after sigil")
		return Token{Kind: kind, Span: sc.span(start)}
	}
	nameStart := sc.off
	tok := sc.scanIdent(nameStart, kind)
	tok.Span = sc.span(start)
	return tok
}

func (sc *Scanner) scanNumber(start uint32, _ bool) Token {
	kind := TokInt
	for !sc.eof() {
		ch := sc.peek()
		if isDigit(ch) {
			sc.off++
			continue
		}
		// '.' only continues a number when followed by a digit; ".."
		// belongs to range syntax.
		if ch == '.' && kind == TokInt {
			if b, ok := sc.peekAt(1); ok && isDigit(b) {
				kind = TokFloat
				sc.off++
				continue
			}
		}
		break
	}
	return Token{Kind: kind, Text: string(sc.file.Content[start:sc.off]), Span: sc.span(start)}
}

func (sc *Scanner) scanString(start uint32) Token {
	sc.off++ // opening quote
	var out []byte
	for {
		if sc.eof() || sc.peek() == '\n' {
			sc.report(diag.ParseUnterminatedString, start, "unterminated string literal")
			return Token{Kind: TokString, Text: string(out), Span: sc.span(start)}
		}
		ch := sc.peek()
		sc.off++
		if ch == '"' {
			break
		}
		if ch == '\\' && !sc.eof() {
			esc := sc.peek()
			sc.off++
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '\\', '"':
				out = append(out, esc)
			default:
				out = append(out, '\\', esc)
			}
			continue
		}
		out = append(out, ch)
	}
	return Token{Kind: TokString, Text: string(out), Span: sc.span(start)}
}

func (sc *Scanner) report(code diag.Code, start uint32, msg string) {
	sc.errs++
	if sc.reporter == nil {
		return
	}
	diag.ReportError(sc.reporter, code, sc.span(start), msg).Emit()
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
