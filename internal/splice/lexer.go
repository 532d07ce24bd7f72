package splice

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const eof rune = -1

type lexer struct {
	input string
	toks  []token

	pos   int
	start int
	width int

	line, col         int
	prevLine, prevCol int
	startPos          Position
}

type lexFn func(*lexer) lexFn

func newLexer(s string) *lexer {
	return &lexer{
		input:    s,
		line:     1,
		col:      1,
		startPos: Position{Line: 1, Column: 1},
	}
}

// lex tokenizes src. The returned slice always ends with either a tokEOF or a
// tokError token.
func lex(src string) []token {
	l := newLexer(src)
	l.run()
	return l.toks
}

func (l *lexer) run() {
	for state := lexDefault; state != nil; {
		state = state(l)
	}
}

func (l *lexer) emit(t tokenKind) {
	l.toks = append(l.toks, token{t, l.input[l.start:l.pos], l.startPos})
	l.ignore()
}

func (l *lexer) ignore() {
	l.start = l.pos
	l.startPos = Position{Line: l.line, Column: l.col}
}

func (l *lexer) next() rune {
	l.prevLine, l.prevCol = l.line, l.col

	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}

	var r rune
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// peek returns the next rune without consuming it. It leaves width and the
// previous position alone, so a backup after a peek still undoes the last next.
func (l *lexer) peek() rune {
	if l.pos >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
	l.line, l.col = l.prevLine, l.prevCol
}

func (l *lexer) acceptRun(r rune) int {
	m := 0
	for l.next() == r {
		m++
	}
	l.backup()
	return m
}

func (l *lexer) acceptWhile(f func(rune) bool) {
	for f(l.next()) {
	}
	l.backup()
}

func (l *lexer) errorf(format string, args ...any) lexFn {
	l.toks = append(l.toks, token{
		kind: tokError,
		val:  fmt.Sprintf(format, args...),
		pos:  l.startPos,
	})
	return nil
}

func lexDefault(l *lexer) lexFn {
	for {
		switch r := l.next(); {
		case r == eof:
			l.emit(tokEOF)
			return nil
		case unicode.IsSpace(r):
			l.ignore()

		case r == '/' && l.peek() == '/':
			l.acceptWhile(func(r rune) bool { return r != '\n' && r != eof })
			l.ignore()
		case r == '/' && l.peek() == '*':
			return lexBlockComment

		case r == '"':
			return lexString
		case r == '`':
			return lexBacktick
		case r == 'r' && isRustRawStart(l.input[l.pos:]):
			return lexRustRaw
		case r == '\'':
			return lexQuote
		case isIdentStart(r):
			return lexIdent
		case isDigit(r):
			return lexNumber

		case r == '=':
			l.emit(tokAssign)
		case r == ';':
			l.emit(tokSemicolon)
		case r == ',':
			l.emit(tokComma)
		case r == '(':
			l.emit(tokParenOpen)
		case r == ')':
			l.emit(tokParenClose)
		case r == '&':
			l.emit(tokAmpersand)
		case r == '.':
			l.emit(tokDot)
		case r == ':':
			if l.peek() == ':' {
				l.next()
				l.emit(tokPathSep)
			} else {
				l.emit(tokColon)
			}
		default:
			l.emit(tokOther)
		}
	}
}

func lexBlockComment(l *lexer) lexFn {
	l.next() // '*'
	for {
		switch r := l.next(); {
		case r == eof:
			return l.errorf("unterminated block comment")
		case r == '*' && l.peek() == '/':
			l.next()
			l.ignore()
			return lexDefault
		}
	}
}

func lexString(l *lexer) lexFn {
	for {
		switch l.next() {
		case '\\':
			if r := l.next(); r == eof || r == '\n' {
				return l.errorf("unterminated string literal")
			}
		case '"':
			l.emit(tokString)
			return lexDefault
		case '\n', eof:
			return l.errorf("unterminated string literal")
		}
	}
}

func lexBacktick(l *lexer) lexFn {
	for {
		switch l.next() {
		case '`':
			l.emit(tokRawString)
			return lexDefault
		case eof:
			return l.errorf("unterminated raw string literal")
		}
	}
}

func isRustRawStart(rest string) bool {
	return strings.HasPrefix(strings.TrimLeft(rest, "#"), `"`)
}

func lexRustRaw(l *lexer) lexFn {
	hashes := l.acceptRun('#')
	l.next() // opening quote
	closing := `"` + strings.Repeat("#", hashes)

	for {
		switch l.next() {
		case '"':
			if strings.HasPrefix(l.input[l.pos-1:], closing) {
				for i := 0; i < hashes; i++ {
					l.next()
				}
				l.emit(tokRawString)
				return lexDefault
			}
		case eof:
			return l.errorf("unterminated raw string literal")
		}
	}
}

// lexQuote distinguishes 'x' character literals from 'static lifetimes.
func lexQuote(l *lexer) lexFn {
	r := l.next()
	if isIdentStart(r) {
		l.acceptWhile(isIdentChar)
		if l.peek() == '\'' {
			l.next()
			l.emit(tokChar)
		} else {
			l.emit(tokLifetime)
		}
		return lexDefault
	}

	l.backup()
	for {
		switch l.next() {
		case '\\':
			l.next()
		case '\'':
			l.emit(tokChar)
			return lexDefault
		case '\n', eof:
			return l.errorf("unterminated character literal")
		}
	}
}

func lexIdent(l *lexer) lexFn {
	l.acceptWhile(isIdentChar)
	l.emit(tokIdent)
	return lexDefault
}

func lexNumber(l *lexer) lexFn {
	for {
		r := l.next()
		if isIdentChar(r) {
			continue
		}
		if r == '.' && isDigit(l.peek()) {
			continue
		}
		l.backup()
		break
	}
	l.emit(tokNumber)
	return lexDefault
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
