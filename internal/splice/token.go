package splice

import "fmt"

type tokenKind int

const (
	tokError tokenKind = iota
	tokEOF

	tokIdent
	tokString    // "..."
	tokRawString // `...`, r"...", r#"..."#
	tokNumber
	tokChar
	tokLifetime // 'static

	tokAssign    // =
	tokSemicolon // ;
	tokColon     // :
	tokPathSep   // ::
	tokDot       // .
	tokComma     // ,
	tokParenOpen
	tokParenClose
	tokAmpersand
	tokOther
)

var tokenNames = map[tokenKind]string{
	tokError:      "error",
	tokEOF:        "end of block",
	tokIdent:      "identifier",
	tokString:     "string literal",
	tokRawString:  "raw string literal",
	tokNumber:     "numeric literal",
	tokChar:       "character literal",
	tokLifetime:   "lifetime",
	tokAssign:     "'='",
	tokSemicolon:  "';'",
	tokColon:      "':'",
	tokPathSep:    "'::'",
	tokDot:        "'.'",
	tokComma:      "','",
	tokParenOpen:  "'('",
	tokParenClose: "')'",
	tokAmpersand:  "'&'",
	tokOther:      "symbol",
}

func (k tokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Position is a 1-based line and column inside a block. Columns count runes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type token struct {
	kind tokenKind
	val  string
	pos  Position
}

const maxTokLen = 20

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return t.kind.String()
	case tokError:
		return t.val
	case tokIdent, tokNumber, tokOther, tokLifetime, tokString, tokRawString, tokChar:
		return fmt.Sprintf("%s %s", t.kind, abbrev(t.val))
	default:
		return t.kind.String()
	}
}

func abbrev(s string) string {
	r := []rune(s)
	if len(r) > maxTokLen {
		return string(r[:maxTokLen]) + "…"
	}
	return s
}
