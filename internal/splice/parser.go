package splice

import (
	"fmt"
	gotoken "go/token"
	"strconv"
	"strings"

	serrors "github.com/conneroisu/splicer/internal/errors"
)

type parser struct {
	toks []token
	i    int
}

// Parse reads a block into its bindings and concat request. It performs no
// name resolution; see Expand for the full pipeline.
func Parse(src string) (*Block, error) {
	p := &parser{toks: lex(src)}
	return p.parseBlock()
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF && t.kind != tokError {
		p.i++
	}
	return t
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func malformed(t token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if t.kind == tokError {
		msg = t.val
	}
	return serrors.NewMalformedDeclarationError(msg).
		WithLocation("", t.pos.Line, t.pos.Column)
}

func (p *parser) expect(k tokenKind, context string) (token, error) {
	t := p.next()
	if t.kind != k {
		return t, malformed(t, "expected %s %s, found %s", k, context, t)
	}
	return t, nil
}

func isKeyword(t token, kw string) bool {
	return t.kind == tokIdent && t.val == kw
}

func (p *parser) parseBlock() (*Block, error) {
	block := &Block{}

	for {
		t := p.next()
		switch {
		case isKeyword(t, "let"):
			b, err := p.parseLet()
			if err != nil {
				return nil, err
			}
			block.Bindings = append(block.Bindings, b)

		case isKeyword(t, "const"):
			req, err := p.parseConst(t)
			if err != nil {
				return nil, err
			}
			block.Request = req

			if end := p.next(); end.kind != tokEOF {
				return nil, malformed(end, "unexpected %s after the concat declaration; it must be the last statement", end)
			}
			return block, nil

		case t.kind == tokEOF:
			return nil, malformed(t, "missing concat declaration: a block must end with `const NAME: &str = concat(...);`")

		default:
			return nil, malformed(t, "expected `let` or `const` statement, found %s", t)
		}
	}
}

func (p *parser) parseLet() (Binding, error) {
	name, err := p.expect(tokIdent, "binding name after `let`")
	if err != nil {
		return Binding{}, err
	}
	if name.val == "mut" {
		return Binding{}, malformed(name, "mutable bindings are not supported")
	}

	if p.peek().kind == tokColon {
		p.next()
		if _, err := p.parseStringType(); err != nil {
			return Binding{}, err
		}
	}

	if _, err := p.expect(tokAssign, "after binding name"); err != nil {
		return Binding{}, err
	}

	value, err := p.parseValue(name)
	if err != nil {
		return Binding{}, err
	}

	if _, err := p.expect(tokSemicolon, "after binding value"); err != nil {
		return Binding{}, err
	}

	return Binding{Name: name.val, Value: value, Pos: name.pos}, nil
}

// parseValue accepts exactly one string literal. Anything else that still
// forms an expression is a NonLiteralValueError.
func (p *parser) parseValue(name token) (string, error) {
	t := p.next()

	switch t.kind {
	case tokString, tokRawString:
		switch after := p.peek(); {
		case after.kind == tokSemicolon:
			return decodeLiteral(t)
		case after.kind == tokEOF, after.kind == tokError,
			isKeyword(after, "let"), isKeyword(after, "const"):
			return "", malformed(after, "expected ';' after binding value, found %s", after)
		default:
			return "", nonLiteral(name, t, "an expression")
		}
	case tokSemicolon, tokEOF, tokError:
		return "", malformed(t, "missing value for binding %q", name.val)
	case tokNumber:
		return "", nonLiteral(name, t, "numeric literal "+t.val)
	case tokChar:
		return "", nonLiteral(name, t, "character literal "+t.val)
	case tokIdent:
		if t.val == "true" || t.val == "false" {
			return "", nonLiteral(name, t, "boolean literal "+t.val)
		}
		return "", nonLiteral(name, t, "an expression starting with "+strconv.Quote(t.val))
	default:
		return "", nonLiteral(name, t, "an expression")
	}
}

func nonLiteral(name, at token, found string) error {
	return serrors.NewNonLiteralValueError(name.val, found).
		WithLocation("", at.pos.Line, at.pos.Column)
}

func (p *parser) parseConst(kw token) (ConcatenationRequest, error) {
	req := ConcatenationRequest{Pos: kw.pos}

	name, err := p.expect(tokIdent, "constant name after `const`")
	if err != nil {
		return req, err
	}
	if gotoken.IsKeyword(name.val) {
		return req, malformed(name, "constant name %q is a Go keyword", name.val)
	}
	if name.val == "_" || name.val == "init" {
		return req, malformed(name, "constant name %q cannot be declared as a constant", name.val)
	}
	req.Output = name.val

	if _, err := p.expect(tokColon, "and a string type after the constant name"); err != nil {
		return req, err
	}
	if req.Type, err = p.parseStringType(); err != nil {
		return req, err
	}

	if _, err := p.expect(tokAssign, "after the constant type"); err != nil {
		return req, err
	}
	if err := p.parseConcatFunc(); err != nil {
		return req, err
	}
	if _, err := p.expect(tokParenOpen, "after concat"); err != nil {
		return req, err
	}

	req.Inputs = []Reference{}
	for p.peek().kind != tokParenClose {
		arg := p.next()
		switch arg.kind {
		case tokIdent:
			req.Inputs = append(req.Inputs, Reference{Name: arg.val, Pos: arg.pos})
		case tokEOF, tokError:
			return req, malformed(arg, "unterminated concat argument list")
		default:
			return req, malformed(arg, "concat arguments must be binding names, found %s", arg)
		}

		if sep := p.peek(); sep.kind == tokComma {
			p.next()
		} else if sep.kind != tokParenClose {
			return req, malformed(sep, "expected ',' or ')' in concat arguments, found %s", sep)
		}
	}
	p.next() // ')'

	if _, err := p.expect(tokSemicolon, "after the concat declaration"); err != nil {
		return req, err
	}

	return req, nil
}

// parseStringType accepts &str, &'static str, str, string and String.
func (p *parser) parseStringType() (string, error) {
	t := p.next()

	switch {
	case t.kind == tokAmpersand:
		typ := "&"
		if lt := p.peek(); lt.kind == tokLifetime {
			p.next()
			typ += lt.val + " "
		}
		s := p.next()
		if !isKeyword(s, "str") {
			return "", malformed(s, "expected str after %q, found %s", strings.TrimSpace(typ), s)
		}
		return typ + "str", nil
	case isKeyword(t, "str"), isKeyword(t, "string"), isKeyword(t, "String"):
		return t.val, nil
	default:
		return "", malformed(t, "output type must be a string type, found %s", t)
	}
}

// parseConcatFunc accepts concat optionally qualified by a path, such as
// string::concat or strings.concat.
func (p *parser) parseConcatFunc() error {
	var segments []string

	first := p.next()
	if first.kind != tokIdent {
		return malformed(first, "const value must be a concat(...) call, found %s", first)
	}
	segments = append(segments, first.val)

	for k := p.peek().kind; k == tokPathSep || k == tokDot; k = p.peek().kind {
		p.next()
		seg, err := p.expect(tokIdent, "in function path")
		if err != nil {
			return err
		}
		segments = append(segments, seg.val)
	}

	if last := segments[len(segments)-1]; last != "concat" {
		return malformed(first, "unknown function %q: only concat is supported", strings.Join(segments, "::"))
	}
	return nil
}

// decodeLiteral returns the value of a string token.
func decodeLiteral(t token) (string, error) {
	switch {
	case t.kind == tokString:
		s, err := strconv.Unquote(t.val)
		if err != nil {
			return "", malformed(t, "invalid string literal %s", t.val)
		}
		return s, nil
	case strings.HasPrefix(t.val, "`"):
		return t.val[1 : len(t.val)-1], nil
	default:
		// r#"..."#
		body := strings.TrimPrefix(t.val, "r")
		hashes := len(body) - len(strings.TrimLeft(body, "#"))
		return body[hashes+1 : len(body)-hashes-1], nil
	}
}
