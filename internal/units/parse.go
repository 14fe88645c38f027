package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokNumber
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
	tokSuperscript
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var superscriptValue = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9', '⁻': '-',
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '°' || r == '%' || r == 'Ω' || r == 'µ'
}

func isNamePart(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r)
}

func tokenize(expr string) ([]token, error) {
	rs := []rune(expr)
	var out []token
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '*':
			if i+1 < len(rs) && rs[i+1] == '*' {
				out = append(out, token{tokPow, "**", i})
				i += 2
			} else {
				out = append(out, token{tokMul, "*", i})
				i++
			}
		case r == '·' || r == '⋅':
			out = append(out, token{tokMul, string(r), i})
			i++
		case r == '^':
			out = append(out, token{tokPow, "^", i})
			i++
		case r == '/':
			out = append(out, token{tokDiv, "/", i})
			i++
		case r == '(':
			out = append(out, token{tokLParen, "(", i})
			i++
		case r == ')':
			out = append(out, token{tokRParen, ")", i})
			i++
		case superscriptValue[r] != 0:
			start := i
			var b strings.Builder
			for i < len(rs) && superscriptValue[rs[i]] != 0 {
				b.WriteRune(superscriptValue[rs[i]])
				i++
			}
			out = append(out, token{tokSuperscript, b.String(), start})
		case unicode.IsDigit(r) || r == '.' || ((r == '-' || r == '+') && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			i++
			for i < len(rs) {
				c := rs[i]
				if unicode.IsDigit(c) || c == '.' {
					i++
					continue
				}
				if (c == 'e' || c == 'E') && i+1 < len(rs) &&
					(unicode.IsDigit(rs[i+1]) || ((rs[i+1] == '-' || rs[i+1] == '+') && i+2 < len(rs) && unicode.IsDigit(rs[i+2]))) {
					i += 2
					continue
				}
				break
			}
			out = append(out, token{tokNumber, string(rs[start:i]), start})
		case isNameStart(r):
			start := i
			for i < len(rs) && isNamePart(rs[i]) {
				i++
			}
			out = append(out, token{tokName, string(rs[start:i]), start})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}
	return append(out, token{kind: tokEOF, pos: len(rs)}), nil
}

// parsed is the intermediate result of evaluating an expression.
type parsed struct {
	unit   Unit
	factor float64
}

type parser struct {
	sys    *System
	toks   []token
	pos    int
	factor bool // numeric factors other than 1 are allowed (definitions only)
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// expr := term ( ('*' | '/' | implicit) term )*
func (p *parser) expr() (parsed, error) {
	left, err := p.term()
	if err != nil {
		return parsed{}, err
	}
	for {
		switch p.peek().kind {
		case tokMul:
			p.next()
			right, err := p.term()
			if err != nil {
				return parsed{}, err
			}
			u, err := left.unit.Mul(right.unit)
			if err != nil {
				return parsed{}, err
			}
			left = parsed{u, left.factor * right.factor}
		case tokDiv:
			p.next()
			right, err := p.term()
			if err != nil {
				return parsed{}, err
			}
			u, err := left.unit.Div(right.unit)
			if err != nil {
				return parsed{}, err
			}
			left = parsed{u, left.factor / right.factor}
		case tokName, tokNumber, tokLParen:
			right, err := p.term()
			if err != nil {
				return parsed{}, err
			}
			u, err := left.unit.Mul(right.unit)
			if err != nil {
				return parsed{}, err
			}
			left = parsed{u, left.factor * right.factor}
		default:
			return left, nil
		}
	}
}

// term := factor ( ('**' | '^') int | superscript )?
func (p *parser) term() (parsed, error) {
	base, err := p.factorExpr()
	if err != nil {
		return parsed{}, err
	}
	var exp string
	switch t := p.peek(); t.kind {
	case tokPow:
		p.next()
		n := p.next()
		if n.kind != tokNumber {
			return parsed{}, fmt.Errorf("expected integer exponent at position %d", n.pos)
		}
		exp = n.text
	case tokSuperscript:
		p.next()
		exp = t.text
	default:
		return base, nil
	}
	n, err := strconv.Atoi(exp)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return parsed{}, fmt.Errorf("exponent %s: %w", exp, ErrExponentRange)
		}
		return parsed{}, fmt.Errorf("exponent %q must be an integer", exp)
	}
	u, err := base.unit.Pow(n)
	if err != nil {
		return parsed{}, err
	}
	return parsed{u, math.Pow(base.factor, float64(n))}, nil
}

func (p *parser) factorExpr() (parsed, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		inner, err := p.expr()
		if err != nil {
			return parsed{}, err
		}
		if c := p.next(); c.kind != tokRParen {
			return parsed{}, fmt.Errorf("expected ')' at position %d", c.pos)
		}
		return inner, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return parsed{}, fmt.Errorf("invalid number %q", t.text)
		}
		if f != 1 && !p.factor {
			return parsed{}, fmt.Errorf("scaled unit %q must be declared with a definition", t.text)
		}
		return parsed{Dimensionless, f}, nil
	case tokName:
		if t.text == "dimensionless" {
			return parsed{Dimensionless, 1}, nil
		}
		term, ok := p.sys.resolveName(t.text)
		if !ok {
			return parsed{}, &undefinedError{name: t.text}
		}
		return parsed{Unit{terms: []Term{term}}, 1}, nil
	default:
		if t.kind == tokEOF {
			return parsed{}, fmt.Errorf("unexpected end of expression")
		}
		return parsed{}, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}

type undefinedError struct{ name string }

func (e *undefinedError) Error() string { return fmt.Sprintf("'%s' is not defined", e.name) }
