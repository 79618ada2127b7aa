// Package calc evaluates the arithmetic typed into the amount field, e.g.
// "12.50 + 3×2" or "200 - 15%".
//
// Grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "×" | "÷") unary }
//	unary   = "-" unary | "+" unary | postfix
//	postfix = primary { "%" }
//	primary = number | "(" expr ")"
package calc

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrSyntax         = errors.New("syntax error")
	ErrDivisionByZero = errors.New("division by zero")
)

const (
	// divisionPrecision bounds the digits kept by non-terminating divisions.
	divisionPrecision = 16

	// MaxLength and MaxDepth bound the input so a hostile expression cannot
	// exhaust the goroutine stack.
	MaxLength = 256
	MaxDepth  = 64
)

var hundred = decimal.NewFromInt(100)

type parser struct {
	src   []rune
	pos   int
	depth int
}

// Eval evaluates expr exactly in decimal arithmetic.
func Eval(expr string) (decimal.Decimal, error) {
	p := &parser{src: []rune(expr)}
	if len(p.src) > MaxLength {
		return decimal.Zero, fmt.Errorf("%w: expression longer than %d characters", ErrSyntax, MaxLength)
	}
	if p.peek() == 0 {
		return decimal.Zero, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	v, err := p.expr()
	if err != nil {
		return decimal.Zero, err
	}
	if r := p.peek(); r != 0 {
		return decimal.Zero, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, p.pos)
	}
	return v, nil
}

// peek skips whitespace and returns the next rune, or 0 at the end.
func (p *parser) peek() rune {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// enter tracks one level of recursion; callers must defer p.leave().
func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return fmt.Errorf("%w: nested deeper than %d levels", ErrSyntax, MaxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) expr() (decimal.Decimal, error) {
	v, err := p.term()
	if err != nil {
		return v, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			r, err := p.term()
			if err != nil {
				return r, err
			}
			v = v.Add(r)
		case '-', '−':
			p.pos++
			r, err := p.term()
			if err != nil {
				return r, err
			}
			v = v.Sub(r)
		default:
			return v, nil
		}
	}
}

func (p *parser) term() (decimal.Decimal, error) {
	v, err := p.unary()
	if err != nil {
		return v, err
	}
	for {
		switch p.peek() {
		case '*', '×':
			p.pos++
			r, err := p.unary()
			if err != nil {
				return r, err
			}
			v = v.Mul(r)
		case '/', '÷':
			p.pos++
			r, err := p.unary()
			if err != nil {
				return r, err
			}
			if r.IsZero() {
				return decimal.Zero, ErrDivisionByZero
			}
			v = v.DivRound(r, divisionPrecision)
		default:
			return v, nil
		}
	}
}

func (p *parser) unary() (decimal.Decimal, error) {
	if err := p.enter(); err != nil {
		return decimal.Zero, err
	}
	defer p.leave()

	switch p.peek() {
	case '-', '−':
		p.pos++
		v, err := p.unary()
		return v.Neg(), err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.postfix()
}

func (p *parser) postfix() (decimal.Decimal, error) {
	v, err := p.primary()
	if err != nil {
		return v, err
	}
	for p.peek() == '%' {
		p.pos++
		v = v.Div(hundred)
	}
	return v, nil
}

func (p *parser) primary() (decimal.Decimal, error) {
	switch r := p.peek(); {
	case r == '(':
		if err := p.enter(); err != nil {
			return decimal.Zero, err
		}
		defer p.leave()
		p.pos++
		v, err := p.expr()
		if err != nil {
			return v, err
		}
		if p.peek() != ')' {
			return decimal.Zero, fmt.Errorf("%w: missing ')' at %d", ErrSyntax, p.pos)
		}
		p.pos++
		return v, nil
	case r == '.' || r == ',' || isDigit(r):
		return p.number()
	case r == 0:
		return decimal.Zero, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	default:
		return decimal.Zero, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, r, p.pos)
	}
}

// number reads digits with at most one decimal separator; a comma is
// accepted as the separator.
func (p *parser) number() (decimal.Decimal, error) {
	start := p.pos
	var sb strings.Builder
	sep := false
	for ; p.pos < len(p.src); p.pos++ {
		r := p.src[p.pos]
		if isDigit(r) {
			sb.WriteRune(r)
			continue
		}
		if (r == '.' || r == ',') && !sep {
			sep = true
			sb.WriteByte('.')
			continue
		}
		break
	}

	lit := strings.TrimSuffix(sb.String(), ".")
	if lit == "" {
		return decimal.Zero, fmt.Errorf("%w: invalid number at %d", ErrSyntax, start)
	}
	if lit[0] == '.' {
		lit = "0" + lit
	}
	d, err := decimal.NewFromString(lit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid number %q", ErrSyntax, lit)
	}
	return d, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
