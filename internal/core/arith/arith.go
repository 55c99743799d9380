// Package arith evaluates the integer expressions that appear in table cells,
// such as "18+9" or "7-2".
//
// Supported: decimal integers, unary sign, + - * /. Multiplication and division
// bind tighter than addition and subtraction; all operators are left
// associative. Division floors toward negative infinity. Parentheses are not
// supported.
package arith

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrSyntax reports a malformed expression.
	ErrSyntax = errors.New("arith: invalid expression")
	// ErrDivideByZero reports a division by zero.
	ErrDivideByZero = errors.New("arith: division by zero")
)

var (
	expressionPattern = regexp.MustCompile(`^[+\-*/\d]+$`)
	numberPattern     = regexp.MustCompile(`^\d+$`)
)

// IsExpression reports whether text holds only digits and operators and is not a
// bare number.
func IsExpression(text string) bool {
	return expressionPattern.MatchString(text) && !numberPattern.MatchString(text)
}

// Eval evaluates text.
func Eval(text string) (int, error) {
	p := &parser{src: text}
	value, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.src[p.pos], p.pos)
	}
	return value, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expr() (int, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term() (int, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
			continue
		}
		if right == 0 {
			return 0, ErrDivideByZero
		}
		left = floorDiv(left, right)
	}
}

func (p *parser) unary() (int, error) {
	switch p.peek() {
	case '-':
		p.pos++
		value, err := p.unary()
		return -value, err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.number()
}

func (p *parser) number() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("%w: expected number at %d", ErrSyntax, start)
	}
	value, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return value, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
