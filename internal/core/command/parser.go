// Package command parses check commands such as "CH+2>=10" into roll requests.
//
// Parsing never fails loudly: a command that does not match a grammar reports
// ok=false so the dispatcher can offer it to the next game system.
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMaxCount bounds the dice count a grammar accepts when MaxCount is unset.
const DefaultMaxCount = 100

// Operator is a comparison between a roll total and a target.
type Operator int

const (
	// OpNone means the command carries no comparison clause.
	OpNone Operator = iota
	// OpGreaterEqual succeeds when total >= target.
	OpGreaterEqual
)

func (o Operator) String() string {
	switch o {
	case OpGreaterEqual:
		return ">="
	default:
		return ""
	}
}

var operatorsByText = map[string]Operator{
	">=": OpGreaterEqual,
}

// Grammar describes one game's check command.
type Grammar struct {
	// Token is the role keyword, e.g. "CH" or "G".
	Token string
	// EchoToken replaces the count and Token in the normalized echo, so "G"
	// echoes as "2D6". Empty echoes "<count><Token>".
	EchoToken string
	// DefaultCount is used when no count prefix is given.
	DefaultCount int
	// CountPrefix allows a leading dice count such as "4CH".
	CountPrefix bool
	// MaxCount caps the dice count. Zero means DefaultMaxCount.
	MaxCount int
	// Operators lists the comparison operators this game accepts.
	Operators []Operator
	// AllowWildcard accepts "?" as a target, meaning compare nothing.
	AllowWildcard bool
}

// Request is a parsed check command.
type Request struct {
	Count     int
	Modifier  int
	Operator  Operator
	Target    int
	HasTarget bool
	Wildcard  bool

	token     string
	echoToken string
}

// String renders the normalized command, e.g. "3CH+2>=10".
func (r Request) String() string {
	var b strings.Builder
	if r.echoToken != "" {
		b.WriteString(r.echoToken)
	} else {
		fmt.Fprintf(&b, "%d%s", r.Count, r.token)
	}
	b.WriteString(Modifier(r.Modifier))
	if r.Operator != OpNone {
		b.WriteString(r.Operator.String())
		if r.Wildcard {
			b.WriteString("?")
		} else {
			b.WriteString(strconv.Itoa(r.Target))
		}
	}
	return b.String()
}

// Judged reports whether the request carries a concrete target to compare against.
func (r Request) Judged() bool {
	return r.Operator != OpNone && r.HasTarget && !r.Wildcard
}

// Modifier renders a signed modifier, or "" for zero.
func Modifier(value int) string {
	switch {
	case value > 0:
		return "+" + strconv.Itoa(value)
	case value < 0:
		return strconv.Itoa(value)
	default:
		return ""
	}
}

// Parser matches commands against a compiled Grammar.
type Parser struct {
	grammar Grammar
	pattern *regexp.Regexp
}

var modifierPattern = regexp.MustCompile(`[+-]\d+`)

// Compile validates g and builds its Parser.
func Compile(g Grammar) (*Parser, error) {
	token := strings.TrimSpace(g.Token)
	if token == "" {
		return nil, fmt.Errorf("grammar token is required")
	}
	if g.DefaultCount < 0 {
		return nil, fmt.Errorf("grammar %s: default count must be non-negative", token)
	}
	g.Token = strings.ToUpper(token)
	if g.MaxCount <= 0 {
		g.MaxCount = DefaultMaxCount
	}
	expr := `(?i)^(\d*)` + regexp.QuoteMeta(token) + `((?:[+-]\d+)*)(?:(>=|<=|<>|!=|>|<|=)(\d+|\?))?$`
	return &Parser{grammar: g, pattern: regexp.MustCompile(expr)}, nil
}

// MustCompile is Compile for package-level grammars.
func MustCompile(g Grammar) *Parser {
	p, err := Compile(g)
	if err != nil {
		panic(err)
	}
	return p
}

// Grammar returns the parser's grammar with defaults applied.
func (p *Parser) Grammar() Grammar {
	return p.grammar
}

// Parse matches text. ok is false when text is not this grammar's command,
// including commands that use an operator the game does not allow.
func (p *Parser) Parse(text string) (Request, bool) {
	m := p.pattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Request{}, false
	}

	req := Request{Count: p.grammar.DefaultCount, token: p.grammar.Token, echoToken: p.grammar.EchoToken}
	if m[1] != "" {
		if !p.grammar.CountPrefix {
			return Request{}, false
		}
		count, err := strconv.Atoi(m[1])
		if err != nil || count > p.grammar.MaxCount {
			return Request{}, false
		}
		req.Count = count
	}

	for _, token := range modifierPattern.FindAllString(m[2], -1) {
		value, err := strconv.Atoi(token)
		if err != nil {
			return Request{}, false
		}
		req.Modifier += value
	}

	if m[3] == "" {
		return req, true
	}
	op, known := operatorsByText[m[3]]
	if !known || !p.allows(op) {
		return Request{}, false
	}
	req.Operator = op
	if m[4] == "?" {
		if !p.grammar.AllowWildcard {
			return Request{}, false
		}
		req.Wildcard = true
		return req, true
	}
	target, err := strconv.Atoi(m[4])
	if err != nil {
		return Request{}, false
	}
	req.Target = target
	req.HasTarget = true
	return req, true
}

func (p *Parser) allows(op Operator) bool {
	for _, allowed := range p.grammar.Operators {
		if allowed == op {
			return true
		}
	}
	return false
}
