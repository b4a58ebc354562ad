package condition

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expr is a parsed condition. It only reads the bound dependency values;
// nothing else is reachable from an expression.
//
// Supported syntax:
//   - operands: 'string', "string", numbers, true/false, null, ${n}
//   - comparisons: ==, !=, <, <=, >, >= (=== and !== are accepted as aliases)
//   - composition: &&, ||, !, parentheses
type Expr struct {
	source string
	root   exprNode
	maxRef int
}

var typographicQuotes = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
)

// NormalizeQuotes replaces typographic quotes with their ASCII forms.
func NormalizeQuotes(s string) string {
	return typographicQuotes.Replace(s)
}

// Parse compiles a condition string. An empty condition is always true.
func Parse(condition string) (*Expr, error) {
	source := strings.TrimSpace(NormalizeQuotes(condition))
	out := &Expr{source: source, maxRef: -1}
	if source == "" {
		return out, nil
	}
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return out, nil
	}
	for _, tok := range tokens {
		if tok.kind == tokenPlaceholder && tok.index > out.maxRef {
			out.maxRef = tok.index
		}
	}
	root, err := parseExpression(tokens)
	if err != nil {
		return nil, err
	}
	out.root = root
	return out, nil
}

// String returns the normalized source.
func (e *Expr) String() string {
	return e.source
}

// MaxPlaceholder returns the highest ${n} index used, or -1.
func (e *Expr) MaxPlaceholder() int {
	return e.maxRef
}

// Eval evaluates the expression with bindings[n] standing in for ${n}.
func (e *Expr) Eval(bindings []string) (bool, error) {
	if e == nil || e.root == nil {
		return true, nil
	}
	if e.maxRef >= len(bindings) {
		return false, fmt.Errorf("condition: placeholder ${%d} has no dependency (have %d)", e.maxRef, len(bindings))
	}
	return e.root.eval(bindings)
}

type tokenKind int

const (
	tokenString tokenKind = iota
	tokenNumber
	tokenBool
	tokenNull
	tokenPlaceholder
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind  tokenKind
	raw   string
	index int
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	next := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	consume := func() byte {
		if i >= len(input) {
			return 0
		}
		ch := input[i]
		i++
		return ch
	}

	for i < len(input) {
		ch := next()
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		switch ch {
		case '(':
			consume()
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
		case ')':
			consume()
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
		case '!':
			consume()
			if next() == '=' {
				consume()
				if next() == '=' {
					consume()
				}
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
		case '=':
			consume()
			if next() != '=' {
				return nil, errors.New("condition: unexpected '='; use '=='")
			}
			consume()
			if next() == '=' {
				consume()
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
		case '<', '>':
			op := consume()
			orEqual := next() == '='
			if orEqual {
				consume()
			}
			tokens = append(tokens, comparison(op, orEqual))
		case '&':
			consume()
			if next() != '&' {
				return nil, errors.New("condition: unexpected '&'; use '&&'")
			}
			consume()
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
		case '|':
			consume()
			if next() != '|' {
				return nil, errors.New("condition: unexpected '|'; use '||'")
			}
			consume()
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
		case '$':
			consume()
			if next() != '{' {
				return nil, errors.New("condition: expected '{' after '$'")
			}
			consume()
			start := i
			for i < len(input) && input[i] != '}' {
				i++
			}
			if i >= len(input) {
				return nil, errors.New("condition: unterminated placeholder")
			}
			raw := strings.TrimSpace(input[start:i])
			consume()
			index, err := strconv.Atoi(raw)
			if err != nil || index < 0 {
				return nil, fmt.Errorf("condition: invalid placeholder ${%s}", raw)
			}
			tokens = append(tokens, token{kind: tokenPlaceholder, raw: "${" + raw + "}", index: index})
		case '"', '\'':
			quote := consume()
			var b strings.Builder
			closed := false
			for i < len(input) {
				c := consume()
				if c == '\\' && i < len(input) {
					b.WriteByte(consume())
					continue
				}
				if c == quote {
					closed = true
					break
				}
				b.WriteByte(c)
			}
			if !closed {
				return nil, errors.New("condition: unterminated string literal")
			}
			tokens = append(tokens, token{kind: tokenString, raw: b.String()})
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			if raw == "" {
				return nil, fmt.Errorf("condition: unexpected character %q", ch)
			}
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case "null", "undefined":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				if _, err := strconv.ParseFloat(raw, 64); err != nil {
					return nil, fmt.Errorf("condition: unknown identifier %q", raw)
				}
				tokens = append(tokens, token{kind: tokenNumber, raw: raw})
			}
		}
	}

	return tokens, nil
}

func comparison(op byte, orEqual bool) token {
	switch {
	case op == '<' && orEqual:
		return token{kind: tokenLte, raw: "<="}
	case op == '<':
		return token{kind: tokenLt, raw: "<"}
	case orEqual:
		return token{kind: tokenGte, raw: ">="}
	default:
		return token{kind: tokenGt, raw: ">"}
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|', '<', '>', '$', '"', '\'':
		return true
	}
	return false
}

type exprNode interface {
	eval(bindings []string) (bool, error)
}

type exprOr struct {
	left  exprNode
	right exprNode
}

func (n exprOr) eval(bindings []string) (bool, error) {
	ok, err := n.left.eval(bindings)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.eval(bindings)
}

type exprAnd struct {
	left  exprNode
	right exprNode
}

func (n exprAnd) eval(bindings []string) (bool, error) {
	ok, err := n.left.eval(bindings)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.eval(bindings)
}

type exprNot struct {
	inner exprNode
}

func (n exprNot) eval(bindings []string) (bool, error) {
	ok, err := n.inner.eval(bindings)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type operandKind int

const (
	opString operandKind = iota
	opNumber
	opBool
	opNull
	opPlaceholder
)

type operand struct {
	kind  operandKind
	raw   string
	index int
}

// resolve turns a placeholder into the string literal it binds to.
func (o operand) resolve(bindings []string) operand {
	if o.kind != opPlaceholder {
		return o
	}
	return operand{kind: opString, raw: bindings[o.index]}
}

type exprCompare struct {
	left  operand
	op    tokenKind
	right operand
}

func (n exprCompare) eval(bindings []string) (bool, error) {
	left := n.left.resolve(bindings)
	right := n.right.resolve(bindings)

	switch {
	case left.kind == opNull || right.kind == opNull:
		both := isNull(left) == isNull(right)
		return n.equality(both)
	case left.kind == opBool || right.kind == opBool:
		return n.equality(coerceBool(left) == coerceBool(right))
	case left.kind == opNumber || right.kind == opNumber:
		l, lok := coerceNumber(left)
		r, rok := coerceNumber(right)
		if !lok || !rok {
			return n.op == tokenNeq, nil
		}
		return n.order(compareFloat(l, r))
	default:
		if n.op == tokenEq || n.op == tokenNeq {
			return n.equality(left.raw == right.raw)
		}
		l, lok := coerceNumber(left)
		r, rok := coerceNumber(right)
		if lok && rok {
			return n.order(compareFloat(l, r))
		}
		return n.order(strings.Compare(left.raw, right.raw))
	}
}

func (n exprCompare) equality(equal bool) (bool, error) {
	switch n.op {
	case tokenEq:
		return equal, nil
	case tokenNeq:
		return !equal, nil
	}
	return false, fmt.Errorf("condition: operator %q needs ordered operands", n.opString())
}

func (n exprCompare) order(cmp int) (bool, error) {
	switch n.op {
	case tokenEq:
		return cmp == 0, nil
	case tokenNeq:
		return cmp != 0, nil
	case tokenLt:
		return cmp < 0, nil
	case tokenLte:
		return cmp <= 0, nil
	case tokenGt:
		return cmp > 0, nil
	case tokenGte:
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("condition: unsupported operator %q", n.opString())
}

func (n exprCompare) opString() string {
	switch n.op {
	case tokenEq:
		return "=="
	case tokenNeq:
		return "!="
	case tokenLt:
		return "<"
	case tokenLte:
		return "<="
	case tokenGt:
		return ">"
	case tokenGte:
		return ">="
	default:
		return "?"
	}
}

type exprTruthy struct {
	operand operand
}

func (n exprTruthy) eval(bindings []string) (bool, error) {
	return truthy(n.operand.resolve(bindings)), nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseExpression(tokens []token) (exprNode, error) {
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("condition: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

func parseOr(stream *tokenStream) (exprNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("condition: missing closing ')'")
		}
		return inner, nil
	}

	left, err := stream.consumeOperand()
	if err != nil {
		return nil, err
	}
	for _, op := range []tokenKind{tokenEq, tokenNeq, tokenLte, tokenLt, tokenGte, tokenGt} {
		if stream.match(op) {
			right, err := stream.consumeOperand()
			if err != nil {
				return nil, err
			}
			return exprCompare{left: left, op: op, right: right}, nil
		}
	}
	return exprTruthy{operand: left}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) {
		return false
	}
	if s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consumeOperand() (operand, error) {
	if s.pos >= len(s.tokens) {
		return operand{}, errors.New("condition: missing operand")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString:
		return operand{kind: opString, raw: tok.raw}, nil
	case tokenNumber:
		return operand{kind: opNumber, raw: tok.raw}, nil
	case tokenBool:
		return operand{kind: opBool, raw: tok.raw}, nil
	case tokenNull:
		return operand{kind: opNull}, nil
	case tokenPlaceholder:
		return operand{kind: opPlaceholder, index: tok.index}, nil
	default:
		return operand{}, fmt.Errorf("condition: expected operand, got %q", tok.raw)
	}
}

func isNull(o operand) bool {
	return o.kind == opNull || (o.kind == opString && o.raw == "")
}

func truthy(o operand) bool {
	switch o.kind {
	case opBool:
		return o.raw == "true"
	case opNull:
		return false
	case opNumber:
		f, _ := strconv.ParseFloat(o.raw, 64)
		return f != 0
	default:
		return o.raw != ""
	}
}

func coerceBool(o operand) bool {
	if o.kind == opString {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(o.raw)); err == nil {
			return parsed
		}
	}
	return truthy(o)
}

func coerceNumber(o operand) (float64, bool) {
	switch o.kind {
	case opNumber, opString:
		f, err := strconv.ParseFloat(strings.TrimSpace(o.raw), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case opBool:
		if o.raw == "true" {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func compareFloat(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}
