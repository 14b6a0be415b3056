package reql

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Parse reads a query expression written in chained-call notation, e.g.
//
//	table("users").filter(gt(row("age"), 5)).limit(10)
//
// Bare identifiers become Expr terms; strings, numbers, true, false and
// null become Datum terms.
func Parse(input string) (Term, error) {
	tok := newTokenizer(input)
	tokens, err := tok.tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{
		tokens: tokens,
		tzer:   tok,
	}
	return p.parseQuery()
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level query fixtures.
func MustParse(input string) Term {
	t, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return t
}

// --- Token types ---

type tokenType int

const (
	tokenIdent  tokenType = iota // identifier: letters, digits, underscores
	tokenNumber                  // JSON-style number
	tokenString                  // quoted "..."
	tokenLParen                  // (
	tokenRParen                  // )
	tokenComma                   // ,
	tokenDot                     // .
	tokenEOF
)

func tokenTypeName(t tokenType) string {
	switch t {
	case tokenIdent:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenComma:
		return "','"
	case tokenDot:
		return "'.'"
	case tokenEOF:
		return "end of input"
	default:
		return "unknown"
	}
}

type token struct {
	typ tokenType
	val string
	pos int // byte offset in input
}

// --- Tokenizer ---

type tokenizer struct {
	input      string
	pos        int
	tokens     []token
	lineStarts []int // byte offsets where each line starts
}

func newTokenizer(input string) *tokenizer {
	t := &tokenizer{
		input:      input,
		lineStarts: []int{0},
	}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			t.lineStarts = append(t.lineStarts, i+1)
		}
	}
	return t
}

// posAt converts a byte offset into a Pos with line and column.
func (t *tokenizer) posAt(offset int) Pos {
	line := sort.Search(len(t.lineStarts), func(i int) bool {
		return t.lineStarts[i] > offset
	})
	col := offset - t.lineStarts[line-1] + 1
	return Pos{Offset: offset, Line: line, Column: col}
}

func (t *tokenizer) tokenize() ([]token, error) {
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			t.pos++
			continue
		}
		switch {
		case ch == '(':
			t.emit(tokenLParen, "(")
		case ch == ')':
			t.emit(tokenRParen, ")")
		case ch == ',':
			t.emit(tokenComma, ",")
		case ch == '.':
			t.emit(tokenDot, ".")
		case ch == '"':
			if err := t.readString(); err != nil {
				return nil, err
			}
		case isDigit(ch) || (ch == '-' && t.pos+1 < len(t.input) && isDigit(t.input[t.pos+1])):
			if err := t.readNumber(); err != nil {
				return nil, err
			}
		case isIdentStart(ch):
			t.readIdent()
		default:
			return nil, &ParseError{
				Message: fmt.Sprintf("unexpected character %q", string(ch)),
				Pos:     t.posAt(t.pos),
				Got:     string(ch),
			}
		}
	}
	t.tokens = append(t.tokens, token{typ: tokenEOF, pos: t.pos})
	return t.tokens, nil
}

func (t *tokenizer) emit(typ tokenType, val string) {
	t.tokens = append(t.tokens, token{typ: typ, val: val, pos: t.pos})
	t.pos++
}

// readString scans to the closing quote and decodes the literal with Go
// string escape rules, the same rules Datum uses to render strings.
func (t *tokenizer) readString() error {
	startPos := t.pos
	t.pos++ // skip opening quote
	for t.pos < len(t.input) {
		switch t.input[t.pos] {
		case '\\':
			t.pos += 2
			continue
		case '"':
			t.pos++
			lit := t.input[startPos:t.pos]
			val, err := strconv.Unquote(lit)
			if err != nil {
				return &ParseError{
					Message: "invalid string literal",
					Pos:     t.posAt(startPos),
					Got:     lit,
				}
			}
			t.tokens = append(t.tokens, token{typ: tokenString, val: val, pos: startPos})
			return nil
		}
		t.pos++
	}
	return &ParseError{
		Message: "unterminated string literal",
		Pos:     t.posAt(startPos),
		Got:     t.input[startPos:],
	}
}

// readNumber consumes a number. A '.' belongs to the number only when a
// digit follows it, so 5.add(1) reads as a call on 5.
func (t *tokenizer) readNumber() error {
	start := t.pos
	t.pos++
scan:
	for ; t.pos < len(t.input); t.pos++ {
		ch := t.input[t.pos]
		switch {
		case isDigit(ch), ch == 'e', ch == 'E':
		case ch == '+' || ch == '-':
			if prev := t.input[t.pos-1]; prev != 'e' && prev != 'E' {
				break scan
			}
		case ch == '.':
			if t.pos+1 >= len(t.input) || !isDigit(t.input[t.pos+1]) {
				break scan
			}
		default:
			break scan
		}
	}
	val := t.input[start:t.pos]
	if _, err := strconv.ParseFloat(val, 64); err != nil {
		return &ParseError{
			Message: "malformed number",
			Pos:     t.posAt(start),
			Got:     val,
		}
	}
	t.tokens = append(t.tokens, token{typ: tokenNumber, val: val, pos: start})
	return nil
}

func (t *tokenizer) readIdent() {
	start := t.pos
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.pos++
	}
	t.tokens = append(t.tokens, token{typ: tokenIdent, val: t.input[start:t.pos], pos: start})
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// --- Recursive Descent Parser ---

type parser struct {
	tokens []token
	pos    int
	tzer   *tokenizer
}

func (p *parser) peek() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.tzer.input)}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.peek()
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ tokenType) (token, error) {
	tok := p.advance()
	if tok.typ != typ {
		return tok, p.errorAt(tok, fmt.Sprintf("expected %s", tokenTypeName(typ)), tokenTypeName(typ))
	}
	return tok, nil
}

func (p *parser) errorAt(tok token, msg, expected string) *ParseError {
	got := tok.val
	if tok.typ == tokenEOF {
		got = "end of input"
	}
	return &ParseError{
		Message:  msg,
		Pos:      p.tzer.posAt(tok.pos),
		Got:      got,
		Expected: expected,
	}
}

// parseQuery parses a single expression followed by end of input.
func (p *parser) parseQuery() (Term, error) {
	if p.peek().typ == tokenEOF {
		return nil, &ParseError{
			Message: "empty query",
			Pos:     p.tzer.posAt(p.peek().pos),
			Got:     "end of input",
		}
	}
	term, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokenEOF {
		return nil, p.errorAt(tok, "expected '.' or end of input", "'.' or end of input")
	}
	return term, nil
}

// parseExpr parses: primary ('.' ident '(' args? ')')*
func (p *parser) parseExpr() (Term, error) {
	term, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokenDot {
		p.advance()
		opTok, err := p.expect(tokenIdent)
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		term = &Call{Op: opTok.val, Receiver: term, Args: args}
	}
	return term, nil
}

// parsePrimary parses: ident '(' args? ')' | ident | number | string
func (p *parser) parsePrimary() (Term, error) {
	tok := p.advance()
	switch tok.typ {
	case tokenNumber:
		return Datum{Value: json.Number(tok.val)}, nil
	case tokenString:
		return Datum{Value: tok.val}, nil
	case tokenIdent:
		if p.peek().typ == tokenLParen {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &Call{Op: tok.val, Args: args}, nil
		}
		switch tok.val {
		case "true":
			return Datum{Value: true}, nil
		case "false":
			return Datum{Value: false}, nil
		case "null":
			return Datum{}, nil
		}
		return Expr(tok.val), nil
	default:
		return nil, p.errorAt(tok, "expected expression", "identifier, number or string")
	}
}

// parseArgs parses: '(' (expr (',' expr)*)? ')'
func (p *parser) parseArgs() ([]Term, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	var args []Term
	if p.peek().typ == tokenRParen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().typ != tokenComma {
			break
		}
		p.advance() // consume comma
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}
