package memory

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ParseTermList parses a list literal of string values, optionally preceded by
// an identifier assignment ("keyterms = [...]"). Only quoted strings are
// accepted inside the brackets; the input is never executed. This replaces the
// obvious-but-dangerous alternative of evaluating model output as code.
func ParseTermList(input string) ([]string, error) {
	p := &termScanner{src: strings.TrimSpace(input)}

	p.skipAssignment()
	terms, err := p.scanList()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("unexpected trailing input at offset %d", p.pos)
	}
	return terms, nil
}

type termScanner struct {
	src string
	pos int
}

func (p *termScanner) eof() bool { return p.pos >= len(p.src) }

func (p *termScanner) peek() byte { return p.src[p.pos] }

func (p *termScanner) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// skipAssignment consumes an optional "<identifier> =" prefix.
func (p *termScanner) skipAssignment() {
	start := p.pos
	p.skipSpace()

	if p.eof() || !(p.peek() == '_' || unicode.IsLetter(rune(p.peek()))) {
		p.pos = start
		return
	}
	for !p.eof() && isIdentChar(p.peek()) {
		p.pos++
	}

	p.skipSpace()
	if p.eof() || p.peek() != '=' {
		p.pos = start
		return
	}
	p.pos++
}

func (p *termScanner) scanList() ([]string, error) {
	p.skipSpace()
	if p.eof() || p.peek() != '[' {
		return nil, errors.New("expected '['")
	}
	p.pos++

	terms := []string{}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, errors.New("unterminated list")
		}
		if p.peek() == ']' {
			p.pos++
			return terms, nil
		}

		if len(terms) > 0 {
			if p.peek() != ',' {
				return nil, fmt.Errorf("expected ',' or ']' at offset %d", p.pos)
			}
			p.pos++
			p.skipSpace()
			// Trailing comma before the closing bracket is fine.
			if !p.eof() && p.peek() == ']' {
				p.pos++
				return terms, nil
			}
		}

		term, err := p.scanString()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
}

func (p *termScanner) scanString() (string, error) {
	if p.eof() || (p.peek() != '"' && p.peek() != '\'') {
		return "", fmt.Errorf("expected string literal at offset %d", p.pos)
	}
	quote := p.peek()
	p.pos++

	var sb strings.Builder
	for !p.eof() {
		c := p.peek()
		p.pos++

		switch c {
		case quote:
			return sb.String(), nil
		case '\\':
			if p.eof() {
				return "", errors.New("unterminated escape sequence")
			}
			esc := p.peek()
			p.pos++
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(esc)
			}
		case '\n':
			return "", errors.New("newline inside string literal")
		default:
			sb.WriteByte(c)
		}
	}
	return "", errors.New("unterminated string literal")
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
