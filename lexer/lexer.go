// Package lexer scans formula text (the part of a cell's raw value after the
// leading '=') into a token stream for the parser.
package lexer

import (
	"strings"

	"liveledger/token"
)

type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token in the input. A reference or range
// (A1, A1:C3) is recognised here rather than left to the parser: it's a
// letter-run followed by a digit-run, optionally followed by ':' and another
// such pair. A letter run with no following digit is a function identifier.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	startColumn := l.column
	var tok token.Token

	switch l.ch {
	case '+':
		tok = token.Token{Type: token.PLUS, Literal: "+"}
	case '-':
		tok = token.Token{Type: token.MINUS, Literal: "-"}
	case '*':
		tok = token.Token{Type: token.ASTERISK, Literal: "*"}
	case '/':
		tok = token.Token{Type: token.SLASH, Literal: "/"}
	case '(':
		tok = token.Token{Type: token.LPAREN, Literal: "("}
	case ')':
		tok = token.Token{Type: token.RPAREN, Literal: ")"}
	case ',':
		tok = token.Token{Type: token.COMMA, Literal: ","}
	case '=':
		tok = token.Token{Type: token.EQ, Literal: "="}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = token.Token{Type: token.LE, Literal: "<="}
		case '>':
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Literal: "<>"}
		default:
			tok = token.Token{Type: token.LT, Literal: "<"}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GE, Literal: ">="}
		} else {
			tok = token.Token{Type: token.GT, Literal: ">"}
		}
	case '"':
		tok = token.Token{Type: token.STRING, Literal: l.readString()}
		tok.Column = startColumn
		l.readChar() // skip closing quote (readString stops on it or EOF)
		return tok
	case 0:
		tok = token.Token{Type: token.EOF, Literal: ""}
	default:
		switch {
		case isLetter(l.ch):
			lit := l.readRefOrIdent()
			tok.Column = startColumn
			if looksLikeRef(lit) {
				tok.Type, tok.Literal = token.REF, lit
			} else {
				tok.Type, tok.Literal = token.IDENT, strings.ToUpper(lit)
			}
			return tok
		case isDigit(l.ch):
			tok = token.Token{Type: token.NUMBER, Literal: l.readNumber()}
			tok.Column = startColumn
			return tok
		default:
			tok = token.Token{Type: token.ILLEGAL, Literal: string(l.ch)}
		}
	}

	tok.Column = startColumn
	l.readChar()
	return tok
}

// readRefOrIdent consumes a letter run, then (if immediately followed by a
// digit) the digit run and an optional ':' + letter-run + digit-run, giving
// a full cell reference or range.
func (l *Lexer) readRefOrIdent() string {
	start := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	if !isDigit(l.ch) {
		return l.input[start:l.position]
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == ':' && isLetter(l.peekChar()) {
		l.readChar() // consume ':'
		for isLetter(l.ch) {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

// looksLikeRef reports whether lit is letters-then-digits (A1, AB23, A1:C3),
// as opposed to a bare function identifier (SUM).
func looksLikeRef(lit string) bool {
	i := 0
	for i < len(lit) && isLetter(lit[i]) {
		i++
	}
	return i > 0 && i < len(lit) && isDigit(lit[i])
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || isSign(l.peekChar())) {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

func (l *Lexer) readString() string {
	l.readChar() // skip opening quote
	var out strings.Builder
	for l.ch != '"' && l.ch != 0 {
		out.WriteByte(l.ch)
		l.readChar()
	}
	return out.String()
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isSign(ch byte) bool {
	return ch == '+' || ch == '-'
}
