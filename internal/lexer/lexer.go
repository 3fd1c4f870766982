// Package lexer is the reference C99 lexer: the external collaborator
// spec.md's core treats as out of scope but which cc0/cc1 need to turn
// source text into TSTORE + SSTORE. It interns every identifier, literal,
// and file name it sees and appends one token per lexeme.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/cc99/cc99/internal/sstore"
	"github.com/cc99/cc99/internal/tstore"
)

// Lex scans src (attributed to fileName for diagnostics) and appends one
// token per lexeme to toks, interning identifier/literal text and the file
// name into strs. Returns the number of tokens appended, including the
// trailing EOF.
func Lex(src []byte, fileName string, strs *sstore.Store, toks *tstore.Store) (int, error) {
	filePos, err := strs.Intern([]byte(fileName))
	if err != nil {
		return 0, err
	}
	l := &lexer{src: src, strs: strs, toks: toks, filePos: filePos, line: 1}
	return l.run()
}

type lexer struct {
	src     []byte
	pos     int
	line    uint16
	strs    *sstore.Store
	toks    *tstore.Store
	filePos uint16
	count   int
}

func (l *lexer) run() (int, error) {
	for {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.src) {
			if err := l.emit(tstore.EOF, nil); err != nil {
				return l.count, err
			}
			return l.count, nil
		}
		if err := l.scanOne(); err != nil {
			return l.count, err
		}
	}
}

func (l *lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.pos += 2
			for l.pos+1 < len(l.src) && !(l.src[l.pos] == '*' && l.src[l.pos+1] == '/') {
				if l.src[l.pos] == '\n' {
					l.line++
				}
				l.pos++
			}
			l.pos += 2
		default:
			return
		}
	}
}

func (l *lexer) emit(kind tstore.Kind, text []byte) error {
	var pos uint16
	if text != nil {
		p, err := l.strs.Intern(text)
		if err != nil {
			return err
		}
		pos = p
	}
	_, err := l.toks.Append(tstore.Token{Kind: kind, SourcePos: pos, FilePos: l.filePos, SourceLine: l.line})
	if err != nil {
		return err
	}
	l.count++
	return nil
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentCont(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

func (l *lexer) scanOne() error {
	start := l.pos
	r, size := utf8.DecodeRune(l.src[l.pos:])

	switch {
	case isIdentStart(r):
		for l.pos < len(l.src) {
			rr, sz := utf8.DecodeRune(l.src[l.pos:])
			if !isIdentCont(rr) {
				break
			}
			l.pos += sz
		}
		word := l.src[start:l.pos]
		if kw, ok := tstore.Keywords[string(word)]; ok {
			return l.emit(kw, word)
		}
		return l.emit(tstore.IDENT, word)

	case unicode.IsDigit(r):
		return l.scanNumber(start)

	case r == '"':
		return l.scanString()

	case r == '\'':
		return l.scanChar()

	default:
		l.pos += size
		return l.scanPunct(r)
	}
}

func (l *lexer) scanNumber(start int) error {
	isFloat := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' && !isFloat {
			isFloat = true
			l.pos++
			continue
		}
		if (c == 'x' || c == 'X') && l.pos == start+1 && l.src[start] == '0' {
			l.pos++
			for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
				l.pos++
			}
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	if isFloat {
		return l.emit(tstore.FLOAT_LIT, text)
	}
	return l.emit(tstore.INT_LIT, text)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *lexer) scanString() error {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
			l.pos++
		}
		l.pos++
	}
	if l.pos < len(l.src) {
		l.pos++ // closing quote
	}
	return l.emit(tstore.STRING_LIT, l.src[start+1:max(start+1, l.pos-1)])
}

func (l *lexer) scanChar() error {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) && l.src[l.pos] != '\'' {
		if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
			l.pos++
		}
		l.pos++
	}
	if l.pos < len(l.src) {
		l.pos++
	}
	return l.emit(tstore.CHAR_LIT, l.src[start+1:max(start+1, l.pos-1)])
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (l *lexer) scanPunct(r rune) error {
	two := func(next byte, kind tstore.Kind, single tstore.Kind) (tstore.Kind, error) {
		if l.pos < len(l.src) && l.src[l.pos] == next {
			l.pos++
			return kind, nil
		}
		return single, nil
	}
	var kind tstore.Kind
	var err error
	switch r {
	case '(':
		kind = tstore.LPAREN
	case ')':
		kind = tstore.RPAREN
	case '{':
		kind = tstore.LBRACE
	case '}':
		kind = tstore.RBRACE
	case '[':
		kind = tstore.LBRACKET
	case ']':
		kind = tstore.RBRACKET
	case ';':
		kind = tstore.SEMI
	case ',':
		kind = tstore.COMMA
	case '?':
		kind = tstore.QUESTION
	case ':':
		kind = tstore.COLON
	case '~':
		kind = tstore.TILDE
	case '.':
		if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] == '.' {
			l.pos += 2
			kind = tstore.ELLIPSIS
		} else {
			kind = tstore.DOT
		}
	case '+':
		if l.pos < len(l.src) && l.src[l.pos] == '+' {
			l.pos++
			kind = tstore.INCR
		} else {
			kind, err = two('=', tstore.PLUS_ASSIGN, tstore.PLUS)
		}
	case '-':
		switch {
		case l.pos < len(l.src) && l.src[l.pos] == '-':
			l.pos++
			kind = tstore.DECR
		case l.pos < len(l.src) && l.src[l.pos] == '>':
			l.pos++
			kind = tstore.ARROW
		default:
			kind, err = two('=', tstore.MINUS_ASSIGN, tstore.MINUS)
		}
	case '*':
		kind, err = two('=', tstore.STAR_ASSIGN, tstore.STAR)
	case '/':
		kind, err = two('=', tstore.SLASH_ASSIGN, tstore.SLASH)
	case '%':
		kind, err = two('=', tstore.PERCENT_ASSIGN, tstore.PERCENT)
	case '=':
		kind, err = two('=', tstore.EQ, tstore.ASSIGN)
	case '!':
		kind, err = two('=', tstore.NEQ, tstore.NOT)
	case '<':
		switch {
		case l.pos < len(l.src) && l.src[l.pos] == '<':
			l.pos++
			kind = tstore.SHL
		case l.pos < len(l.src) && l.src[l.pos] == '=':
			l.pos++
			kind = tstore.LE
		default:
			kind = tstore.LT
		}
	case '>':
		switch {
		case l.pos < len(l.src) && l.src[l.pos] == '>':
			l.pos++
			kind = tstore.SHR
		case l.pos < len(l.src) && l.src[l.pos] == '=':
			l.pos++
			kind = tstore.GE
		default:
			kind = tstore.GT
		}
	case '&':
		if l.pos < len(l.src) && l.src[l.pos] == '&' {
			l.pos++
			kind = tstore.ANDAND
		} else {
			kind = tstore.AMP
		}
	case '|':
		if l.pos < len(l.src) && l.src[l.pos] == '|' {
			l.pos++
			kind = tstore.OROR
		} else {
			kind = tstore.PIPE
		}
	case '^':
		kind = tstore.CARET
	default:
		kind = tstore.ILLEGAL
	}
	if err != nil {
		return err
	}
	return l.emit(kind, nil)
}
