// Package parser implements the recursive-descent C99 front-end (spec.md
// §4.G): single-token lookahead over TSTORE, constructing AST nodes
// through HB and declaring symbols with C99 block scoping.
package parser

import (
	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/diag"
	"github.com/cc99/cc99/internal/nodebuf"
	"github.com/cc99/cc99/internal/sstore"
	"github.com/cc99/cc99/internal/symtab"
	"github.com/cc99/cc99/internal/tstore"
)

const stage = "parse"

// Diagnostic codes. Syntax errors are numbered from 1001, semantic errors
// from 2001.
const (
	codeUnexpectedToken    = 1001
	codeExpectedToken      = 1002
	codeUnterminatedBlock  = 1003
	codeInvalidTypeSpec    = 1004
	codeUndefinedIdentifier = 2001
	codeFuncDefInBlockScope = 2002
)

// Parser drives the token stream into an AST rooted at a PROGRAM node.
type Parser struct {
	toks *tstore.Store
	strs *sstore.Store
	buf  *nodebuf.Buf
	syms *symtab.Store
	sink *diag.Sink

	cur        tstore.Token
	curIdx     uint32
	fileName   string
	scopeDepth uint32
}

// New constructs a parser positioned at the token stream's first token.
func New(toks *tstore.Store, strs *sstore.Store, buf *nodebuf.Buf, syms *symtab.Store, sink *diag.Sink) *Parser {
	p := &Parser{toks: toks, strs: strs, buf: buf, syms: syms, sink: sink}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.curIdx = p.toks.GetIdx()
	p.cur = p.toks.Next()
}

func (p *Parser) loc() diag.Location {
	name := p.fileName
	if name == "" {
		if b, err := p.strs.Get(p.cur.FilePos, nil); err == nil {
			name = string(b)
		}
	}
	return diag.Location{File: name, Line: int(p.cur.SourceLine)}
}

func (p *Parser) identText() ([]byte, error) {
	return p.strs.Get(p.cur.SourcePos, nil)
}

func (p *Parser) expect(kind tstore.Kind) (tstore.Token, bool) {
	if p.cur.Kind == kind {
		t := p.cur
		p.advance()
		return t, true
	}
	p.sink.Syntaxf(stage, codeExpectedToken, p.loc(), "unexpected token, expected kind %d", kind)
	return p.cur, false
}

// ParseProgram implements parse_program(): a PROGRAM node whose Child1
// chains the first external declaration, each subsequent declaration
// chained via the prior one's own Next field — the same chaining
// discipline every other statement/argument/initializer-element list in
// this codebase uses.
func (p *Parser) ParseProgram() (uint32, error) {
	programID, err := p.buf.NewAST(astore.Node{Kind: astore.KindProgram})
	if err != nil {
		return 0, err
	}

	var first, last uint32
	for p.cur.Kind != tstore.EOF {
		progress := p.curIdx
		declID, err := p.parseExternalDeclaration()
		if err != nil {
			return 0, err
		}
		if declID == 0 {
			if p.curIdx == progress {
				p.advance() // guarantee termination: always consume at least one token
			}
			continue
		}
		if first == 0 {
			first = declID
		} else {
			lastNode, err := p.buf.GetAST(last)
			if err != nil {
				return 0, err
			}
			lastNode.Next = declID
			if err := p.buf.TouchAST(last, lastNode); err != nil {
				return 0, err
			}
		}
		// A multi-declarator declaration returns the head of its own Next
		// chain; the next declaration links after that chain's tail.
		for last = declID; ; {
			n, err := p.buf.GetAST(last)
			if err != nil {
				return 0, err
			}
			if n.Next == 0 {
				break
			}
			last = n.Next
		}
	}

	prog, err := p.buf.GetAST(programID)
	if err != nil {
		return 0, err
	}
	prog.Children.Child1 = first
	if err := p.buf.TouchAST(programID, prog); err != nil {
		return 0, err
	}
	return programID, nil
}

// declare appends a symbol at the current scope depth (spec.md §4.G
// declare(name, kind, flags): re-declaration at the same depth is never
// merged, the later entry shadows the earlier one).
func (p *Parser) declare(namePos uint16, kind symtab.Kind, storage symtab.StorageClass) (uint32, error) {
	return p.buf.NewSym(symtab.Symbol{NamePos: namePos, Kind: kind, Storage: storage, ScopeDepth: p.scopeDepth})
}

// resolve implements resolve(name) → symbol-id | 0 against the live
// symbol table (bypassing HB's cache since scope search walks the whole
// table by id, same as symtab.Resolve).
func (p *Parser) resolve(name []byte) (uint32, error) {
	return symtab.Resolve(p.syms, p.strs, name, p.scopeDepth)
}

func isTypeSpecifierStart(k tstore.Kind) bool {
	switch k {
	case tstore.KW_VOID, tstore.KW_CHAR, tstore.KW_SHORT, tstore.KW_INT, tstore.KW_LONG,
		tstore.KW_FLOAT, tstore.KW_DOUBLE, tstore.KW_SIGNED, tstore.KW_UNSIGNED, tstore.KW_BOOL,
		tstore.KW_COMPLEX, tstore.KW_IMAGINARY, tstore.KW_STRUCT, tstore.KW_UNION, tstore.KW_ENUM,
		tstore.KW_TYPEDEF, tstore.KW_EXTERN, tstore.KW_STATIC, tstore.KW_AUTO, tstore.KW_REGISTER,
		tstore.KW_CONST, tstore.KW_VOLATILE, tstore.KW_RESTRICT, tstore.KW_INLINE:
		return true
	}
	return false
}

func (p *Parser) parseExternalDeclaration() (uint32, error) {
	if !isTypeSpecifierStart(p.cur.Kind) {
		p.sink.Syntaxf(stage, codeUnexpectedToken, p.loc(), "expected a declaration")
		return 0, nil
	}
	return p.parseDeclaration()
}
