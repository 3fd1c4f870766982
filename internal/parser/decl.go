package parser

import (
	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/symtab"
	"github.com/cc99/cc99/internal/tstore"
)

// typeSpec is the result of folding a declaration's type-specifier tokens
// through the small state machine spec.md §4.G describes. Struct/union/enum
// member lists are skipped by balanced-brace counting; full record parsing
// is deferred to a later pass, matching the declared non-goal of full C99
// type-checking.
type typeSpec struct {
	base    tstore.Kind // 0 (EOF) if no base type keyword was seen
	storage symtab.StorageClass
	valid   bool
}

// parseTypeSpecifiers consumes the declaration's leading specifier/qualifier
// tokens and validates the combinations spec.md §4.G names: at most one base
// type, at most one of {signed, unsigned}, short XOR long[1..2], at most one
// storage class; inline/restrict/const/volatile/_Complex/_Imaginary are
// independent flags and impose no combination limit.
func (p *Parser) parseTypeSpecifiers() typeSpec {
	ts := typeSpec{valid: true}
	sawSignedness := false
	longCount := 0
	sawShort := false
	storageSeen := false

	for {
		switch p.cur.Kind {
		case tstore.KW_VOID, tstore.KW_CHAR, tstore.KW_INT, tstore.KW_FLOAT, tstore.KW_DOUBLE, tstore.KW_BOOL:
			if ts.base != 0 {
				ts.valid = false
			}
			ts.base = p.cur.Kind
			p.advance()
		case tstore.KW_STRUCT, tstore.KW_UNION, tstore.KW_ENUM:
			if ts.base != 0 {
				ts.valid = false
			}
			ts.base = p.cur.Kind
			p.advance()
			if p.cur.Kind == tstore.IDENT {
				p.advance() // tag name
			}
			p.skipBalancedBraceBody()
		case tstore.KW_SIGNED, tstore.KW_UNSIGNED:
			if sawSignedness {
				ts.valid = false
			}
			sawSignedness = true
			p.advance()
		case tstore.KW_SHORT:
			if sawShort || longCount > 0 {
				ts.valid = false
			}
			sawShort = true
			p.advance()
		case tstore.KW_LONG:
			longCount++
			if longCount > 2 || sawShort {
				ts.valid = false
			}
			p.advance()
		case tstore.KW_TYPEDEF:
			if storageSeen {
				ts.valid = false
			}
			storageSeen = true
			ts.storage = symtab.StorageTypedef
			p.advance()
		case tstore.KW_EXTERN:
			if storageSeen {
				ts.valid = false
			}
			storageSeen = true
			ts.storage = symtab.StorageExtern
			p.advance()
		case tstore.KW_STATIC:
			if storageSeen {
				ts.valid = false
			}
			storageSeen = true
			ts.storage = symtab.StorageStatic
			p.advance()
		case tstore.KW_AUTO:
			if storageSeen {
				ts.valid = false
			}
			storageSeen = true
			ts.storage = symtab.StorageAuto
			p.advance()
		case tstore.KW_REGISTER:
			if storageSeen {
				ts.valid = false
			}
			storageSeen = true
			ts.storage = symtab.StorageRegister
			p.advance()
		case tstore.KW_CONST, tstore.KW_VOLATILE, tstore.KW_RESTRICT, tstore.KW_INLINE,
			tstore.KW_COMPLEX, tstore.KW_IMAGINARY:
			p.advance() // independent flags, not modeled further
		default:
			if ts.base == 0 && !sawShort && longCount == 0 && !sawSignedness {
				ts.valid = false
			}
			return ts
		}
	}
}

func (p *Parser) skipBalancedBraceBody() {
	if p.cur.Kind != tstore.LBRACE {
		return
	}
	depth := 0
	for {
		switch p.cur.Kind {
		case tstore.LBRACE:
			depth++
		case tstore.RBRACE:
			depth--
		case tstore.EOF:
			p.sink.Syntaxf(stage, codeUnterminatedBlock, p.loc(), "unterminated struct/union/enum body")
			return
		}
		p.advance()
		if depth == 0 {
			return
		}
	}
}

// declarator is a pointer-prefixed, array-suffixed name. Pointer depth and
// array dimensions are consumed but not separately modeled: full type
// representation is out of scope (spec.md §1 non-goals).
type declarator struct {
	namePos  uint16
	nameTok  tstore.Token
	pointers int
}

func (p *Parser) parseDeclarator() (declarator, bool) {
	ptrs := 0
	for p.cur.Kind == tstore.STAR {
		ptrs++
		p.advance()
		for p.cur.Kind == tstore.KW_CONST || p.cur.Kind == tstore.KW_VOLATILE || p.cur.Kind == tstore.KW_RESTRICT {
			p.advance()
		}
	}
	nameTok, ok := p.expect(tstore.IDENT)
	if !ok {
		return declarator{}, false
	}
	for p.cur.Kind == tstore.LBRACKET {
		p.advance()
		if p.cur.Kind != tstore.RBRACKET {
			if _, err := p.parseExpression(); err != nil {
				return declarator{}, false
			}
		}
		p.expect(tstore.RBRACKET)
	}
	return declarator{namePos: nameTok.SourcePos, nameTok: nameTok, pointers: ptrs}, true
}

// parseDeclaration implements ParseSpec → ParseDeclarator →
// {FuncDef | FuncDecl | VarDecl(init?)} → MaybeComma | Semicolon.
func (p *Parser) parseDeclaration() (uint32, error) {
	ts := p.parseTypeSpecifiers()
	if !ts.valid {
		p.sink.Syntaxf(stage, codeInvalidTypeSpec, p.loc(), "invalid type-specifier combination")
		p.syncToSemicolon()
		return 0, nil
	}

	decl, ok := p.parseDeclarator()
	if !ok {
		p.syncToSemicolon()
		return 0, nil
	}

	if p.cur.Kind == tstore.LPAREN {
		return p.parseFunctionRest(ts, decl)
	}
	return p.parseVarDeclRest(ts, decl)
}

func (p *Parser) syncToSemicolon() {
	for p.cur.Kind != tstore.SEMI && p.cur.Kind != tstore.EOF {
		p.advance()
	}
	if p.cur.Kind == tstore.SEMI {
		p.advance()
	}
}

func (p *Parser) parseFunctionRest(ts typeSpec, d declarator) (uint32, error) {
	if p.scopeDepth != 0 {
		p.sink.Semanticf(stage, codeFuncDefInBlockScope, p.loc(), "function definition in block scope")
	}
	p.expect(tstore.LPAREN)
	var params []declarator
	for p.cur.Kind != tstore.RPAREN && p.cur.Kind != tstore.EOF {
		if p.cur.Kind == tstore.ELLIPSIS {
			p.advance()
			break
		}
		p.parseTypeSpecifiers()
		pd, ok := p.parseDeclarator()
		if ok {
			params = append(params, pd)
		}
		if p.cur.Kind == tstore.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(tstore.RPAREN)

	funcID, err := p.declare(d.namePos, symtab.KindFunction, ts.storage)
	if err != nil {
		return 0, err
	}

	if p.cur.Kind == tstore.LBRACE {
		p.scopeDepth = 1
		for _, pd := range params {
			if _, err := p.declare(pd.namePos, symtab.KindVariable, symtab.StorageNone); err != nil {
				return 0, err
			}
		}
		bodyID, err := p.parseFunctionBodyStatements()
		if err != nil {
			return 0, err
		}
		p.scopeDepth = 0

		defID, err := p.buf.NewAST(astore.Node{
			Kind: astore.KindFunctionDef,
			Decl: astore.DeclPayload{SymbolIdx: funcID, Initializer: bodyID, StorageClass: uint16(ts.storage)},
		})
		return defID, err
	}

	p.expect(tstore.SEMI)
	return p.buf.NewAST(astore.Node{
		Kind: astore.KindFunctionDecl,
		Decl: astore.DeclPayload{SymbolIdx: funcID, StorageClass: uint16(ts.storage)},
	})
}

// parseFunctionBodyStatements consumes the function's outer `{ ... }`
// without incrementing scope again: the function's parameters and its own
// top-level locals both live at scope_depth 1 (spec.md §4.G).
func (p *Parser) parseFunctionBodyStatements() (uint32, error) {
	p.expect(tstore.LBRACE)
	head, err := p.parseStatementList(tstore.RBRACE)
	if err != nil {
		return 0, err
	}
	p.expect(tstore.RBRACE)
	return p.buf.NewAST(astore.Node{
		Kind:     astore.KindCompoundStmt,
		Compound: astore.CompoundPayload{Statements: head, ScopeDepth: p.scopeDepth},
	})
}

func (p *Parser) parseVarDeclRest(ts typeSpec, first declarator) (uint32, error) {
	var head, lastDecl uint32
	d := first
	for {
		symID, err := p.declare(d.namePos, symtab.KindVariable, ts.storage)
		if err != nil {
			return 0, err
		}
		var initID uint32
		if p.cur.Kind == tstore.ASSIGN {
			p.advance()
			initID, err = p.parseInitializer()
			if err != nil {
				return 0, err
			}
		}
		declID, err := p.buf.NewAST(astore.Node{
			Kind: astore.KindVarDecl,
			Decl: astore.DeclPayload{SymbolIdx: symID, Initializer: initID, StorageClass: uint16(ts.storage)},
		})
		if err != nil {
			return 0, err
		}
		if head == 0 {
			head = declID
		} else {
			prev, err := p.buf.GetAST(lastDecl)
			if err != nil {
				return 0, err
			}
			prev.Next = declID
			if err := p.buf.TouchAST(lastDecl, prev); err != nil {
				return 0, err
			}
		}
		lastDecl = declID

		if p.cur.Kind != tstore.COMMA {
			break
		}
		p.advance()
		nd, ok := p.parseDeclarator()
		if !ok {
			break
		}
		d = nd
	}
	p.expect(tstore.SEMI)
	return head, nil
}

// parseInitializer handles both a plain assignment expression and a
// brace-enclosed initializer list (with designated initializers and a
// permitted trailing comma).
func (p *Parser) parseInitializer() (uint32, error) {
	if p.cur.Kind != tstore.LBRACE {
		return p.parseAssignment()
	}
	p.advance()
	var head, last uint32
	for p.cur.Kind != tstore.RBRACE && p.cur.Kind != tstore.EOF {
		elemID, err := p.parseInitializerElement()
		if err != nil {
			return 0, err
		}
		if head == 0 {
			head = elemID
		} else {
			prev, err := p.buf.GetAST(last)
			if err != nil {
				return 0, err
			}
			prev.Next = elemID
			if err := p.buf.TouchAST(last, prev); err != nil {
				return 0, err
			}
		}
		last = elemID
		if p.cur.Kind == tstore.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(tstore.RBRACE)
	return p.buf.NewAST(astore.Node{
		Kind:     astore.KindInitializer,
		Compound: astore.CompoundPayload{Statements: head},
	})
}

func (p *Parser) parseInitializerElement() (uint32, error) {
	switch p.cur.Kind {
	case tstore.DOT:
		p.advance()
		nameTok, _ := p.expect(tstore.IDENT)
		p.expect(tstore.ASSIGN)
		valID, err := p.parseInitializer()
		if err != nil {
			return 0, err
		}
		return p.buf.NewAST(astore.Node{
			Kind:     astore.KindDesignatedField,
			Children: astore.ChildrenPayload{Child2: valID, NamePos: nameTok.SourcePos},
		})
	case tstore.LBRACKET:
		p.advance()
		keyID, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		p.expect(tstore.RBRACKET)
		p.expect(tstore.ASSIGN)
		valID, err := p.parseInitializer()
		if err != nil {
			return 0, err
		}
		return p.buf.NewAST(astore.Node{
			Kind:     astore.KindDesignatedIndex,
			Children: astore.ChildrenPayload{Child1: keyID, Child2: valID},
		})
	default:
		return p.parseInitializer()
	}
}
