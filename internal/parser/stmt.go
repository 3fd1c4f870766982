package parser

import (
	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/tstore"
)

// parseStatementList parses statements (declarations interleaved freely,
// per C99) until it sees stopAt or EOF, chaining each item via its own
// Next field, and returns the chain head id (0 if empty).
func (p *Parser) parseStatementList(stopAt tstore.Kind) (uint32, error) {
	var head, last uint32
	for p.cur.Kind != stopAt && p.cur.Kind != tstore.EOF {
		progress := p.curIdx
		var id uint32
		var err error
		if isTypeSpecifierStart(p.cur.Kind) {
			id, err = p.parseDeclaration()
		} else {
			id, err = p.parseStatement()
		}
		if err != nil {
			return 0, err
		}
		if id == 0 {
			if p.curIdx == progress {
				p.advance()
			}
			continue
		}
		if head == 0 {
			head = id
		} else {
			prev, err := p.buf.GetAST(last)
			if err != nil {
				return 0, err
			}
			prev.Next = id
			if err := p.buf.TouchAST(last, prev); err != nil {
				return 0, err
			}
		}
		// A multi-declarator declaration returns the head of its own Next
		// chain; the next item links after that chain's tail.
		for last = id; ; {
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
	return head, nil
}

// parseCompoundStatement parses a `{ ... }` block, opening a new scope
// (spec.md §4.G: nested blocks increment scope_depth beyond the function's
// own outer brace, which is special-cased in parseFunctionBodyStatements).
func (p *Parser) parseCompoundStatement() (uint32, error) {
	p.expect(tstore.LBRACE)
	p.scopeDepth++
	depth := p.scopeDepth
	head, err := p.parseStatementList(tstore.RBRACE)
	p.scopeDepth--
	if err != nil {
		return 0, err
	}
	p.expect(tstore.RBRACE)
	return p.buf.NewAST(astore.Node{
		Kind:     astore.KindCompoundStmt,
		Compound: astore.CompoundPayload{Statements: head, ScopeDepth: depth},
	})
}

func (p *Parser) parseStatement() (uint32, error) {
	switch p.cur.Kind {
	case tstore.LBRACE:
		return p.parseCompoundStatement()
	case tstore.KW_IF:
		return p.parseIf()
	case tstore.KW_WHILE:
		return p.parseWhile()
	case tstore.KW_DO:
		return p.parseDoWhile()
	case tstore.KW_FOR:
		return p.parseFor()
	case tstore.KW_RETURN:
		return p.parseReturn()
	case tstore.KW_BREAK:
		p.advance()
		p.expect(tstore.SEMI)
		return p.buf.NewAST(astore.Node{Kind: astore.KindBreakStmt})
	case tstore.KW_CONTINUE:
		p.advance()
		p.expect(tstore.SEMI)
		return p.buf.NewAST(astore.Node{Kind: astore.KindContinueStmt})
	case tstore.KW_GOTO:
		p.advance()
		nameTok, ok := p.expect(tstore.IDENT)
		p.expect(tstore.SEMI)
		if !ok {
			return 0, nil
		}
		return p.buf.NewAST(astore.Node{Kind: astore.KindGotoStmt, Children: astore.ChildrenPayload{NamePos: nameTok.SourcePos}})
	case tstore.KW_SWITCH:
		return p.parseSwitch()
	case tstore.KW_CASE:
		return p.parseCase()
	case tstore.KW_DEFAULT:
		return p.parseDefault()
	case tstore.SEMI:
		p.advance()
		return 0, nil
	case tstore.IDENT:
		if next := p.peekIsLabelColon(); next {
			return p.parseLabel()
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
}

// peekIsLabelColon reports whether the current IDENT is immediately
// followed by ':', i.e. a label definition rather than an expression.
func (p *Parser) peekIsLabelColon() bool {
	save := p.toks.GetIdx()
	next := p.toks.Get(save)
	is := next.Kind == tstore.COLON
	return is
}

func (p *Parser) parseLabel() (uint32, error) {
	nameTok := p.cur
	p.advance() // identifier
	p.expect(tstore.COLON)
	return p.buf.NewAST(astore.Node{Kind: astore.KindLabelStmt, Children: astore.ChildrenPayload{NamePos: nameTok.SourcePos}})
}

func (p *Parser) parseExprStatement() (uint32, error) {
	exprID, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.SEMI)
	return p.buf.NewAST(astore.Node{Kind: astore.KindExprStmt, Unary: astore.UnaryPayload{Operand: exprID}})
}

func (p *Parser) parseIf() (uint32, error) {
	p.advance()
	p.expect(tstore.LPAREN)
	cond, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.RPAREN)
	thenID, err := p.parseStatement()
	if err != nil {
		return 0, err
	}
	var elseID uint32
	if p.cur.Kind == tstore.KW_ELSE {
		p.advance()
		elseID, err = p.parseStatement()
		if err != nil {
			return 0, err
		}
	}
	return p.buf.NewAST(astore.Node{
		Kind:        astore.KindIfStmt,
		Conditional: astore.ConditionalPayload{Condition: cond, Then: thenID, Else: elseID},
	})
}

func (p *Parser) parseWhile() (uint32, error) {
	p.advance()
	p.expect(tstore.LPAREN)
	cond, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.RPAREN)
	body, err := p.parseStatement()
	if err != nil {
		return 0, err
	}
	return p.buf.NewAST(astore.Node{
		Kind:        astore.KindWhileStmt,
		Conditional: astore.ConditionalPayload{Condition: cond, Then: body},
	})
}

func (p *Parser) parseDoWhile() (uint32, error) {
	p.advance()
	body, err := p.parseStatement()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.KW_WHILE)
	p.expect(tstore.LPAREN)
	cond, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.RPAREN)
	p.expect(tstore.SEMI)
	return p.buf.NewAST(astore.Node{
		Kind:        astore.KindDoWhileStmt,
		Conditional: astore.ConditionalPayload{Condition: cond, Then: body},
	})
}

func (p *Parser) parseFor() (uint32, error) {
	p.advance()
	p.expect(tstore.LPAREN)

	p.scopeDepth++
	depth := p.scopeDepth

	var initID uint32
	var err error
	switch {
	case p.cur.Kind == tstore.SEMI:
		p.advance()
	case isTypeSpecifierStart(p.cur.Kind):
		initID, err = p.parseDeclaration() // consumes its own trailing ';'
	default:
		initID, err = p.parseExpression()
		p.expect(tstore.SEMI)
	}
	if err != nil {
		p.scopeDepth--
		return 0, err
	}

	var condID uint32
	if p.cur.Kind != tstore.SEMI {
		condID, err = p.parseExpression()
		if err != nil {
			p.scopeDepth--
			return 0, err
		}
	}
	p.expect(tstore.SEMI)

	var postID uint32
	if p.cur.Kind != tstore.RPAREN {
		postID, err = p.parseExpression()
		if err != nil {
			p.scopeDepth--
			return 0, err
		}
	}
	p.expect(tstore.RPAREN)

	body, err := p.parseStatement()
	p.scopeDepth--
	if err != nil {
		return 0, err
	}

	return p.buf.NewAST(astore.Node{
		Kind: astore.KindForStmt,
		Children: astore.ChildrenPayload{
			Child1: initID, Child2: condID, Child3: postID, Child4: body,
		},
		Compound: astore.CompoundPayload{ScopeDepth: depth},
	})
}

func (p *Parser) parseReturn() (uint32, error) {
	p.advance()
	if p.cur.Kind == tstore.SEMI {
		p.advance()
		return p.buf.NewAST(astore.Node{Kind: astore.KindReturnStmt})
	}
	exprID, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.SEMI)
	return p.buf.NewAST(astore.Node{Kind: astore.KindReturnStmt, Unary: astore.UnaryPayload{Operand: exprID}})
}

func (p *Parser) parseSwitch() (uint32, error) {
	p.advance()
	p.expect(tstore.LPAREN)
	ctrl, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.RPAREN)
	body, err := p.parseStatement()
	if err != nil {
		return 0, err
	}
	return p.buf.NewAST(astore.Node{
		Kind:     astore.KindSwitchStmt,
		Compound: astore.CompoundPayload{Declarations: ctrl, Statements: body},
	})
}

func (p *Parser) parseCase() (uint32, error) {
	p.advance()
	val, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.COLON)
	body, err := p.parseCaseBody()
	if err != nil {
		return 0, err
	}
	return p.buf.NewAST(astore.Node{
		Kind:     astore.KindCaseStmt,
		Compound: astore.CompoundPayload{Declarations: val, Statements: body},
	})
}

func (p *Parser) parseDefault() (uint32, error) {
	p.advance()
	p.expect(tstore.COLON)
	body, err := p.parseCaseBody()
	if err != nil {
		return 0, err
	}
	return p.buf.NewAST(astore.Node{
		Kind:     astore.KindDefaultStmt,
		Compound: astore.CompoundPayload{Statements: body},
	})
}

// parseCaseBody parses the statements belonging to one case/default arm:
// fallthrough to the next arm is implicit in C99, so the arm ends at the
// next CASE, DEFAULT, RBRACE, or EOF without consuming that token.
func (p *Parser) parseCaseBody() (uint32, error) {
	var head, last uint32
	for p.cur.Kind != tstore.RBRACE && p.cur.Kind != tstore.KW_CASE &&
		p.cur.Kind != tstore.KW_DEFAULT && p.cur.Kind != tstore.EOF {
		progress := p.curIdx
		var id uint32
		var err error
		if isTypeSpecifierStart(p.cur.Kind) {
			id, err = p.parseDeclaration()
		} else {
			id, err = p.parseStatement()
		}
		if err != nil {
			return 0, err
		}
		if id == 0 {
			if p.curIdx == progress {
				p.advance()
			}
			continue
		}
		if head == 0 {
			head = id
		} else {
			prev, err := p.buf.GetAST(last)
			if err != nil {
				return 0, err
			}
			prev.Next = id
			if err := p.buf.TouchAST(last, prev); err != nil {
				return 0, err
			}
		}
		for last = id; ; {
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
	return head, nil
}
