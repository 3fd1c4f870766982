package parser

import (
	"math"
	"strconv"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/tstore"
	"github.com/cc99/cc99lib/limits"
)

// parseExpression is the assignment-expression entry point; the comma
// operator is not modeled (spec.md's expression grammar stops at
// assignment-expression, matching declarator/argument contexts using it
// directly rather than through a separate comma-expression production).
func (p *Parser) parseExpression() (uint32, error) {
	return p.parseAssignment()
}

var assignOps = map[tstore.Kind]bool{
	tstore.ASSIGN: true, tstore.PLUS_ASSIGN: true, tstore.MINUS_ASSIGN: true,
	tstore.STAR_ASSIGN: true, tstore.SLASH_ASSIGN: true, tstore.PERCENT_ASSIGN: true,
}

// parseAssignment is right-associative: a = b = c parses as a = (b = c).
func (p *Parser) parseAssignment() (uint32, error) {
	lhs, err := p.parseConditional()
	if err != nil {
		return 0, err
	}
	if !assignOps[p.cur.Kind] {
		return lhs, nil
	}
	op := p.cur.Kind
	p.advance()
	rhs, err := p.parseAssignment()
	if err != nil {
		return 0, err
	}
	return p.buf.NewAST(astore.Node{
		Kind:   astore.KindAssign,
		Binary: astore.BinaryPayload{Left: lhs, Right: rhs, Operator: op},
	})
}

// parseConditional implements the right-associative `?:` ternary.
func (p *Parser) parseConditional() (uint32, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return 0, err
	}
	if p.cur.Kind != tstore.QUESTION {
		return cond, nil
	}
	p.advance()
	thenID, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.expect(tstore.COLON)
	elseID, err := p.parseConditional()
	if err != nil {
		return 0, err
	}
	return p.buf.NewAST(astore.Node{
		Kind:        astore.KindConditionalExpr,
		Conditional: astore.ConditionalPayload{Condition: cond, Then: thenID, Else: elseID},
	})
}

func (p *Parser) parseLogicalOr() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseLogicalAnd, map[tstore.Kind]bool{tstore.OROR: true})
}

func (p *Parser) parseLogicalAnd() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseBitwiseOr, map[tstore.Kind]bool{tstore.ANDAND: true})
}

func (p *Parser) parseBitwiseOr() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseBitwiseXor, map[tstore.Kind]bool{tstore.PIPE: true})
}

func (p *Parser) parseBitwiseXor() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseBitwiseAnd, map[tstore.Kind]bool{tstore.CARET: true})
}

func (p *Parser) parseBitwiseAnd() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseEquality, map[tstore.Kind]bool{tstore.AMP: true})
}

func (p *Parser) parseEquality() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseRelational, map[tstore.Kind]bool{tstore.EQ: true, tstore.NEQ: true})
}

func (p *Parser) parseRelational() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseShift, map[tstore.Kind]bool{
		tstore.LT: true, tstore.GT: true, tstore.LE: true, tstore.GE: true,
	})
}

func (p *Parser) parseShift() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseAdditive, map[tstore.Kind]bool{tstore.SHL: true, tstore.SHR: true})
}

func (p *Parser) parseAdditive() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseMultiplicative, map[tstore.Kind]bool{tstore.PLUS: true, tstore.MINUS: true})
}

func (p *Parser) parseMultiplicative() (uint32, error) {
	return p.parseLeftAssocBinary(p.parseUnary, map[tstore.Kind]bool{
		tstore.STAR: true, tstore.SLASH: true, tstore.PERCENT: true,
	})
}

// parseLeftAssocBinary folds a chain of same-precedence operators
// left-to-right. It backs every binary level of the cascade, tightest
// first: multiplicative → additive → shift → relational → equality → `&` →
// `^` → `|` → `&&` → `||`; conditional and assignment sit above them.
func (p *Parser) parseLeftAssocBinary(next func() (uint32, error), ops map[tstore.Kind]bool) (uint32, error) {
	left, err := next()
	if err != nil {
		return 0, err
	}
	for ops[p.cur.Kind] {
		op := p.cur.Kind
		p.advance()
		right, err := next()
		if err != nil {
			return 0, err
		}
		left, err = p.buf.NewAST(astore.Node{
			Kind:   astore.KindBinaryOp,
			Binary: astore.BinaryPayload{Left: left, Right: right, Operator: op},
		})
		if err != nil {
			return 0, err
		}
	}
	return left, nil
}

var unaryPrefixOps = map[tstore.Kind]bool{
	tstore.PLUS: true, tstore.MINUS: true, tstore.NOT: true, tstore.TILDE: true,
	tstore.STAR: true, tstore.AMP: true, tstore.INCR: true, tstore.DECR: true,
}

// parseUnary handles the right-associative prefix operators `+ - ! ~ * &
// ++ --`, plus sizeof and parenthesized-type casts.
func (p *Parser) parseUnary() (uint32, error) {
	switch {
	case p.cur.Kind == tstore.KW_SIZEOF:
		p.advance()
		if p.cur.Kind == tstore.LPAREN && isTypeSpecifierStart(p.peekAfterLParen()) {
			p.advance()
			p.parseTypeSpecifiers()
			for p.cur.Kind == tstore.STAR {
				p.advance()
			}
			p.expect(tstore.RPAREN)
			return p.buf.NewAST(astore.Node{Kind: astore.KindSizeof})
		}
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.buf.NewAST(astore.Node{Kind: astore.KindSizeof, Unary: astore.UnaryPayload{Operand: operand}})

	case unaryPrefixOps[p.cur.Kind]:
		op := p.cur.Kind
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.buf.NewAST(astore.Node{Kind: astore.KindUnaryOp, Unary: astore.UnaryPayload{Operand: operand, OperatorKind: op}})

	case p.cur.Kind == tstore.LPAREN && isTypeSpecifierStart(p.peekAfterLParen()):
		p.advance()
		p.parseTypeSpecifiers()
		for p.cur.Kind == tstore.STAR {
			p.advance()
		}
		p.expect(tstore.RPAREN)
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.buf.NewAST(astore.Node{Kind: astore.KindCast, Unary: astore.UnaryPayload{Operand: operand}})

	default:
		return p.parsePostfix()
	}
}

// peekAfterLParen looks one token past the current '(' without consuming
// either token, to disambiguate a cast/sizeof-type from a parenthesized
// expression.
func (p *Parser) peekAfterLParen() tstore.Kind {
	idx := p.toks.GetIdx()
	return p.toks.Get(idx).Kind
}

func (p *Parser) parsePostfix() (uint32, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.cur.Kind {
		case tstore.LBRACKET:
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return 0, err
			}
			p.expect(tstore.RBRACKET)
			expr, err = p.buf.NewAST(astore.Node{
				Kind:     astore.KindIndex,
				Children: astore.ChildrenPayload{Child1: expr, Child2: idx},
			})
			if err != nil {
				return 0, err
			}
		case tstore.LPAREN:
			expr, err = p.parseCallArgs(expr)
			if err != nil {
				return 0, err
			}
		case tstore.DOT:
			p.advance()
			nameTok, _ := p.expect(tstore.IDENT)
			expr, err = p.buf.NewAST(astore.Node{
				Kind:     astore.KindMember,
				Children: astore.ChildrenPayload{Child1: expr, NamePos: nameTok.SourcePos},
			})
			if err != nil {
				return 0, err
			}
		case tstore.ARROW:
			p.advance()
			nameTok, _ := p.expect(tstore.IDENT)
			expr, err = p.buf.NewAST(astore.Node{
				Kind:     astore.KindMemberPtr,
				Children: astore.ChildrenPayload{Child1: expr, NamePos: nameTok.SourcePos},
			})
			if err != nil {
				return 0, err
			}
		case tstore.INCR, tstore.DECR:
			op := p.cur.Kind
			p.advance()
			expr, err = p.buf.NewAST(astore.Node{
				Kind: astore.KindPostfixOp,
				Unary: astore.UnaryPayload{Operand: expr, OperatorKind: op},
			})
			if err != nil {
				return 0, err
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallArgs(fn uint32) (uint32, error) {
	p.expect(tstore.LPAREN)
	var head, last uint32
	var count uint32
	for p.cur.Kind != tstore.RPAREN && p.cur.Kind != tstore.EOF {
		argID, err := p.parseAssignment()
		if err != nil {
			return 0, err
		}
		if head == 0 {
			head = argID
		} else {
			prev, err := p.buf.GetAST(last)
			if err != nil {
				return 0, err
			}
			prev.Next = argID
			if err := p.buf.TouchAST(last, prev); err != nil {
				return 0, err
			}
		}
		last = argID
		count++
		if p.cur.Kind != tstore.COMMA {
			break
		}
		p.advance()
	}
	p.expect(tstore.RPAREN)
	return p.buf.NewAST(astore.Node{
		Kind: astore.KindCall,
		Call: astore.CallPayload{Function: fn, Arguments: head, ArgCount: count},
	})
}

func (p *Parser) parsePrimary() (uint32, error) {
	switch p.cur.Kind {
	case tstore.IDENT:
		tok := p.cur
		name, err := p.identText()
		if err != nil {
			return 0, err
		}
		p.advance()
		symID, err := p.resolve(name)
		if err != nil {
			return 0, err
		}
		if symID == 0 {
			p.sink.Semanticf(stage, codeUndefinedIdentifier, p.loc(), "undefined identifier %q", string(name))
			return 0, nil
		}
		return p.buf.NewAST(astore.Node{
			Kind:   astore.KindIdentifierRef,
			Binary: astore.BinaryPayload{Value: astore.Value{Tag: astore.ValueSymbolIdx, SymbolIdx: symID, StringPos: tok.SourcePos}},
		})

	case tstore.INT_LIT:
		tok := p.cur
		text, err := p.identText()
		if err != nil {
			return 0, err
		}
		p.advance()
		v, _ := limits.ParseLongLiteral(string(text))
		return p.buf.NewAST(astore.Node{
			Kind:   astore.KindIntLiteral,
			Binary: astore.BinaryPayload{Value: astore.Value{Tag: astore.ValueLong, LongValue: v, StringPos: tok.SourcePos}},
		})

	case tstore.FLOAT_LIT:
		tok := p.cur
		text, err := p.identText()
		if err != nil {
			return 0, err
		}
		p.advance()
		// malformed text yields 0, matching the total-accessor philosophy
		// the stores use elsewhere.
		f, _ := strconv.ParseFloat(string(text), 64)
		return p.buf.NewAST(astore.Node{
			Kind:   astore.KindFloatLiteral,
			Binary: astore.BinaryPayload{Value: astore.Value{Tag: astore.ValueFloat, FloatBits: math.Float64bits(f), StringPos: tok.SourcePos}},
		})

	case tstore.CHAR_LIT:
		tok := p.cur
		p.advance()
		return p.buf.NewAST(astore.Node{
			Kind:   astore.KindCharLiteral,
			Binary: astore.BinaryPayload{Value: astore.Value{Tag: astore.ValueStringPos, StringPos: tok.SourcePos}},
		})

	case tstore.STRING_LIT:
		tok := p.cur
		p.advance()
		return p.buf.NewAST(astore.Node{
			Kind:   astore.KindStringLiteral,
			Binary: astore.BinaryPayload{Value: astore.Value{Tag: astore.ValueStringPos, StringPos: tok.SourcePos}},
		})

	case tstore.LPAREN:
		p.advance()
		id, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		p.expect(tstore.RPAREN)
		return id, nil

	default:
		p.sink.Syntaxf(stage, codeUnexpectedToken, p.loc(), "expected an expression")
		return 0, nil
	}
}
