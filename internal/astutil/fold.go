package astutil

import (
	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/nodebuf"
	"github.com/cc99/cc99/internal/tstore"
)

// FoldConstants runs a post-order constant-folding pass over the subtree
// rooted at root (spec.md §4.H): every binary op whose operator is one of
// + - * / % & | ^ << >> and whose operands are both integer literals is
// rewritten in place to an integer literal carrying the computed value, and
// gets FlagOptimized set. Other operators, and division or remainder by
// zero, are left unfolded. All mutation happens through
// buf (GetAST/TouchAST), matching the contract every transform must obey:
// mutate through HB, mark touched, never free.
//
// The folded node's former Left/Right child ids are zeroed rather than
// freed: ASTORE has no delete operation (arena discipline), so the
// original literal nodes remain allocated but unreachable from the folded
// parent. This mirrors the arena's append-only lifecycle rather than
// treating the orphaned children as a leak to chase down.
func FoldConstants(buf *nodebuf.Buf, root uint32) (folded int, err error) {
	err = Walk(buf, root, nil, func(id uint32, n astore.Node, depth int, ctx any) {
		if n.Kind != astore.KindBinaryOp {
			return
		}
		left, gerr := buf.GetAST(n.Binary.Left)
		if gerr != nil {
			err = gerr
			return
		}
		right, gerr := buf.GetAST(n.Binary.Right)
		if gerr != nil {
			err = gerr
			return
		}
		if left.Kind != astore.KindIntLiteral || right.Kind != astore.KindIntLiteral {
			return
		}
		if left.Binary.Value.Tag != astore.ValueLong || right.Binary.Value.Tag != astore.ValueLong {
			return
		}
		result, ok := evalInt(n.Binary.Operator, left.Binary.Value.LongValue, right.Binary.Value.LongValue)
		if !ok {
			return
		}
		folded++
		n.Kind = astore.KindIntLiteral
		n.Binary.Left = 0
		n.Binary.Right = 0
		n.Binary.Operator = 0
		n.Binary.Value = astore.Value{Tag: astore.ValueLong, LongValue: result}
		n.Flags |= astore.FlagOptimized
		if terr := buf.TouchAST(id, n); terr != nil {
			err = terr
		}
	}, nil)
	return folded, err
}

func evalInt(op tstore.Kind, a, b int64) (int64, bool) {
	switch op {
	case tstore.PLUS:
		return a + b, true
	case tstore.MINUS:
		return a - b, true
	case tstore.STAR:
		return a * b, true
	case tstore.SLASH:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case tstore.PERCENT:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case tstore.AMP:
		return a & b, true
	case tstore.PIPE:
		return a | b, true
	case tstore.CARET:
		return a ^ b, true
	case tstore.SHL:
		return a << uint(b), true
	case tstore.SHR:
		return a >> uint(b), true
	}
	return 0, false
}
