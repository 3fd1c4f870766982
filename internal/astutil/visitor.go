// Package astutil implements the generic AST visitor/tree-statistics
// traversal (spec.md §4.H) and the sample constant-folding optimizer built
// on top of it. Every access goes through nodebuf so the walk observes the
// same LRU/write-back discipline as the parser.
package astutil

import (
	"github.com/pkg/errors"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/nodebuf"
)

// MaxWalkDepth bounds recursion; exceeding it aborts the walk rather than
// risking a stack overflow on a malformed or cyclic tree.
const MaxWalkDepth = 16

// ErrDepthExceeded is returned when a walk exceeds MaxWalkDepth.
var ErrDepthExceeded = errors.New("astutil: walk exceeded max depth")

// ErrCycle is returned when a walk revisits an id already on its own
// ancestor path, which would otherwise recurse forever.
var ErrCycle = errors.New("astutil: cycle detected in AST")

// PreFunc runs before a node's children are visited. Returning false skips
// descending into this node's children (but post still runs).
type PreFunc func(id uint32, n astore.Node, depth int, ctx any) bool

// PostFunc runs after a node's children have all been visited.
type PostFunc func(id uint32, n astore.Node, depth int, ctx any)

// Walk performs a depth-first traversal of the AST rooted at root,
// dereferencing child ids through buf. Either callback may be nil.
func Walk(buf *nodebuf.Buf, root uint32, pre PreFunc, post PostFunc, ctx any) error {
	return walk(buf, root, 0, nil, pre, post, ctx)
}

func walk(buf *nodebuf.Buf, id uint32, depth int, ancestors []uint32, pre PreFunc, post PostFunc, ctx any) error {
	if id == 0 {
		return nil
	}
	if depth > MaxWalkDepth {
		return ErrDepthExceeded
	}
	for _, a := range ancestors {
		if a == id {
			return ErrCycle
		}
	}
	n, err := buf.GetAST(id)
	if err != nil {
		return err
	}
	if n.Kind == astore.KindInvalid {
		return nil
	}

	descend := true
	if pre != nil {
		descend = pre(id, n, depth, ctx)
	}
	if descend {
		ancestors = append(ancestors, id)
		for _, child := range childrenOf(n) {
			if err := walk(buf, child, depth+1, ancestors, pre, post, ctx); err != nil {
				return err
			}
		}
		for cur := chainHead(n); cur != 0; {
			if err := walk(buf, cur, depth+1, ancestors, pre, post, ctx); err != nil {
				return err
			}
			next, err := buf.GetAST(cur)
			if err != nil {
				return err
			}
			cur = next.Next
		}
	}
	if post != nil {
		post(id, n, depth, ctx)
	}
	return nil
}

// childrenOf returns a node's direct structural child ids (excluding
// Next-chained siblings, which chainHead/walk handle separately).
func childrenOf(n astore.Node) []uint32 {
	switch n.Kind {
	case astore.KindBinaryOp, astore.KindAssign:
		return []uint32{n.Binary.Left, n.Binary.Right}
	case astore.KindUnaryOp, astore.KindPostfixOp, astore.KindCast, astore.KindSizeof, astore.KindExprStmt, astore.KindReturnStmt:
		return []uint32{n.Unary.Operand}
	case astore.KindIfStmt, astore.KindWhileStmt, astore.KindDoWhileStmt, astore.KindConditionalExpr:
		return []uint32{n.Conditional.Condition, n.Conditional.Then, n.Conditional.Else}
	case astore.KindForStmt, astore.KindPhi:
		return []uint32{n.Children.Child1, n.Children.Child2, n.Children.Child3, n.Children.Child4}
	case astore.KindDesignatedField, astore.KindDesignatedIndex, astore.KindIndex, astore.KindMember, astore.KindMemberPtr:
		return []uint32{n.Children.Child1, n.Children.Child2}
	case astore.KindCall:
		return []uint32{n.Call.Function}
	case astore.KindSwitchStmt:
		return []uint32{n.Compound.Declarations} // controlling expression
	case astore.KindCaseStmt:
		return []uint32{n.Compound.Declarations} // case constant expression
	case astore.KindFunctionDecl, astore.KindFunctionDef, astore.KindVarDecl, astore.KindParamDecl:
		return []uint32{n.Decl.Initializer} // var initializer, or function body for FunctionDef
	}
	return nil
}

// chainHead returns the head of a node's Next-linked child chain, if any:
// a compound statement's body, a call's argument list, an initializer
// list's elements, or a program's subsequent top-level declarations.
func chainHead(n astore.Node) uint32 {
	switch n.Kind {
	case astore.KindCompoundStmt, astore.KindInitializer, astore.KindSwitchStmt, astore.KindDefaultStmt, astore.KindCaseStmt:
		return n.Compound.Statements
	case astore.KindCall:
		return n.Call.Arguments
	case astore.KindProgram:
		return n.Children.Child1
	}
	return 0
}

// Stats summarizes a subtree: node count, maximum depth reached, and total
// on-disk bytes occupied (node count * the fixed record size).
type Stats struct {
	NodeCount int
	MaxDepth  int
	TotalBytes int
}

const nodeRecordBytes = 34 // header(14) + payload(20), kept in sync with astore's recSize

// ComputeStats walks the subtree rooted at root and tallies Stats.
func ComputeStats(buf *nodebuf.Buf, root uint32) (Stats, error) {
	var st Stats
	err := Walk(buf, root, func(id uint32, n astore.Node, depth int, ctx any) bool {
		st.NodeCount++
		if depth > st.MaxDepth {
			st.MaxDepth = depth
		}
		return true
	}, nil, nil)
	st.TotalBytes = st.NodeCount * nodeRecordBytes
	return st, err
}
