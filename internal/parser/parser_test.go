package parser_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/astutil"
	"github.com/cc99/cc99/internal/diag"
	"github.com/cc99/cc99/internal/lexer"
	"github.com/cc99/cc99/internal/nodebuf"
	"github.com/cc99/cc99/internal/parser"
	"github.com/cc99/cc99/internal/sstore"
	"github.com/cc99/cc99/internal/symtab"
	"github.com/cc99/cc99/internal/tstore"
)

type harness struct {
	strs *sstore.Store
	toks *tstore.Store
	buf  *nodebuf.Buf
	syms *symtab.Store
	sink *diag.Sink
}

func newHarness(t *testing.T, src string) *harness {
	t.Helper()
	dir := t.TempDir()
	strs, err := sstore.Init(filepath.Join(dir, "s.bin"))
	require.NoError(t, err)
	toks, err := tstore.Init(filepath.Join(dir, "t.bin"))
	require.NoError(t, err)
	a, err := astore.Init(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
	syms, err := symtab.Init(filepath.Join(dir, "sym.bin"))
	require.NoError(t, err)
	buf, err := nodebuf.New(256, a, syms, nil)
	require.NoError(t, err)
	t.Cleanup(func() { strs.Close(); toks.Close(); a.Close(); syms.Close() })

	_, err = lexer.Lex([]byte(src), "t.c", strs, toks)
	require.NoError(t, err)

	sink := diag.New(diag.Config{MaxErrors: 100, MaxWarnings: 100})
	return &harness{strs: strs, toks: toks, buf: buf, syms: syms, sink: sink}
}

func (h *harness) parse(t *testing.T) uint32 {
	t.Helper()
	p := parser.New(h.toks, h.strs, h.buf, h.syms, h.sink)
	id, err := p.ParseProgram()
	require.NoError(t, err)
	return id
}

func TestParseSimpleFunctionDefinition(t *testing.T) {
	h := newHarness(t, "int main() { return 0; }")
	progID := h.parse(t)
	require.False(t, h.sink.HasErrors())

	prog, err := h.buf.GetAST(progID)
	require.NoError(t, err)
	assert.Equal(t, astore.KindProgram, prog.Kind)
	require.NotZero(t, prog.Children.Child1)

	def, err := h.buf.GetAST(prog.Children.Child1)
	require.NoError(t, err)
	assert.Equal(t, astore.KindFunctionDef, def.Kind)
	require.NotZero(t, def.Decl.SymbolIdx)

	fn := h.syms.Get(def.Decl.SymbolIdx)
	assert.Equal(t, symtab.KindFunction, fn.Kind)
	assert.EqualValues(t, 0, fn.ScopeDepth)

	body, err := h.buf.GetAST(def.Decl.Initializer)
	require.NoError(t, err)
	assert.Equal(t, astore.KindCompoundStmt, body.Kind)
	assert.EqualValues(t, 1, body.Compound.ScopeDepth, "function's own outer brace stays at scope depth 1")
}

// Shadowing scenario: three "x" symbols at scope_depth 0, 1, 2.
func TestParseShadowingScenario(t *testing.T) {
	h := newHarness(t, `
int x;
int main() {
	int x;
	{
		int x;
	}
	return x;
}
`)
	h.parse(t)
	require.False(t, h.sink.HasErrors())

	var depths []uint32
	count := h.syms.Count()
	for i := uint32(1); i <= count; i++ {
		sym := h.syms.Get(i)
		if sym.Kind != symtab.KindVariable {
			continue
		}
		name, err := h.strs.Get(sym.NamePos, nil)
		require.NoError(t, err)
		if string(name) == "x" {
			depths = append(depths, sym.ScopeDepth)
		}
	}
	require.Len(t, depths, 3)
	assert.ElementsMatch(t, []uint32{0, 1, 2}, depths)
}

func TestParseUndefinedIdentifierReportsSemanticError(t *testing.T) {
	h := newHarness(t, "int main() { return y; }")
	h.parse(t)
	require.True(t, h.sink.HasErrors())

	found := false
	for _, d := range h.sink.Diagnostics() {
		if d.Code == 2001 {
			found = true
		}
	}
	assert.True(t, found, "expected an undefined-identifier diagnostic")
}

func TestParsePrecedenceExpression(t *testing.T) {
	h := newHarness(t, "int main() { return 1 + 2 * 3; }")
	progID := h.parse(t)
	require.False(t, h.sink.HasErrors())

	prog, err := h.buf.GetAST(progID)
	require.NoError(t, err)
	def, err := h.buf.GetAST(prog.Children.Child1)
	require.NoError(t, err)
	body, err := h.buf.GetAST(def.Decl.Initializer)
	require.NoError(t, err)

	retStmt, err := h.buf.GetAST(body.Compound.Statements)
	require.NoError(t, err)
	assert.Equal(t, astore.KindReturnStmt, retStmt.Kind)

	add, err := h.buf.GetAST(retStmt.Unary.Operand)
	require.NoError(t, err)
	assert.Equal(t, astore.KindBinaryOp, add.Kind)
	assert.Equal(t, tstore.PLUS, add.Binary.Operator)

	mul, err := h.buf.GetAST(add.Binary.Right)
	require.NoError(t, err)
	assert.Equal(t, astore.KindBinaryOp, mul.Kind)
	assert.Equal(t, tstore.STAR, mul.Binary.Operator)
}

func TestParseIfElseAndWhile(t *testing.T) {
	h := newHarness(t, `
int main() {
	int x;
	if (x) { x = 1; } else { x = 2; }
	while (x) { x = x - 1; }
	return 0;
}
`)
	h.parse(t)
	require.False(t, h.sink.HasErrors())
}

// Regression: a PROGRAM's external declarations beyond the first must stay
// reachable from the walker, not just from ParseProgram's own return value.
func TestParseMultipleTopLevelDeclarationsAreAllWalked(t *testing.T) {
	h := newHarness(t, `
int x = 1;
int main() {
	return x;
}
`)
	progID := h.parse(t)
	require.False(t, h.sink.HasErrors())

	prog, err := h.buf.GetAST(progID)
	require.NoError(t, err)
	require.NotZero(t, prog.Children.Child1)

	firstDecl, err := h.buf.GetAST(prog.Children.Child1)
	require.NoError(t, err)
	assert.Equal(t, astore.KindVarDecl, firstDecl.Kind)
	require.NotZero(t, firstDecl.Next, "second top-level declaration must be chained via Next")

	secondDecl, err := h.buf.GetAST(firstDecl.Next)
	require.NoError(t, err)
	assert.Equal(t, astore.KindFunctionDef, secondDecl.Kind)

	var kinds []astore.Kind
	err = astutil.Walk(h.buf, progID, func(id uint32, n astore.Node, depth int, ctx any) bool {
		kinds = append(kinds, n.Kind)
		return true
	}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, kinds, astore.KindVarDecl, "walk must reach the first top-level declaration")
	assert.Contains(t, kinds, astore.KindFunctionDef, "walk must reach the second top-level declaration, not just the first")
}

func TestParseMalformedDeclarationRecovers(t *testing.T) {
	h := newHarness(t, "int long int bogus; int ok;")
	progID := h.parse(t)
	require.True(t, h.sink.HasErrors())

	prog, err := h.buf.GetAST(progID)
	require.NoError(t, err)
	// recovery must still reach and declare "ok"
	found := false
	count := h.syms.Count()
	for i := uint32(1); i <= count; i++ {
		name, err := h.strs.Get(h.syms.Get(i).NamePos, nil)
		require.NoError(t, err)
		if string(name) == "ok" {
			found = true
		}
	}
	assert.True(t, found)
	_ = prog
}
