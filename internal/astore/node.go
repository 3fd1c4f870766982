// Package astore implements ASTORE, the append-only pool of fixed-size AST
// records, and defines the AST node's Go-level tagged union. Per the
// re-architecture note in spec.md §9, the union is a proper tagged sum: each
// kind's payload lives in its own named struct, and a dedicated Next field
// carries statement/argument/initializer-element chaining so no payload slot
// is ever reused for two unrelated purposes within the same kind.
package astore

import "github.com/cc99/cc99/internal/tstore"

// Kind tags every AST node's grammatical construct.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindProgram

	KindFunctionDecl
	KindFunctionDef
	KindVarDecl
	KindParamDecl

	KindCompoundStmt
	KindExprStmt
	KindIfStmt
	KindWhileStmt
	KindDoWhileStmt
	KindForStmt
	KindReturnStmt
	KindBreakStmt
	KindContinueStmt
	KindGotoStmt
	KindLabelStmt
	KindSwitchStmt
	KindCaseStmt
	KindDefaultStmt

	KindBinaryOp
	KindUnaryOp
	KindPostfixOp
	KindAssign
	KindCall
	KindIdentifierRef
	KindIntLiteral
	KindFloatLiteral
	KindCharLiteral
	KindStringLiteral
	KindInitializer
	KindDesignatedField
	KindDesignatedIndex
	KindCast
	KindSizeof
	KindPhi
	KindMember
	KindMemberPtr
	KindIndex
	KindConditionalExpr

	// Type-specifier nodes (recorded, not enforced: spec.md explicitly
	// scopes out full C99 type-checking).
	KindTypeVoid
	KindTypeChar
	KindTypeInt
	KindTypeFloat
	KindTypeDouble
	KindTypeBool
	KindTypeStruct
	KindTypeUnion
	KindTypeEnum
	KindTypePointer
	KindTypeArray
	KindTypeFunction
	KindTypeVariadic
	KindTypeComplex
	KindTypeImaginary
)

// Flags is a monotonic bitmask: once a bit is set, later passes must respect
// it (spec.md §3 invariant ii).
type Flags uint8

const (
	FlagParsed Flags = 1 << iota
	FlagAnalyzed
	FlagTyped
	FlagCodegen
	FlagOptimized
)

// ValueTag discriminates BinaryPayload's constant-value union.
type ValueTag uint8

const (
	ValueNone ValueTag = iota
	ValueLong
	ValueFloat
	ValueStringPos
	ValueSymbolIdx
)

// BinaryPayload backs binary operators, and — per spec.md §3 — also the
// literal and identifier-reference leaf kinds, which carry their constant
// or symbol reference in the same value union. Operator has its own
// dedicated field: unlike the design spec.md §9 calls out for replacement,
// it is never aliased onto UnaryPayload's operand slot.
type BinaryPayload struct {
	Left, Right uint32
	Operator    tstore.Kind
	Value       Value
}

// Value is BinaryPayload's tagged constant/reference union.
type Value struct {
	Tag       ValueTag
	LongValue int64
	FloatBits uint64 // math.Float64bits(value)
	StringPos uint16
	SymbolIdx uint32
}

// UnaryPayload backs unary operators, casts, and sizeof.
type UnaryPayload struct {
	Operand      uint32
	OperatorKind tstore.Kind
}

// ConditionalPayload backs if/while/ternary: {condition, then, else}.
type ConditionalPayload struct {
	Condition, Then, Else uint32
}

// ChildrenPayload is the generic 4-slot structural linkage used by for-loops
// (init, cond, post, body), designated initializers (key, value, field
// name), and phi nodes (argument ids).
type ChildrenPayload struct {
	Child1, Child2, Child3, Child4 uint32
	NamePos                        uint16 // designated-field name SSTORE position
}

// CompoundPayload backs compound statements: a separate declarations head
// (for quick local-declaration iteration) from the interleaved statement
// chain, plus the scope depth the block was opened at.
type CompoundPayload struct {
	Declarations uint32
	Statements   uint32 // head; each statement chains via its own Next field
	ScopeDepth   uint32
}

// CallPayload backs call expressions.
type CallPayload struct {
	Function  uint32
	Arguments uint32 // head; each argument chains via its own Next field
	ArgCount  uint32
	ReturnType uint32
}

// DeclPayload backs declarations (function def/decl, var/param decl).
type DeclPayload struct {
	SymbolIdx    uint32
	TypeIdx      uint32
	Initializer  uint32
	StorageClass uint16
}

// Node is one AST record. Kind selects which payload field is meaningful;
// the others are zero and must not be consulted.
type Node struct {
	Kind     Kind
	Flags    Flags
	TypeIdx  uint32
	TokenIdx uint32
	Next     uint32 // dedicated chain pointer for statements/arguments/init elements

	Binary      BinaryPayload
	Unary       UnaryPayload
	Conditional ConditionalPayload
	Children    ChildrenPayload
	Compound    CompoundPayload
	Call        CallPayload
	Decl        DeclPayload
}

// Long returns BinaryPayload's value interpreted as an integer literal.
func (v Value) Long() int64 { return v.LongValue }

// HasFlag reports whether every bit in want is set.
func (n Node) HasFlag(want Flags) bool { return n.Flags&want == want }
