package astore

import (
	"encoding/binary"

	"github.com/cc99/cc99/internal/recfile"
	"github.com/cc99/cc99/internal/tstore"
)

const (
	payloadSize = 20
	headerSize  = 1 + 1 + 4 + 4 + 4 // Kind, Flags, TypeIdx, TokenIdx, Next
	recSize     = headerSize + payloadSize
)

// Store is an open ASTORE: the append-only, in-place-updatable pool backing
// every AST node in a translation unit.
type Store struct {
	rf *recfile.File
}

// Init creates a new, empty AST store.
func Init(path string) (*Store, error) {
	rf, err := recfile.Create(path, recSize)
	if err != nil {
		return nil, err
	}
	return &Store{rf: rf}, nil
}

// Open attaches to an existing AST store.
func Open(path string) (*Store, error) {
	rf, err := recfile.Open(path, recSize)
	if err != nil {
		return nil, err
	}
	return &Store{rf: rf}, nil
}

// Append adds a node and returns its 1-based index.
func (s *Store) Append(n Node) (uint32, error) {
	return s.rf.Append(encode(n))
}

// Update overwrites an existing node in place. The node buffer uses it to
// write back dirty entries: chain links the parser sets after creation and
// nodes the optimizer rewrites.
func (s *Store) Update(idx uint32, n Node) error {
	return s.rf.Update(idx, encode(n))
}

// Get is total: an out-of-range index yields the zero Node (KindInvalid)
// rather than an error, mirroring the zero-initialized-on-fault contract
// spec.md requires of every arena accessor.
func (s *Store) Get(idx uint32) Node {
	buf := make([]byte, recSize)
	if !s.rf.ReadAt(idx, buf) {
		return Node{}
	}
	return decode(buf)
}

// Count returns the number of nodes appended so far.
func (s *Store) Count() uint32 { return s.rf.Count() }

// Close flushes and releases the store.
func (s *Store) Close() error { return s.rf.Close() }

func encode(n Node) []byte {
	b := make([]byte, recSize)
	b[0] = byte(n.Kind)
	b[1] = byte(n.Flags)
	binary.LittleEndian.PutUint32(b[2:6], n.TypeIdx)
	binary.LittleEndian.PutUint32(b[6:10], n.TokenIdx)
	binary.LittleEndian.PutUint32(b[10:14], n.Next)

	p := b[headerSize:]
	switch n.Kind {
	case KindBinaryOp, KindAssign, KindIdentifierRef, KindIntLiteral, KindFloatLiteral, KindCharLiteral, KindStringLiteral:
		encodeBinary(p, n.Binary)
	case KindUnaryOp, KindPostfixOp, KindCast, KindSizeof, KindExprStmt, KindReturnStmt:
		encodeUnary(p, n.Unary)
	case KindIfStmt, KindWhileStmt, KindDoWhileStmt, KindConditionalExpr:
		encodeConditional(p, n.Conditional)
	case KindForStmt, KindDesignatedField, KindDesignatedIndex, KindPhi, KindProgram, KindIndex, KindMember, KindMemberPtr, KindGotoStmt, KindLabelStmt:
		encodeChildren(p, n.Children)
	case KindCompoundStmt, KindInitializer, KindSwitchStmt, KindCaseStmt, KindDefaultStmt:
		encodeCompound(p, n.Compound)
	case KindCall:
		encodeCall(p, n.Call)
	case KindFunctionDecl, KindFunctionDef, KindVarDecl, KindParamDecl:
		encodeDecl(p, n.Decl)
	}
	return b
}

func decode(b []byte) Node {
	n := Node{
		Kind:     Kind(b[0]),
		Flags:    Flags(b[1]),
		TypeIdx:  binary.LittleEndian.Uint32(b[2:6]),
		TokenIdx: binary.LittleEndian.Uint32(b[6:10]),
		Next:     binary.LittleEndian.Uint32(b[10:14]),
	}
	p := b[headerSize:]
	switch n.Kind {
	case KindBinaryOp, KindAssign, KindIdentifierRef, KindIntLiteral, KindFloatLiteral, KindCharLiteral, KindStringLiteral:
		n.Binary = decodeBinary(p)
	case KindUnaryOp, KindPostfixOp, KindCast, KindSizeof, KindExprStmt, KindReturnStmt:
		n.Unary = decodeUnary(p)
	case KindIfStmt, KindWhileStmt, KindDoWhileStmt, KindConditionalExpr:
		n.Conditional = decodeConditional(p)
	case KindForStmt, KindDesignatedField, KindDesignatedIndex, KindPhi, KindProgram, KindIndex, KindMember, KindMemberPtr, KindGotoStmt, KindLabelStmt:
		n.Children = decodeChildren(p)
	case KindCompoundStmt, KindInitializer, KindSwitchStmt, KindCaseStmt, KindDefaultStmt:
		n.Compound = decodeCompound(p)
	case KindCall:
		n.Call = decodeCall(p)
	case KindFunctionDecl, KindFunctionDef, KindVarDecl, KindParamDecl:
		n.Decl = decodeDecl(p)
	}
	return n
}

func encodeBinary(p []byte, v BinaryPayload) {
	binary.LittleEndian.PutUint32(p[0:4], v.Left)
	binary.LittleEndian.PutUint32(p[4:8], v.Right)
	binary.LittleEndian.PutUint16(p[8:10], uint16(v.Operator))
	p[10] = byte(v.Value.Tag)
	switch v.Value.Tag {
	case ValueLong:
		binary.LittleEndian.PutUint64(p[11:19], uint64(v.Value.LongValue))
	case ValueFloat:
		binary.LittleEndian.PutUint64(p[11:19], v.Value.FloatBits)
	case ValueStringPos:
		binary.LittleEndian.PutUint16(p[11:13], v.Value.StringPos)
	case ValueSymbolIdx:
		binary.LittleEndian.PutUint32(p[11:15], v.Value.SymbolIdx)
	}
}

func decodeBinary(p []byte) BinaryPayload {
	v := BinaryPayload{
		Left:     binary.LittleEndian.Uint32(p[0:4]),
		Right:    binary.LittleEndian.Uint32(p[4:8]),
		Operator: tstore.Kind(binary.LittleEndian.Uint16(p[8:10])),
	}
	v.Value.Tag = ValueTag(p[10])
	switch v.Value.Tag {
	case ValueLong:
		v.Value.LongValue = int64(binary.LittleEndian.Uint64(p[11:19]))
	case ValueFloat:
		v.Value.FloatBits = binary.LittleEndian.Uint64(p[11:19])
	case ValueStringPos:
		v.Value.StringPos = binary.LittleEndian.Uint16(p[11:13])
	case ValueSymbolIdx:
		v.Value.SymbolIdx = binary.LittleEndian.Uint32(p[11:15])
	}
	return v
}

func encodeUnary(p []byte, v UnaryPayload) {
	binary.LittleEndian.PutUint32(p[0:4], v.Operand)
	binary.LittleEndian.PutUint16(p[4:6], uint16(v.OperatorKind))
}

func decodeUnary(p []byte) UnaryPayload {
	return UnaryPayload{
		Operand:      binary.LittleEndian.Uint32(p[0:4]),
		OperatorKind: tstore.Kind(binary.LittleEndian.Uint16(p[4:6])),
	}
}

func encodeConditional(p []byte, v ConditionalPayload) {
	binary.LittleEndian.PutUint32(p[0:4], v.Condition)
	binary.LittleEndian.PutUint32(p[4:8], v.Then)
	binary.LittleEndian.PutUint32(p[8:12], v.Else)
}

func decodeConditional(p []byte) ConditionalPayload {
	return ConditionalPayload{
		Condition: binary.LittleEndian.Uint32(p[0:4]),
		Then:      binary.LittleEndian.Uint32(p[4:8]),
		Else:      binary.LittleEndian.Uint32(p[8:12]),
	}
}

func encodeChildren(p []byte, v ChildrenPayload) {
	binary.LittleEndian.PutUint32(p[0:4], v.Child1)
	binary.LittleEndian.PutUint32(p[4:8], v.Child2)
	binary.LittleEndian.PutUint32(p[8:12], v.Child3)
	binary.LittleEndian.PutUint32(p[12:16], v.Child4)
	binary.LittleEndian.PutUint16(p[16:18], v.NamePos)
}

func decodeChildren(p []byte) ChildrenPayload {
	return ChildrenPayload{
		Child1:   binary.LittleEndian.Uint32(p[0:4]),
		Child2:   binary.LittleEndian.Uint32(p[4:8]),
		Child3:   binary.LittleEndian.Uint32(p[8:12]),
		Child4:   binary.LittleEndian.Uint32(p[12:16]),
		NamePos:  binary.LittleEndian.Uint16(p[16:18]),
	}
}

func encodeCompound(p []byte, v CompoundPayload) {
	binary.LittleEndian.PutUint32(p[0:4], v.Declarations)
	binary.LittleEndian.PutUint32(p[4:8], v.Statements)
	binary.LittleEndian.PutUint32(p[8:12], v.ScopeDepth)
}

func decodeCompound(p []byte) CompoundPayload {
	return CompoundPayload{
		Declarations: binary.LittleEndian.Uint32(p[0:4]),
		Statements:   binary.LittleEndian.Uint32(p[4:8]),
		ScopeDepth:   binary.LittleEndian.Uint32(p[8:12]),
	}
}

func encodeCall(p []byte, v CallPayload) {
	binary.LittleEndian.PutUint32(p[0:4], v.Function)
	binary.LittleEndian.PutUint32(p[4:8], v.Arguments)
	binary.LittleEndian.PutUint32(p[8:12], v.ArgCount)
	binary.LittleEndian.PutUint32(p[12:16], v.ReturnType)
}

func decodeCall(p []byte) CallPayload {
	return CallPayload{
		Function:   binary.LittleEndian.Uint32(p[0:4]),
		Arguments:  binary.LittleEndian.Uint32(p[4:8]),
		ArgCount:   binary.LittleEndian.Uint32(p[8:12]),
		ReturnType: binary.LittleEndian.Uint32(p[12:16]),
	}
}

func encodeDecl(p []byte, v DeclPayload) {
	binary.LittleEndian.PutUint32(p[0:4], v.SymbolIdx)
	binary.LittleEndian.PutUint32(p[4:8], v.TypeIdx)
	binary.LittleEndian.PutUint32(p[8:12], v.Initializer)
	binary.LittleEndian.PutUint16(p[12:14], v.StorageClass)
}

func decodeDecl(p []byte) DeclPayload {
	return DeclPayload{
		SymbolIdx:    binary.LittleEndian.Uint32(p[0:4]),
		TypeIdx:      binary.LittleEndian.Uint32(p[4:8]),
		Initializer:  binary.LittleEndian.Uint32(p[8:12]),
		StorageClass: binary.LittleEndian.Uint16(p[12:14]),
	}
}
