// Package tac implements the TAC stream (spec.md §4.J): the append-only
// pool of fixed-size three-address-code instructions the interpreter
// (internal/vm) loads and executes, plus the label table built at load
// time.
package tac

import (
	"encoding/binary"

	"github.com/cc99/cc99/internal/recfile"
)

// Opcode is a TAC instruction's operation.
type Opcode uint8

const (
	NOP Opcode = iota
	LABEL
	ASSIGN

	ADD
	SUB
	MUL
	DIV
	MOD

	AND
	OR
	XOR
	SHL
	SHR

	LOGICAL_AND
	LOGICAL_OR

	EQ
	NE
	LT
	LE
	GT
	GE

	NEG
	NOT
	BITWISE_NOT

	GOTO
	IF_TRUE
	IF_FALSE

	CALL
	PARAM
	RETURN
	RETURN_VOID

	LOAD
	STORE
	ADDR
	INDEX
	MEMBER
	MEMBER_PTR
	CAST
	SIZEOF
	PHI
)

// OperandTag discriminates Operand's union.
type OperandTag uint8

const (
	OperandNone OperandTag = iota
	OperandImmediate
	OperandLabel
	OperandTemp
	OperandVar
	OperandStringPos
)

// Operand is the tagged union an instruction's result/operand1/operand2
// carry: {none, immediate(int), label(id), temp(id), var(id),
// symbolic-function-name-position}.
type Operand struct {
	Tag       OperandTag
	Immediate int32
	LabelID   uint16
	TempID    uint16
	VarID     uint16
	StringPos uint32
}

// Instruction is the fixed-size TAC record.
type Instruction struct {
	Opcode  Opcode
	Flags   uint8
	Result  Operand
	Operand1 Operand
	Operand2 Operand
}

const (
	operandSize = 1 + 4 // tag + 4-byte raw union
	recSize     = 1 + 1 + 3*operandSize
)

// Store is an open TAC stream.
type Store struct {
	rf *recfile.File
}

// Init creates a new, empty TAC stream.
func Init(path string) (*Store, error) {
	rf, err := recfile.Create(path, recSize)
	if err != nil {
		return nil, err
	}
	return &Store{rf: rf}, nil
}

// Open attaches to an existing TAC stream.
func Open(path string) (*Store, error) {
	rf, err := recfile.Open(path, recSize)
	if err != nil {
		return nil, err
	}
	return &Store{rf: rf}, nil
}

// Append adds an instruction and returns its 1-based index.
func (s *Store) Append(instr Instruction) (uint32, error) {
	return s.rf.Append(encode(instr))
}

// Get is total: an out-of-range index yields a zero (NOP) instruction.
func (s *Store) Get(idx uint32) Instruction {
	buf := make([]byte, recSize)
	if !s.rf.ReadAt(idx, buf) {
		return Instruction{}
	}
	return decode(buf)
}

// Count returns the number of instructions appended so far.
func (s *Store) Count() uint32 { return s.rf.Count() }

// Close flushes and releases the store.
func (s *Store) Close() error { return s.rf.Close() }

// All reads every instruction in order, for handoff to the interpreter's
// Load.
func (s *Store) All() []Instruction {
	n := s.rf.Count()
	out := make([]Instruction, n)
	for i := uint32(0); i < n; i++ {
		out[i] = s.Get(i + 1)
	}
	return out
}

func encodeOperand(b []byte, op Operand) {
	b[0] = byte(op.Tag)
	switch op.Tag {
	case OperandImmediate:
		binary.LittleEndian.PutUint32(b[1:5], uint32(op.Immediate))
	case OperandLabel:
		binary.LittleEndian.PutUint16(b[1:3], op.LabelID)
	case OperandTemp:
		binary.LittleEndian.PutUint16(b[1:3], op.TempID)
	case OperandVar:
		binary.LittleEndian.PutUint16(b[1:3], op.VarID)
	case OperandStringPos:
		binary.LittleEndian.PutUint32(b[1:5], op.StringPos)
	}
}

func decodeOperand(b []byte) Operand {
	var op Operand
	op.Tag = OperandTag(b[0])
	switch op.Tag {
	case OperandImmediate:
		op.Immediate = int32(binary.LittleEndian.Uint32(b[1:5]))
	case OperandLabel:
		op.LabelID = binary.LittleEndian.Uint16(b[1:3])
	case OperandTemp:
		op.TempID = binary.LittleEndian.Uint16(b[1:3])
	case OperandVar:
		op.VarID = binary.LittleEndian.Uint16(b[1:3])
	case OperandStringPos:
		op.StringPos = binary.LittleEndian.Uint32(b[1:5])
	}
	return op
}

func encode(instr Instruction) []byte {
	b := make([]byte, recSize)
	b[0] = byte(instr.Opcode)
	b[1] = instr.Flags
	encodeOperand(b[2:2+operandSize], instr.Result)
	encodeOperand(b[2+operandSize:2+2*operandSize], instr.Operand1)
	encodeOperand(b[2+2*operandSize:2+3*operandSize], instr.Operand2)
	return b
}

func decode(b []byte) Instruction {
	return Instruction{
		Opcode:   Opcode(b[0]),
		Flags:    b[1],
		Result:   decodeOperand(b[2 : 2+operandSize]),
		Operand1: decodeOperand(b[2+operandSize : 2+2*operandSize]),
		Operand2: decodeOperand(b[2+2*operandSize : 2+3*operandSize]),
	}
}
