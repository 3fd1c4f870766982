package tac

import "github.com/pkg/errors"

// ErrMalformedLabel is returned by BuildLabelTable when a LABEL
// instruction's id cannot be decoded from its operands. Per the
// re-architecture note in spec.md §9, a malformed label is rejected at
// load time rather than silently falling back to a position-derived id.
var ErrMalformedLabel = errors.New("tac: malformed label instruction")

// LabelTable maps a label id to the 0-based instruction address it names.
type LabelTable map[uint16]int

// BuildLabelTable scans code for LABEL opcodes and records (label id →
// address). The label id is read from the result operand when tagged
// label, else from operand1; any other shape is rejected.
func BuildLabelTable(code []Instruction) (LabelTable, error) {
	table := make(LabelTable)
	for addr, instr := range code {
		if instr.Opcode != LABEL {
			continue
		}
		var id uint16
		switch {
		case instr.Result.Tag == OperandLabel:
			id = instr.Result.LabelID
		case instr.Operand1.Tag == OperandLabel:
			id = instr.Operand1.LabelID
		default:
			return nil, errors.Wrapf(ErrMalformedLabel, "at instruction %d", addr)
		}
		if _, dup := table[id]; dup {
			return nil, errors.Wrapf(ErrMalformedLabel, "duplicate label %d at instruction %d", id, addr)
		}
		table[id] = addr
	}
	return table, nil
}
