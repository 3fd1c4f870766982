package tac_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/tac"
)

func TestAppendAndGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.bin")
	s, err := tac.Init(path)
	require.NoError(t, err)
	defer s.Close()

	idx, err := s.Append(tac.Instruction{
		Opcode: tac.ASSIGN,
		Result: tac.Operand{Tag: tac.OperandTemp, TempID: 0},
		Operand1: tac.Operand{Tag: tac.OperandImmediate, Immediate: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)

	got := s.Get(idx)
	assert.Equal(t, tac.ASSIGN, got.Opcode)
	assert.Equal(t, int32(5), got.Operand1.Immediate)
}

func TestGetOutOfRangeIsNOP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.bin")
	s, err := tac.Init(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, tac.NOP, s.Get(50).Opcode)
}

func TestBuildLabelTableResolvesFromResultOrOperand1(t *testing.T) {
	code := []tac.Instruction{
		{Opcode: tac.LABEL, Result: tac.Operand{Tag: tac.OperandLabel, LabelID: 1}},
		{Opcode: tac.NOP},
		{Opcode: tac.LABEL, Operand1: tac.Operand{Tag: tac.OperandLabel, LabelID: 2}},
	}
	table, err := tac.BuildLabelTable(code)
	require.NoError(t, err)
	assert.Equal(t, 0, table[1])
	assert.Equal(t, 2, table[2])
}

func TestBuildLabelTableRejectsMalformedLabel(t *testing.T) {
	code := []tac.Instruction{
		{Opcode: tac.LABEL}, // neither result nor operand1 tagged label
	}
	_, err := tac.BuildLabelTable(code)
	assert.ErrorIs(t, err, tac.ErrMalformedLabel)
}

func TestBuildLabelTableRejectsDuplicateLabel(t *testing.T) {
	code := []tac.Instruction{
		{Opcode: tac.LABEL, Result: tac.Operand{Tag: tac.OperandLabel, LabelID: 1}},
		{Opcode: tac.LABEL, Result: tac.Operand{Tag: tac.OperandLabel, LabelID: 1}},
	}
	_, err := tac.BuildLabelTable(code)
	assert.ErrorIs(t, err, tac.ErrMalformedLabel)
}
