package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/tac"
	"github.com/cc99/cc99/internal/vm"
)

func newEngine() *vm.Engine {
	return vm.New(vm.Config{NumTemps: 16, NumVars: 16, HeapBytes: 1024, MaxCallDepth: 8, MaxSteps: 1000}, nil)
}

// TAC arithmetic scenario (spec.md §8.5): ASSIGN t0←5, ASSIGN t1←3, ADD t2←t0,t1.
func TestRunArithmeticScenario(t *testing.T) {
	e := newEngine()
	code := []tac.Instruction{
		{Opcode: tac.ASSIGN, Result: tac.Operand{Tag: tac.OperandTemp, TempID: 0}, Operand1: tac.Operand{Tag: tac.OperandImmediate, Immediate: 5}},
		{Opcode: tac.ASSIGN, Result: tac.Operand{Tag: tac.OperandTemp, TempID: 1}, Operand1: tac.Operand{Tag: tac.OperandImmediate, Immediate: 3}},
		{Opcode: tac.ADD, Result: tac.Operand{Tag: tac.OperandTemp, TempID: 2}, Operand1: tac.Operand{Tag: tac.OperandTemp, TempID: 0}, Operand2: tac.Operand{Tag: tac.OperandTemp, TempID: 1}},
	}
	require.NoError(t, e.Load(code))
	require.NoError(t, e.Run())

	assert.Equal(t, int32(8), e.GetTemp(2).Int)
	assert.EqualValues(t, 3, e.StepCount())
	assert.Equal(t, vm.StateFinished, e.State())
}

// TAC division-by-zero scenario (spec.md §8.6).
func TestRunDivisionByZeroScenario(t *testing.T) {
	e := newEngine()
	code := []tac.Instruction{
		{Opcode: tac.ASSIGN, Result: tac.Operand{Tag: tac.OperandTemp, TempID: 0}, Operand1: tac.Operand{Tag: tac.OperandImmediate, Immediate: 5}},
		{Opcode: tac.ASSIGN, Result: tac.Operand{Tag: tac.OperandTemp, TempID: 1}, Operand1: tac.Operand{Tag: tac.OperandImmediate, Immediate: 0}},
		{Opcode: tac.DIV, Result: tac.Operand{Tag: tac.OperandTemp, TempID: 2}, Operand1: tac.Operand{Tag: tac.OperandTemp, TempID: 0}, Operand2: tac.Operand{Tag: tac.OperandTemp, TempID: 1}},
	}
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)

	assert.Equal(t, vm.StateError, e.State())
	require.NotNil(t, e.LastFault())
	assert.Equal(t, vm.FaultDivisionByZero, e.LastFault().Code)
	assert.Equal(t, 2, e.PC(), "PC points at the faulting DIV instruction")
}

func TestCallReturnPublishesResultToCallSite(t *testing.T) {
	e := newEngine()
	// 0: GOTO main
	// 1: LABEL callee
	// 2: RETURN 42
	// 3: LABEL main
	// 4: CALL callee -> t5
	// 5: NOP
	code := []tac.Instruction{
		{Opcode: tac.GOTO, Operand1: tac.Operand{Tag: tac.OperandImmediate, Immediate: 3}},
		{Opcode: tac.LABEL, Result: tac.Operand{Tag: tac.OperandLabel, LabelID: 1}},
		{Opcode: tac.RETURN, Operand1: tac.Operand{Tag: tac.OperandImmediate, Immediate: 42}},
		{Opcode: tac.LABEL, Result: tac.Operand{Tag: tac.OperandLabel, LabelID: 2}},
		{Opcode: tac.CALL, Result: tac.Operand{Tag: tac.OperandTemp, TempID: 5}, Operand1: tac.Operand{Tag: tac.OperandLabel, LabelID: 1}},
		{Opcode: tac.NOP},
	}
	require.NoError(t, e.Load(code))
	require.NoError(t, e.Run())
	assert.Equal(t, int32(42), e.GetTemp(5).Int)
	assert.Equal(t, int32(42), e.GetTemp(0).Int, "RETURN also stores into temp slot 0")
}

func TestStackOverflowOnRecursiveCallBeyondMaxDepth(t *testing.T) {
	e := vm.New(vm.Config{NumTemps: 4, NumVars: 4, HeapBytes: 16, MaxCallDepth: 2, MaxSteps: 1000}, nil)
	code := []tac.Instruction{
		{Opcode: tac.LABEL, Result: tac.Operand{Tag: tac.OperandLabel, LabelID: 1}},
		{Opcode: tac.CALL, Operand1: tac.Operand{Tag: tac.OperandLabel, LabelID: 1}},
	}
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)
	assert.Equal(t, vm.FaultStackOverflow, e.LastFault().Code)
}

func TestMaxStepsCeilingStopsMalformedLoop(t *testing.T) {
	e := vm.New(vm.Config{NumTemps: 4, NumVars: 4, HeapBytes: 16, MaxCallDepth: 8, MaxSteps: 5}, nil)
	code := []tac.Instruction{
		{Opcode: tac.GOTO, Operand1: tac.Operand{Tag: tac.OperandImmediate, Immediate: 0}},
	}
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)
	assert.Equal(t, vm.FaultMaxSteps, e.LastFault().Code)
}

func TestLoadRejectsMalformedLabels(t *testing.T) {
	e := newEngine()
	code := []tac.Instruction{{Opcode: tac.LABEL}}
	err := e.Load(code)
	assert.Error(t, err)
}

func TestSetEntryFunctionHeuristic(t *testing.T) {
	e := newEngine()
	code := []tac.Instruction{
		{Opcode: tac.LABEL, Result: tac.Operand{Tag: tac.OperandLabel, LabelID: 1}},
		{Opcode: tac.NOP},
		{Opcode: tac.LABEL, Result: tac.Operand{Tag: tac.OperandLabel, LabelID: 2}},
		{Opcode: tac.RETURN_VOID},
	}
	require.NoError(t, e.Load(code))
	require.NoError(t, e.SetEntryFunction("main"))
	assert.Equal(t, 2, e.PC(), "two labels present: heuristic picks the second")
}
