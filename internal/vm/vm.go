// Package vm implements the TAC interpreter (spec.md §4.K): a small
// register/temp/variable machine with a label-resolution pass, call/return
// discipline, and per-opcode semantics, used to validate generated IR.
package vm

import (
	"go.uber.org/zap"

	"github.com/cc99/cc99/internal/tac"
)

// State is the engine's run state.
type State uint8

const (
	StateStopped State = iota
	StateRunning
	StatePaused
	StateFinished
	StateError
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateFinished:
		return "FINISHED"
	case StateError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// FaultCode enumerates the VM-runtime fault classes spec.md §7 names.
type FaultCode uint8

const (
	FaultNone FaultCode = iota
	FaultInvalidOpcode
	FaultInvalidOperand
	FaultDivisionByZero
	FaultInvalidMemory
	FaultStackOverflow
	FaultMaxSteps
)

func (f FaultCode) String() string {
	switch f {
	case FaultNone:
		return "NONE"
	case FaultInvalidOpcode:
		return "INVALID_OPCODE"
	case FaultInvalidOperand:
		return "INVALID_OPERAND"
	case FaultDivisionByZero:
		return "DIVISION_BY_ZERO"
	case FaultInvalidMemory:
		return "INVALID_MEMORY"
	case FaultStackOverflow:
		return "STACK_OVERFLOW"
	case FaultMaxSteps:
		return "MAX_STEPS"
	}
	return "UNKNOWN"
}

// Fault is the VM's typed runtime error.
type Fault struct {
	Code FaultCode
	PC   int
}

func (f *Fault) Error() string { return f.Code.String() }

// Value is a tagged int32/float32 runtime value: spec.md §4.K treats both
// as first class and never promotes between them implicitly.
type Value struct {
	IsFloat bool
	Int     int32
	Float   float32
}

func intVal(i int32) Value   { return Value{Int: i} }
func floatVal(f float32) Value { return Value{IsFloat: true, Float: f} }

func (v Value) truthy() bool {
	if v.IsFloat {
		return v.Float != 0
	}
	return v.Int != 0
}

type frame struct {
	returnPC   int
	callResult tac.Operand
}

// Config bundles the resource ceilings the engine enforces.
type Config struct {
	NumTemps     int
	NumVars      int
	HeapBytes    int
	MaxCallDepth int
	MaxSteps     uint64
}

// Engine is one TAC interpreter instance.
type Engine struct {
	cfg Config
	log *zap.SugaredLogger

	code   []tac.Instruction
	labels tac.LabelTable

	temps []Value
	vars  []Value
	heap  []byte
	heapPos int

	pc         int
	steps      uint64
	state      State
	lastFault  *Fault
	callStack  []frame
	paramCount int // PARAMs issued since the last CALL was dispatched
}

// New constructs a STOPPED engine with the given resource ceilings.
func New(cfg Config, log *zap.SugaredLogger) *Engine {
	return &Engine{
		cfg:   cfg,
		log:   log,
		temps: make([]Value, cfg.NumTemps),
		vars:  make([]Value, cfg.NumVars),
		heap:  make([]byte, cfg.HeapBytes),
		state: StateStopped,
	}
}

// Load copies code into engine memory and builds the label table. Fails
// if the engine is not STOPPED, or if a GOTO, IF_TRUE, IF_FALSE or CALL
// names a label that no LABEL instruction defines.
func (e *Engine) Load(code []tac.Instruction) error {
	if e.state != StateStopped {
		return &Fault{Code: FaultInvalidOperand, PC: e.pc}
	}
	labels, err := tac.BuildLabelTable(code)
	if err != nil {
		return err
	}
	for addr, instr := range code {
		target := instr.Operand1
		switch instr.Opcode {
		case tac.GOTO, tac.CALL:
		case tac.IF_TRUE, tac.IF_FALSE:
			target = instr.Operand2
		default:
			continue
		}
		if _, ok := labels[target.LabelID]; target.Tag == tac.OperandLabel && !ok {
			return &Fault{Code: FaultInvalidMemory, PC: addr}
		}
	}
	e.code = append([]tac.Instruction(nil), code...)
	e.labels = labels
	e.pc = 0
	return nil
}

// SetEntryPoint positions PC at a raw instruction address.
func (e *Engine) SetEntryPoint(addr int) { e.pc = addr }

// SetEntryLabel positions PC at a resolved label.
func (e *Engine) SetEntryLabel(id uint16) error {
	addr, ok := e.labels[id]
	if !ok {
		return &Fault{Code: FaultInvalidMemory, PC: e.pc}
	}
	e.pc = addr
	return nil
}

// SetEntryFunction resolves a canonical "main" by counting LABEL
// instructions and choosing among them by a documented heuristic: one
// function → its label; two → the second; otherwise the first. This is a
// compatibility shim for the source's get_entry_function("main") behavior
// (spec.md §9 open question) pending a real FunctionTable from the
// generator stage; name is accepted for interface symmetry but unused.
func (e *Engine) SetEntryFunction(name string) error {
	var ids []uint16
	for _, instr := range e.code {
		if instr.Opcode != tac.LABEL {
			continue
		}
		switch {
		case instr.Result.Tag == tac.OperandLabel:
			ids = append(ids, instr.Result.LabelID)
		case instr.Operand1.Tag == tac.OperandLabel:
			ids = append(ids, instr.Operand1.LabelID)
		}
	}
	var chosen uint16
	switch len(ids) {
	case 0:
		return &Fault{Code: FaultInvalidMemory, PC: e.pc}
	case 1:
		chosen = ids[0]
	case 2:
		chosen = ids[1]
	default:
		chosen = ids[0]
	}
	return e.SetEntryLabel(chosen)
}

// Reset zeroes PC, step count, and error, retaining loaded code.
func (e *Engine) Reset() {
	e.pc = 0
	e.steps = 0
	e.lastFault = nil
	e.callStack = nil
	e.paramCount = 0
	e.state = StateStopped
}

// State returns the engine's current state.
func (e *Engine) State() State { return e.state }

// PC returns the current program counter.
func (e *Engine) PC() int { return e.pc }

// StepCount returns the number of instructions dispatched so far.
func (e *Engine) StepCount() uint64 { return e.steps }

// LastFault returns the fault that transitioned the engine to ERROR, if any.
func (e *Engine) LastFault() *Fault { return e.lastFault }

// GetTemp returns a temp slot's value; out-of-range ids return the zero
// value (post-mortem inspection remains total).
func (e *Engine) GetTemp(id int) Value {
	if id < 0 || id >= len(e.temps) {
		return Value{}
	}
	return e.temps[id]
}

// GetVar returns a variable slot's value; out-of-range ids return the zero
// value.
func (e *Engine) GetVar(id int) Value {
	if id < 0 || id >= len(e.vars) {
		return Value{}
	}
	return e.vars[id]
}

// Run transitions STOPPED→RUNNING and dispatches instructions until PC
// reaches the end of code, FINISHED is set by a top-level RETURN, the step
// ceiling is hit, or an opcode faults.
func (e *Engine) Run() error {
	e.state = StateRunning
	for e.state == StateRunning {
		if e.pc >= len(e.code) {
			e.state = StateFinished
			break
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step dispatches exactly one instruction.
func (e *Engine) Step() error {
	e.steps++
	if e.steps > e.cfg.MaxSteps {
		return e.fault(FaultMaxSteps)
	}
	if e.pc < 0 || e.pc >= len(e.code) {
		return e.fault(FaultInvalidMemory)
	}
	instr := e.code[e.pc]
	if e.log != nil {
		e.log.Debugw("vm step", "pc", e.pc, "opcode", instr.Opcode)
	}
	return e.dispatch(instr)
}

func (e *Engine) fault(code FaultCode) error {
	f := &Fault{Code: code, PC: e.pc}
	e.lastFault = f
	e.state = StateError
	return f
}
