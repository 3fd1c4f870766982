package vm

import "github.com/cc99/cc99/internal/tac"

func (e *Engine) dispatch(instr tac.Instruction) error {
	switch instr.Opcode {
	case tac.NOP, tac.LABEL:
		e.pc++
		return nil

	case tac.ASSIGN:
		v, err := e.read(instr.Operand1)
		if err != nil {
			return err
		}
		if err := e.write(instr.Result, v); err != nil {
			return err
		}
		e.pc++
		return nil

	case tac.ADD, tac.SUB, tac.MUL, tac.DIV, tac.MOD:
		return e.arith(instr)

	case tac.AND, tac.OR, tac.XOR, tac.SHL, tac.SHR:
		return e.bitwise(instr)

	case tac.LOGICAL_AND, tac.LOGICAL_OR:
		return e.logical(instr)

	case tac.EQ, tac.NE, tac.LT, tac.LE, tac.GT, tac.GE:
		return e.relational(instr)

	case tac.NEG, tac.NOT, tac.BITWISE_NOT:
		return e.unary(instr)

	case tac.GOTO:
		addr, err := e.resolveTarget(instr.Operand1)
		if err != nil {
			return err
		}
		e.pc = addr
		return nil

	case tac.IF_TRUE, tac.IF_FALSE:
		cond, err := e.read(instr.Operand1)
		if err != nil {
			return err
		}
		take := cond.truthy()
		if instr.Opcode == tac.IF_FALSE {
			take = !take
		}
		if take {
			addr, err := e.resolveTarget(instr.Operand2)
			if err != nil {
				return err
			}
			e.pc = addr
			return nil
		}
		e.pc++
		return nil

	case tac.CALL:
		return e.call(instr)

	case tac.PARAM:
		return e.param(instr)

	case tac.RETURN:
		return e.doReturn(instr, true)
	case tac.RETURN_VOID:
		return e.doReturn(instr, false)

	case tac.LOAD, tac.STORE, tac.ADDR, tac.INDEX, tac.MEMBER, tac.MEMBER_PTR, tac.CAST, tac.SIZEOF, tac.PHI:
		// Stub semantics: forward operand1 to result with a typed (if
		// not fully realized) result, documented in spec.md §4.K.
		v, err := e.read(instr.Operand1)
		if err != nil {
			return err
		}
		if err := e.write(instr.Result, v); err != nil {
			return err
		}
		e.pc++
		return nil
	}
	return e.fault(FaultInvalidOpcode)
}

func (e *Engine) read(op tac.Operand) (Value, error) {
	switch op.Tag {
	case tac.OperandImmediate:
		return intVal(op.Immediate), nil
	case tac.OperandTemp:
		if int(op.TempID) >= len(e.temps) {
			return Value{}, e.fault(FaultInvalidOperand)
		}
		return e.temps[op.TempID], nil
	case tac.OperandVar:
		if int(op.VarID) >= len(e.vars) {
			return Value{}, e.fault(FaultInvalidOperand)
		}
		return e.vars[op.VarID], nil
	}
	return Value{}, e.fault(FaultInvalidOperand)
}

func (e *Engine) write(op tac.Operand, v Value) error {
	switch op.Tag {
	case tac.OperandTemp:
		if int(op.TempID) >= len(e.temps) {
			return e.fault(FaultInvalidOperand)
		}
		e.temps[op.TempID] = v
		return nil
	case tac.OperandVar:
		if int(op.VarID) >= len(e.vars) {
			return e.fault(FaultInvalidOperand)
		}
		e.vars[op.VarID] = v
		return nil
	}
	return e.fault(FaultInvalidOperand)
}

func (e *Engine) writeVarSlot(slot int, v Value) error {
	if slot < 0 || slot >= len(e.vars) {
		return e.fault(FaultInvalidOperand)
	}
	e.vars[slot] = v
	return nil
}

func (e *Engine) resolveTarget(op tac.Operand) (int, error) {
	switch op.Tag {
	case tac.OperandImmediate:
		addr := int(op.Immediate)
		if addr < 0 || addr > len(e.code) {
			return 0, e.fault(FaultInvalidMemory)
		}
		return addr, nil
	case tac.OperandLabel:
		addr, ok := e.labels[op.LabelID]
		if !ok {
			return 0, e.fault(FaultInvalidMemory)
		}
		return addr, nil
	}
	return 0, e.fault(FaultInvalidOperand)
}

func (e *Engine) arith(instr tac.Instruction) error {
	a, err := e.read(instr.Operand1)
	if err != nil {
		return err
	}
	b, err := e.read(instr.Operand2)
	if err != nil {
		return err
	}
	// Mixed-type promotion is not performed: the operator uses the type
	// of operand1 (spec.md §4.K).
	var result Value
	if a.IsFloat {
		bf := b.Float
		if !b.IsFloat {
			bf = float32(b.Int)
		}
		switch instr.Opcode {
		case tac.ADD:
			result = floatVal(a.Float + bf)
		case tac.SUB:
			result = floatVal(a.Float - bf)
		case tac.MUL:
			result = floatVal(a.Float * bf)
		case tac.DIV:
			if bf == 0 {
				return e.fault(FaultDivisionByZero)
			}
			result = floatVal(a.Float / bf)
		case tac.MOD:
			return e.fault(FaultInvalidOperand)
		}
	} else {
		bi := b.Int
		if b.IsFloat {
			bi = int32(b.Float)
		}
		switch instr.Opcode {
		case tac.ADD:
			result = intVal(a.Int + bi)
		case tac.SUB:
			result = intVal(a.Int - bi)
		case tac.MUL:
			result = intVal(a.Int * bi)
		case tac.DIV:
			if bi == 0 {
				return e.fault(FaultDivisionByZero)
			}
			result = intVal(a.Int / bi)
		case tac.MOD:
			if bi == 0 {
				return e.fault(FaultDivisionByZero)
			}
			result = intVal(a.Int % bi)
		}
	}
	if err := e.write(instr.Result, result); err != nil {
		return err
	}
	e.pc++
	return nil
}

func (e *Engine) bitwise(instr tac.Instruction) error {
	a, err := e.read(instr.Operand1)
	if err != nil {
		return err
	}
	b, err := e.read(instr.Operand2)
	if err != nil {
		return err
	}
	if a.IsFloat || b.IsFloat {
		return e.fault(FaultInvalidOperand)
	}
	var r int32
	switch instr.Opcode {
	case tac.AND:
		r = a.Int & b.Int
	case tac.OR:
		r = a.Int | b.Int
	case tac.XOR:
		r = a.Int ^ b.Int
	case tac.SHL:
		r = a.Int << uint32(b.Int)
	case tac.SHR:
		r = a.Int >> uint32(b.Int)
	}
	if err := e.write(instr.Result, intVal(r)); err != nil {
		return err
	}
	e.pc++
	return nil
}

func (e *Engine) logical(instr tac.Instruction) error {
	a, err := e.read(instr.Operand1)
	if err != nil {
		return err
	}
	b, err := e.read(instr.Operand2)
	if err != nil {
		return err
	}
	var r bool
	if instr.Opcode == tac.LOGICAL_AND {
		r = a.truthy() && b.truthy()
	} else {
		r = a.truthy() || b.truthy()
	}
	v := int32(0)
	if r {
		v = 1
	}
	if err := e.write(instr.Result, intVal(v)); err != nil {
		return err
	}
	e.pc++
	return nil
}

func (e *Engine) relational(instr tac.Instruction) error {
	a, err := e.read(instr.Operand1)
	if err != nil {
		return err
	}
	b, err := e.read(instr.Operand2)
	if err != nil {
		return err
	}
	var cmp int
	if a.IsFloat {
		bf := b.Float
		if !b.IsFloat {
			bf = float32(b.Int)
		}
		switch {
		case a.Float < bf:
			cmp = -1
		case a.Float > bf:
			cmp = 1
		}
	} else {
		bi := b.Int
		if b.IsFloat {
			bi = int32(b.Float)
		}
		switch {
		case a.Int < bi:
			cmp = -1
		case a.Int > bi:
			cmp = 1
		}
	}
	var r bool
	switch instr.Opcode {
	case tac.EQ:
		r = cmp == 0
	case tac.NE:
		r = cmp != 0
	case tac.LT:
		r = cmp < 0
	case tac.LE:
		r = cmp <= 0
	case tac.GT:
		r = cmp > 0
	case tac.GE:
		r = cmp >= 0
	}
	v := int32(0)
	if r {
		v = 1
	}
	if err := e.write(instr.Result, intVal(v)); err != nil {
		return err
	}
	e.pc++
	return nil
}

func (e *Engine) unary(instr tac.Instruction) error {
	a, err := e.read(instr.Operand1)
	if err != nil {
		return err
	}
	var r Value
	switch instr.Opcode {
	case tac.NEG:
		if a.IsFloat {
			r = floatVal(-a.Float)
		} else {
			r = intVal(-a.Int)
		}
	case tac.NOT:
		if a.truthy() {
			r = intVal(0)
		} else {
			r = intVal(1)
		}
	case tac.BITWISE_NOT:
		if a.IsFloat {
			return e.fault(FaultInvalidOperand)
		}
		r = intVal(^a.Int)
	}
	if err := e.write(instr.Result, r); err != nil {
		return err
	}
	e.pc++
	return nil
}

func (e *Engine) call(instr tac.Instruction) error {
	if len(e.callStack) >= e.cfg.MaxCallDepth {
		return e.fault(FaultStackOverflow)
	}
	target, err := e.resolveTarget(instr.Operand1)
	if err != nil {
		return err
	}
	e.callStack = append(e.callStack, frame{returnPC: e.pc + 1, callResult: instr.Result})
	e.paramCount = 0
	e.pc = target
	return nil
}

// param implements spec.md §4.K's documented PARAM placement rule: a
// single-parameter call (no other PARAM between this one and the next
// CALL) routes into variable slot 3; otherwise the n-th PARAM in this
// call's episode lands in variable slot (n+1). Flagged as a compatibility
// shim pending verification against the real calling convention
// (spec.md §9 open question).
func (e *Engine) param(instr tac.Instruction) error {
	v, err := e.read(instr.Operand1)
	if err != nil {
		return err
	}
	isFirst := e.paramCount == 0
	isSingle := isFirst && e.pc+1 < len(e.code) && e.code[e.pc+1].Opcode == tac.CALL
	var slot int
	if isSingle {
		slot = 3
	} else {
		slot = e.paramCount + 1 + 1 // 1-indexed param number, then +1 for slot (n+1)
	}
	e.paramCount++
	if err := e.writeVarSlot(slot, v); err != nil {
		return err
	}
	e.pc++
	return nil
}

func (e *Engine) doReturn(instr tac.Instruction, hasValue bool) error {
	var v Value
	if hasValue {
		var err error
		v, err = e.read(instr.Operand1)
		if err != nil {
			return err
		}
	}
	if len(e.callStack) == 0 {
		e.state = StateFinished
		return nil
	}
	top := e.callStack[len(e.callStack)-1]
	e.callStack = e.callStack[:len(e.callStack)-1]
	if hasValue {
		e.temps[0] = v
		if top.callResult.Tag != tac.OperandNone {
			if err := e.write(top.callResult, v); err != nil {
				return err
			}
		}
	}
	e.pc = top.returnPC
	return nil
}
