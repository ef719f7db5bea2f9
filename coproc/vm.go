package coproc

import (
	"ledstack-go/errcode"
	"ledstack-go/rtcmem"
	"ledstack-go/x/strconvx"
)

// DefaultBudget bounds the instructions one activation may execute.
const DefaultBudget = 256

// VM executes activations of a Program against retained memory.
type VM struct {
	Mem    *rtcmem.Memory
	Input  func() bool // presence level
	Budget int
}

// Run executes prog from its first instruction until HALT, the end of the
// code or the budget. It reports whether WAKE executed. Registers start at
// zero on every activation; only retained memory carries state.
func (vm *VM) Run(prog *Program) (woke bool, err error) {
	const op = "coproc.run"
	budget := vm.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	var r [NumRegs]uint32
	pc := 0
	for steps := 0; pc < len(prog.code); steps++ {
		if steps >= budget {
			return woke, errcode.New(errcode.Timeout, op, "instruction budget exhausted")
		}
		in := prog.code[pc]
		pc++
		switch in.Op {
		case OpHalt:
			return woke, nil
		case OpMovi:
			r[in.A] = uint32(in.Imm)
		case OpAddi:
			r[in.A] += uint32(in.Imm)
		case OpLd, OpSt:
			addr := int(in.Imm)
			if !vm.Mem.InRange(addr) {
				return woke, errcode.New(errcode.InvalidParams, op, "address "+strconvx.Itoa(addr)+" out of range")
			}
			if in.Op == OpLd {
				r[in.A] = vm.Mem.Load(addr)
			} else {
				vm.Mem.Store(addr, r[in.A])
			}
		case OpBl:
			if r[in.A] < uint32(in.Imm) {
				pc = prog.target[pc-1]
			}
		case OpJump:
			pc = prog.target[pc-1]
		case OpLabel:
		case OpRdio:
			r[in.A] = 0
			if vm.Input != nil && vm.Input() {
				r[in.A] = 1
			}
		case OpWake:
			woke = true
		}
	}
	return woke, nil
}
