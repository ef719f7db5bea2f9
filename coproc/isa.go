package coproc

import (
	"ledstack-go/errcode"
	"ledstack-go/x/strconvx"
)

// Op is a coprocessor opcode. The set mirrors a small timer/comparator
// machine: four registers, immediate arithmetic, word loads and stores
// against retained memory, one compare-and-branch and an input read.
type Op uint8

const (
	OpHalt  Op = iota // end of activation
	OpMovi            // R[A] = Imm
	OpLd              // R[A] = mem[Imm]
	OpSt              // mem[Imm] = R[A]
	OpAddi            // R[A] += Imm
	OpBl              // if R[A] < Imm goto Label
	OpJump            // goto Label
	OpLabel           // branch target, no effect
	OpRdio            // R[A] = presence level (0 or 1)
	OpWake            // assert wake to the main core
)

const NumRegs = 4

// Reg names a register.
type Reg uint8

const (
	R0 Reg = iota
	R1
	R2
	R3
)

// Instr is one source instruction. Branches name their target by Label;
// Assemble resolves it.
type Instr struct {
	Op    Op
	A     Reg
	Imm   int32
	Label string
}

func MOVI(r Reg, imm int32) Instr         { return Instr{Op: OpMovi, A: r, Imm: imm} }
func LD(r Reg, addr int32) Instr          { return Instr{Op: OpLd, A: r, Imm: addr} }
func ST(r Reg, addr int32) Instr          { return Instr{Op: OpSt, A: r, Imm: addr} }
func ADDI(r Reg, imm int32) Instr         { return Instr{Op: OpAddi, A: r, Imm: imm} }
func BL(r Reg, imm int32, l string) Instr { return Instr{Op: OpBl, A: r, Imm: imm, Label: l} }
func JUMP(l string) Instr                 { return Instr{Op: OpJump, Label: l} }
func LABEL(l string) Instr                { return Instr{Op: OpLabel, Label: l} }
func RDIO(r Reg) Instr                    { return Instr{Op: OpRdio, A: r} }
func WAKE() Instr                         { return Instr{Op: OpWake} }
func HALT() Instr                         { return Instr{Op: OpHalt} }

// Program is an assembled, label-resolved instruction stream.
type Program struct {
	code   []Instr
	target []int // branch target per instruction, -1 when unused
}

func (p *Program) Len() int { return len(p.code) }

// DefaultProgramWords is the instruction capacity of the program memory.
const DefaultProgramWords = 64

// Assemble resolves labels and checks the program fits in capacity words.
func Assemble(src []Instr, capacity int) (*Program, error) {
	const op = "coproc.assemble"
	if capacity <= 0 {
		capacity = DefaultProgramWords
	}
	if len(src) == 0 {
		return nil, errcode.New(errcode.ProgramLoadFailed, op, "empty program")
	}
	if len(src) > capacity {
		return nil, errcode.New(errcode.ProgramLoadFailed, op,
			"program of "+strconvx.Itoa(len(src))+" words exceeds "+strconvx.Itoa(capacity))
	}
	labels := make(map[string]int)
	for i, in := range src {
		if in.Op != OpLabel {
			continue
		}
		if _, dup := labels[in.Label]; dup {
			return nil, errcode.New(errcode.ProgramLoadFailed, op, "duplicate label "+in.Label)
		}
		labels[in.Label] = i
	}
	p := &Program{code: append([]Instr(nil), src...), target: make([]int, len(src))}
	for i, in := range src {
		p.target[i] = -1
		if in.A >= NumRegs {
			return nil, errcode.New(errcode.ProgramLoadFailed, op, "bad register at "+strconvx.Itoa(i))
		}
		if in.Op == OpBl || in.Op == OpJump {
			at, ok := labels[in.Label]
			if !ok {
				return nil, errcode.New(errcode.ProgramLoadFailed, op, "unknown label "+in.Label)
			}
			p.target[i] = at
		}
		if in.Op > OpWake {
			return nil, errcode.New(errcode.ProgramLoadFailed, op, "bad opcode at "+strconvx.Itoa(i))
		}
	}
	return p, nil
}
