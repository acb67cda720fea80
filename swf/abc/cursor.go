package abc

// Cursor is a forward-only view over the instructions of one method body.
type Cursor interface {
	// Get returns the current instruction; ok is false past the end.
	Get() (ins Instruction, ok bool)
	// Next advances by one instruction and reports whether one remains.
	Next() bool
	HasNext() bool
	Is(op Opcode) bool
	IsSequence(ops []Opcode) bool
	// SkipUntil advances until the current instruction is op. The current
	// instruction is checked first, so a match leaves the cursor unmoved.
	SkipUntil(op Opcode) bool
	// SkipUntilSequence advances until ops match starting at the current instruction.
	SkipUntilSequence(ops []Opcode) bool
	Pos() int
}

// Program is the Cursor over a decoded instruction list.
type Program struct {
	ins []Instruction
	pos int
}

func NewProgram(instructions []Instruction) *Program {
	return &Program{ins: instructions}
}

func (p *Program) Get() (Instruction, bool) {
	if p.pos >= len(p.ins) {
		return Instruction{}, false
	}
	return p.ins[p.pos], true
}

func (p *Program) Next() bool {
	if p.pos < len(p.ins) {
		p.pos++
	}
	return p.pos < len(p.ins)
}

func (p *Program) HasNext() bool {
	return p.pos < len(p.ins)
}

func (p *Program) Is(op Opcode) bool {
	return p.pos < len(p.ins) && p.ins[p.pos].Op == op
}

func (p *Program) IsSequence(ops []Opcode) bool {
	if p.pos+len(ops) > len(p.ins) {
		return false
	}
	for i, op := range ops {
		if p.ins[p.pos+i].Op != op {
			return false
		}
	}
	return true
}

func (p *Program) SkipUntil(op Opcode) bool {
	for ; p.pos < len(p.ins); p.pos++ {
		if p.ins[p.pos].Op == op {
			return true
		}
	}
	return false
}

func (p *Program) SkipUntilSequence(ops []Opcode) bool {
	for ; p.pos < len(p.ins); p.pos++ {
		if p.IsSequence(ops) {
			return true
		}
	}
	return false
}

func (p *Program) Pos() int {
	return p.pos
}

// Len is the number of instructions in the program.
func (p *Program) Len() int {
	return len(p.ins)
}
