package abc

import (
	"fmt"
	"strings"
)

// Instruction is one decoded opcode with its raw operands.
//
// Operands keep their encoded order. s24 branch offsets are stored as the
// two's complement of their signed value. lookupswitch stores the default
// offset, the case count and then every case offset.
type Instruction struct {
	Offset int
	Op     Opcode
	Args   []uint32
}

// Arg returns operand i, or 0 when the instruction has fewer operands.
func (ins Instruction) Arg(i int) uint32 {
	if i < 0 || i >= len(ins.Args) {
		return 0
	}
	return ins.Args[i]
}

func (ins Instruction) String() string {
	if len(ins.Args) == 0 {
		return ins.Op.String()
	}
	args := make([]string, len(ins.Args))
	for i, a := range ins.Args {
		args[i] = fmt.Sprint(a)
	}
	return ins.Op.String() + " " + strings.Join(args, ", ")
}

// Decode walks a method body and returns its instructions in order.
func Decode(code []byte) ([]Instruction, error) {
	r := newReader(code)
	var out []Instruction
	for r.remaining() > 0 {
		offset := r.pos
		b, _ := r.u8()
		op := Opcode(b)
		info, ok := opcodes[op]
		if !ok {
			return nil, fmt.Errorf("%w 0x%02x at offset %d", ErrUnknownOpcode, b, offset)
		}

		ins := Instruction{Offset: offset, Op: op}
		var err error
		if op == OpLookupSwitch {
			ins.Args, err = decodeLookupSwitch(r)
		} else {
			ins.Args, err = decodeOperands(r, info.operands)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s at offset %d: %w", op, offset, err)
		}
		out = append(out, ins)
	}
	return out, nil
}

func decodeOperands(r *reader, operands []operand) ([]uint32, error) {
	if len(operands) == 0 {
		return nil, nil
	}
	args := make([]uint32, len(operands))
	for i, kind := range operands {
		switch kind {
		case argU8:
			v, err := r.u8()
			if err != nil {
				return nil, err
			}
			args[i] = uint32(v)
		case argU30:
			v, err := r.u30()
			if err != nil {
				return nil, err
			}
			args[i] = v
		case argS24:
			v, err := r.s24()
			if err != nil {
				return nil, err
			}
			args[i] = uint32(v)
		}
	}
	return args, nil
}

func decodeLookupSwitch(r *reader) ([]uint32, error) {
	def, err := r.s24()
	if err != nil {
		return nil, err
	}
	count, err := r.u30()
	if err != nil {
		return nil, err
	}
	// case_count + 1 offsets follow
	if int(count)+1 > r.remaining()/3 {
		return nil, fmt.Errorf("%w: lookupswitch with %d cases", ErrTruncated, count)
	}
	args := make([]uint32, 0, count+3)
	args = append(args, uint32(def), count)
	for i := uint32(0); i <= count; i++ {
		v, err := r.s24()
		if err != nil {
			return nil, err
		}
		args = append(args, uint32(v))
	}
	return args, nil
}

// Encode is the inverse of Decode. Offsets of the given instructions are ignored.
func Encode(instructions []Instruction) ([]byte, error) {
	var out []byte
	for _, ins := range instructions {
		info, ok := opcodes[ins.Op]
		if !ok {
			return nil, fmt.Errorf("%w 0x%02x", ErrUnknownOpcode, uint8(ins.Op))
		}
		out = append(out, byte(ins.Op))

		if ins.Op == OpLookupSwitch {
			if len(ins.Args) < 2 || len(ins.Args) != int(ins.Args[1])+3 {
				return nil, fmt.Errorf("encoding lookupswitch: bad operand count %d", len(ins.Args))
			}
			out = appendS24(out, int32(ins.Args[0]))
			out = appendU32(out, ins.Args[1])
			for _, v := range ins.Args[2:] {
				out = appendS24(out, int32(v))
			}
			continue
		}

		if len(ins.Args) != len(info.operands) {
			return nil, fmt.Errorf("encoding %s: want %d operands, got %d", ins.Op, len(info.operands), len(ins.Args))
		}
		for i, kind := range info.operands {
			switch kind {
			case argU8:
				out = append(out, byte(ins.Args[i]))
			case argU30:
				out = appendU32(out, ins.Args[i])
			case argS24:
				out = appendS24(out, int32(ins.Args[i]))
			}
		}
	}
	return out, nil
}
