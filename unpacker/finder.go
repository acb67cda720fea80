package unpacker

import (
	"github.com/ruinedyourlife/tfm-unpacker/swf/abc"
)

// stringSequence is one obfuscated character: `this.someMethod()`.
var stringSequence = []abc.Opcode{abc.OpGetLocal0, abc.OpCallProperty}

// MethodTable maps the name of a character method to the byte it returns.
type MethodTable map[uint32]byte

// StringFinder rebuilds strings written as chains of character method calls
// joined by `add`.
type StringFinder struct {
	prog    abc.Cursor
	methods MethodTable
}

func NewStringFinder(prog abc.Cursor, methods MethodTable) *StringFinder {
	return &StringFinder{prog: prog, methods: methods}
}

func (f *StringFinder) isAddString() bool {
	return f.prog.Is(abc.OpAdd) || f.prog.IsSequence(stringSequence)
}

// MatchTarget consumes one character per byte of target and reports whether
// they all decode to target. On mismatch the rest of the string is skipped.
func (f *StringFinder) MatchTarget(target string) bool {
	for i := 0; i < len(target); i++ {
		name, ok := f.nextChar()
		if ok {
			if b, known := f.methods[name]; known && b == target[i] {
				continue
			}
		}
		f.skipString()
		return false
	}
	return true
}

// NextString moves to the next character call without consuming it.
func (f *StringFinder) NextString() bool {
	return f.prog.SkipUntilSequence(stringSequence)
}

func (f *StringFinder) skipString() {
	for f.isAddString() {
		if !f.prog.Is(abc.OpAdd) {
			f.prog.Next()
		}
		f.prog.Next()
	}
}

// nextChar consumes one character call, with any leading `add`, and returns
// the called property.
func (f *StringFinder) nextChar() (uint32, bool) {
	if !f.isAddString() {
		return 0, false
	}
	for f.prog.Is(abc.OpAdd) {
		f.prog.Next()
	}
	// getlocal0
	f.prog.Next()

	ins, ok := f.prog.Get()
	if !ok || ins.Op != abc.OpCallProperty {
		return 0, false
	}
	f.prog.Next()
	return ins.Arg(0), true
}

// Build decodes the string starting at the next character call. Calls to
// methods missing from the table are dropped.
func (f *StringFinder) Build() []byte {
	var str []byte
	if !f.prog.IsSequence(stringSequence) {
		f.NextString()
	}
	for {
		name, ok := f.nextChar()
		if !ok {
			return str
		}
		if b, known := f.methods[name]; known {
			str = append(str, b)
		}
	}
}
