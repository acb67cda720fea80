package unpacker

import (
	"strings"
	"testing"

	"github.com/ruinedyourlife/tfm-unpacker/swf"
	"github.com/ruinedyourlife/tfm-unpacker/swf/abc"
)

const testKeymap = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

// charName is the trait name of the method returning testKeymap[i].
func charName(i int) uint32 {
	return uint32(1000 + i)
}

func op(o abc.Opcode, args ...uint32) abc.Instruction {
	return abc.Instruction{Op: o, Args: args}
}

func char(name uint32) []abc.Instruction {
	return []abc.Instruction{op(abc.OpGetLocal0), op(abc.OpCallProperty, name, 0)}
}

// spell emits s the way the loader builds its strings:
// `this.a() + this.b() + this.c()`.
func spell(t *testing.T, s string) []abc.Instruction {
	t.Helper()
	var out []abc.Instruction
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(testKeymap, s[i])
		if idx < 0 {
			t.Fatalf("character %q is not in the test keymap", s[i])
		}
		out = append(out, char(charName(idx))...)
		if i > 0 {
			out = append(out, op(abc.OpAdd))
		}
	}
	return out
}

// writeBytes emits `this[<"writeBytes">](new (getDefinitionByName(<name>)))`.
func writeBytes(t *testing.T, name string) []abc.Instruction {
	t.Helper()
	var out []abc.Instruction
	out = append(out, op(abc.OpGetLocal0))
	out = append(out, spell(t, DefaultMarker)...)
	out = append(out, op(abc.OpFindPropStrict, 3))
	out = append(out, spell(t, name)...)
	out = append(out,
		op(abc.OpCallProperty, 3, 1),
		op(abc.OpConstruct, 0),
		op(abc.OpCallPropVoid, 4, 1),
	)
	return out
}

func body(t *testing.T, maxStack uint32, ins []abc.Instruction) *abc.MethodBody {
	t.Helper()
	code, err := abc.Encode(ins)
	if err != nil {
		t.Fatalf("encoding body: %v", err)
	}
	return &abc.MethodBody{MaxStack: maxStack, Code: code}
}

type fixture struct {
	file  *abc.File
	class *abc.Class
}

// newFixture builds a frame1 class whose initializer pushes keymap and whose
// constructor runs ctor right after super().
func newFixture(t *testing.T, keymap string, ctor []abc.Instruction) *fixture {
	t.Helper()
	f := &fixture{
		file:  &abc.File{},
		class: &abc.Class{CInit: 0, IInit: 1},
	}
	f.file.ConstantPool.Strings = []string{"", keymap}
	f.file.Classes = []*abc.Class{f.class}

	cinit := []abc.Instruction{op(abc.OpGetLocal0), op(abc.OpPushScope)}
	if keymap != "" {
		cinit = append(cinit, op(abc.OpPushString, 1), op(abc.OpInitProperty, 2))
	}
	cinit = append(cinit, op(abc.OpReturnVoid))
	f.addMethod(&abc.Method{Body: body(t, 2, cinit)})

	iinit := []abc.Instruction{
		op(abc.OpGetLocal0), op(abc.OpPushScope),
		op(abc.OpGetLocal0), op(abc.OpConstructSuper, 0),
	}
	iinit = append(iinit, ctor...)
	iinit = append(iinit, op(abc.OpReturnVoid))
	f.addMethod(&abc.Method{Body: body(t, 4, iinit)})
	return f
}

func (f *fixture) addMethod(m *abc.Method) uint32 {
	f.file.Methods = append(f.file.Methods, m)
	return uint32(len(f.file.Methods) - 1)
}

// addCharMethod adds `function name(...rest) { return keymap.charAt(idx) }`.
func (f *fixture) addCharMethod(t *testing.T, name uint32, idx uint8) {
	t.Helper()
	code := []abc.Instruction{
		op(abc.OpGetLocal0), op(abc.OpPushScope),
		op(abc.OpGetLex, 2),
		op(abc.OpPushByte, uint32(idx)),
		op(abc.OpCallProperty, 5, 1),
		op(abc.OpReturnValue),
	}
	m := &abc.Method{Flags: abc.MethodNeedRest, Body: body(t, 2, code)}
	f.class.ITraits = append(f.class.ITraits, abc.Trait{Name: name, Kind: abc.TraitMethod, Index: f.addMethod(m)})
}

// addAllChars adds one character method per byte of testKeymap.
func (f *fixture) addAllChars(t *testing.T) {
	t.Helper()
	for i := range testKeymap {
		f.addCharMethod(t, charName(i), uint8(i))
	}
}

func (f *fixture) movie() *swf.Movie {
	return &swf.Movie{
		AbcFiles: []*swf.DoABC{{Name: "frame1", File: f.file}},
		Symbols:  make(map[uint16]string),
	}
}

func (f *fixture) unpacker(t *testing.T, opts ...Option) *Unpacker {
	t.Helper()
	u, err := New(f.movie(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return u
}
