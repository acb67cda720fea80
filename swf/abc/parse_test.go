package abc

import (
	"errors"
	"reflect"
	"testing"
)

// builder writes ABC primitives for hand-made files.
type builder []byte

func (b *builder) u8(v ...uint8) *builder {
	*b = append(*b, v...)
	return b
}

func (b *builder) u16(v uint16) *builder {
	*b = append(*b, byte(v), byte(v>>8))
	return b
}

func (b *builder) u30(v ...uint32) *builder {
	for _, x := range v {
		*b = appendU32(*b, x)
	}
	return b
}

func (b *builder) str(s string) *builder {
	b.u30(uint32(len(s)))
	*b = append(*b, s...)
	return b
}

var testCode = []byte{0xd0, 0x30, 0x24, 0x03, 0x48} // getlocal0 pushscope pushbyte 3 returnvalue

// testABC is a file with one class whose constructor is method 1. Method 1
// takes ...rest and has the only body.
func testABC() []byte {
	b := &builder{}
	b.u16(16).u16(46)

	// constant pool
	b.u30(2).u30(uint32(0xffffffff)) // one int: -1
	b.u30(0)                         // uints
	b.u30(0)                         // doubles
	b.u30(4).str("Loader").str("charAt").str("0123456789")
	b.u30(2).u8(0x16).u30(0) // package namespace ""
	b.u30(0)                 // ns sets
	b.u30(4)
	b.u8(MultinameQName).u30(1, 1)
	b.u8(MultinameQName).u30(1, 2)
	b.u8(MultinameRTQNameL)

	// methods
	b.u30(2)
	b.u30(0, 0, 0).u8(0)
	b.u30(1, 0, 0, 0).u8(MethodNeedRest | MethodHasOptional).u30(1).u30(3).u8(0x01)

	// metadata
	b.u30(1).u30(1).u30(1).u30(2).u30(3)

	// instance
	b.u30(1)
	b.u30(1, 0).u8(ClassSealed | ClassProtectedNs).u30(1)
	b.u30(0)                         // interfaces
	b.u30(1)                         // iinit
	b.u30(1).u30(2).u8(TraitMethod|traitAttrMetadata<<4).u30(0, 1).u30(1, 0)
	// class
	b.u30(0)
	b.u30(1).u30(2).u8(TraitConst).u30(1, 0, 3).u8(0x01)

	// scripts
	b.u30(1).u30(0)
	b.u30(1).u30(1).u8(TraitClass).u30(1, 0)

	// bodies
	b.u30(1)
	b.u30(1, 2, 1, 0, 1)
	b.u30(uint32(len(testCode)))
	*b = append(*b, testCode...)
	b.u30(1).u30(0, 2, 4, 0, 0)
	b.u30(0)
	return *b
}

func TestParse(t *testing.T) {
	f, err := Parse(testABC())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.MinorVersion != 16 || f.MajorVersion != 46 {
		t.Errorf("version = %d.%d, want 46.16", f.MajorVersion, f.MinorVersion)
	}
	if want := []int32{0, -1}; !reflect.DeepEqual(f.ConstantPool.Integers, want) {
		t.Errorf("integers = %v, want %v", f.ConstantPool.Integers, want)
	}
	if want := []string{"", "Loader", "charAt", "0123456789"}; !reflect.DeepEqual(f.ConstantPool.Strings, want) {
		t.Errorf("strings = %q, want %q", f.ConstantPool.Strings, want)
	}
	if len(f.ConstantPool.Uintegers) != 1 || len(f.ConstantPool.Doubles) != 1 {
		t.Errorf("empty pools should keep entry 0, got %d uints and %d doubles",
			len(f.ConstantPool.Uintegers), len(f.ConstantPool.Doubles))
	}

	if len(f.Methods) != 2 {
		t.Fatalf("methods = %d, want 2", len(f.Methods))
	}
	if f.Methods[0].NeedRest() || f.Methods[0].MaxStack() != 0 {
		t.Error("method 0 should have neither ...rest nor a body")
	}
	m := f.Methods[1]
	if !m.NeedRest() || m.MaxStack() != 2 {
		t.Errorf("method 1: NeedRest = %v, MaxStack = %d", m.NeedRest(), m.MaxStack())
	}
	if want := []OptionDetail{{Value: 3, Kind: 0x01}}; !reflect.DeepEqual(m.Options, want) {
		t.Errorf("options = %v, want %v", m.Options, want)
	}

	if len(f.Metadata) != 1 || f.Metadata[0].Values[0] != 3 {
		t.Errorf("metadata = %+v", f.Metadata)
	}

	c, err := f.Class(0)
	if err != nil {
		t.Fatalf("Class(0): %v", err)
	}
	if c.IInit != 1 || c.CInit != 0 || c.ProtectedNs != 1 {
		t.Errorf("class = %+v", c)
	}
	if len(c.ITraits) != 1 {
		t.Fatalf("instance traits = %d, want 1", len(c.ITraits))
	}
	if tr := c.ITraits[0]; tr.Kind != TraitMethod || tr.Index != 1 || tr.Name != 2 || len(tr.Metadata) != 1 {
		t.Errorf("instance trait = %+v", tr)
	}
	if tr := c.CTraits[0]; tr.Kind != TraitConst || tr.ValueIdx != 3 || tr.ValueKind != 0x01 {
		t.Errorf("class trait = %+v", tr)
	}
	if len(f.Scripts) != 1 || f.Scripts[0].Traits[0].Kind != TraitClass {
		t.Errorf("scripts = %+v", f.Scripts)
	}

	if m.Body == nil || !reflect.DeepEqual(m.Body.Code, testCode) {
		t.Fatal("body not linked to method 1")
	}
	if len(m.Body.Exceptions) != 1 || m.Body.Exceptions[0].Target != 4 {
		t.Errorf("exceptions = %+v", m.Body.Exceptions)
	}
	ins, err := m.Parse()
	if err != nil {
		t.Fatalf("Method.Parse: %v", err)
	}
	if len(ins) != 4 || ins[2].Op != OpPushByte || ins[2].Arg(0) != 3 {
		t.Errorf("instructions = %v", ins)
	}

	if s, ok := f.MultinameString(2); !ok || s != "charAt" {
		t.Errorf("MultinameString(2) = %q, %v", s, ok)
	}
	if _, ok := f.MultinameString(3); ok {
		t.Error("MultinameString on a runtime name should fail")
	}
}

func TestParseTruncated(t *testing.T) {
	data := testABC()
	for n := 0; n < len(data); n++ {
		if _, err := Parse(data[:n]); !errors.Is(err, ErrTruncated) {
			t.Fatalf("Parse(%d of %d bytes) error = %v, want %v", n, len(data), err, ErrTruncated)
		}
	}
}

func TestParseBodyForUnknownMethod(t *testing.T) {
	b := &builder{}
	b.u16(16).u16(46)
	b.u30(0, 0, 0, 0, 0, 0, 0) // empty pools
	b.u30(0, 0, 0, 0)          // methods, metadata, classes, scripts
	b.u30(1).u30(5, 1, 1, 0, 1).u30(1).u8(0x47).u30(0, 0)
	if _, err := Parse(*b); !errors.Is(err, ErrIndex) {
		t.Fatalf("Parse() error = %v, want %v", err, ErrIndex)
	}
}

func TestFileAccessors(t *testing.T) {
	f := &File{
		ConstantPool: ConstantPool{Strings: []string{"", "a"}},
		Methods:      []*Method{{}},
	}
	if _, ok := f.String(0); ok {
		t.Error("String(0) should not resolve")
	}
	if s, ok := f.String(1); !ok || s != "a" {
		t.Errorf("String(1) = %q, %v", s, ok)
	}
	if _, ok := f.String(2); ok {
		t.Error("String(2) should be out of range")
	}
	if _, err := f.Class(0); !errors.Is(err, ErrIndex) {
		t.Errorf("Class(0) error = %v, want %v", err, ErrIndex)
	}
	if _, err := f.Method(1); !errors.Is(err, ErrIndex) {
		t.Errorf("Method(1) error = %v, want %v", err, ErrIndex)
	}
	if _, err := f.Methods[0].Parse(); !errors.Is(err, ErrIndex) {
		t.Errorf("Parse() without a body error = %v, want %v", err, ErrIndex)
	}
}
