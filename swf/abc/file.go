// Package abc reads ActionScript Byte Code files embedded in DoABC tags.
//
// Only the structure is decoded: constant pool, methods, classes, scripts and
// method bodies. Every pool keeps its implicit entry 0 so that indices taken
// from instructions can be used directly.
package abc

import (
	"fmt"
)

// Method flags.
const (
	MethodNeedArguments  = 0x01
	MethodNeedActivation = 0x02
	MethodNeedRest       = 0x04
	MethodHasOptional    = 0x08
	MethodSetDxns        = 0x40
	MethodHasParamNames  = 0x80
)

// Instance flags.
const (
	ClassSealed      = 0x01
	ClassFinal       = 0x02
	ClassInterface   = 0x04
	ClassProtectedNs = 0x08
)

type File struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	Methods      []*Method
	Metadata     []Metadata
	Classes      []*Class
	Scripts      []Script
	Bodies       []*MethodBody
}

type ConstantPool struct {
	Integers   []int32
	Uintegers  []uint32
	Doubles    []float64
	Strings    []string
	Namespaces []Namespace
	NsSets     [][]uint32
	Multinames []Multiname
}

type Namespace struct {
	Kind uint8
	Name uint32
}

// Multiname kinds.
const (
	MultinameQName       = 0x07
	MultinameQNameA      = 0x0d
	MultinameRTQName     = 0x0f
	MultinameRTQNameA    = 0x10
	MultinameRTQNameL    = 0x11
	MultinameRTQNameLA   = 0x12
	MultinameMultiname   = 0x09
	MultinameMultinameA  = 0x0e
	MultinameMultinameL  = 0x1b
	MultinameMultinameLA = 0x1c
	MultinameTypeName    = 0x1d
)

type Multiname struct {
	Kind      uint8
	Namespace uint32
	Name      uint32
	NsSet     uint32
	// TypeName only
	QName  uint32
	Params []uint32
}

type Method struct {
	ParamTypes []uint32
	ReturnType uint32
	Name       uint32
	Flags      uint8
	Options    []OptionDetail
	ParamNames []uint32
	// Body is nil for native and interface methods.
	Body *MethodBody
}

type OptionDetail struct {
	Value uint32
	Kind  uint8
}

type Metadata struct {
	Name   uint32
	Keys   []uint32
	Values []uint32
}

// Class merges an instance_info with its class_info; the two tables are
// parallel in the file.
type Class struct {
	Name        uint32
	SuperName   uint32
	Flags       uint8
	ProtectedNs uint32
	Interfaces  []uint32
	IInit       uint32
	ITraits     []Trait
	CInit       uint32
	CTraits     []Trait
}

type Script struct {
	Init   uint32
	Traits []Trait
}

type MethodBody struct {
	Method         uint32
	MaxStack       uint32
	LocalCount     uint32
	InitScopeDepth uint32
	MaxScopeDepth  uint32
	Code           []byte
	Exceptions     []Exception
	Traits         []Trait
}

type Exception struct {
	From, To, Target uint32
	ExcType          uint32
	VarName          uint32
}

func (m *Method) NeedRest() bool {
	return m.Flags&MethodNeedRest != 0
}

// MaxStack is the operand stack depth declared by the method body, 0 without one.
func (m *Method) MaxStack() uint32 {
	if m.Body == nil {
		return 0
	}
	return m.Body.MaxStack
}

// Parse decodes the method body into instructions.
func (m *Method) Parse() ([]Instruction, error) {
	if m.Body == nil {
		return nil, fmt.Errorf("%w: method has no body", ErrIndex)
	}
	return Decode(m.Body.Code)
}

func (f *File) Class(i uint32) (*Class, error) {
	if int(i) >= len(f.Classes) {
		return nil, fmt.Errorf("%w: class %d of %d", ErrIndex, i, len(f.Classes))
	}
	return f.Classes[i], nil
}

func (f *File) Method(i uint32) (*Method, error) {
	if int(i) >= len(f.Methods) {
		return nil, fmt.Errorf("%w: method %d of %d", ErrIndex, i, len(f.Methods))
	}
	return f.Methods[i], nil
}

// String resolves a constant pool string index.
func (f *File) String(i uint32) (string, bool) {
	if i == 0 || int(i) >= len(f.ConstantPool.Strings) {
		return "", false
	}
	return f.ConstantPool.Strings[i], true
}

// MultinameString returns the local name of a multiname, when it has one.
func (f *File) MultinameString(i uint32) (string, bool) {
	if i == 0 || int(i) >= len(f.ConstantPool.Multinames) {
		return "", false
	}
	mn := f.ConstantPool.Multinames[i]
	switch mn.Kind {
	case MultinameTypeName:
		return f.MultinameString(mn.QName)
	case MultinameRTQNameL, MultinameRTQNameLA, MultinameMultinameL, MultinameMultinameLA:
		return "", false
	}
	return f.String(mn.Name)
}
