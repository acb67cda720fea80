package abc

import (
	"fmt"
)

// Trait kinds, the low nibble of the kind byte.
const (
	TraitSlot     = 0
	TraitMethod   = 1
	TraitGetter   = 2
	TraitSetter   = 3
	TraitClass    = 4
	TraitFunction = 5
	TraitConst    = 6
)

const traitAttrMetadata = 0x4

type Trait struct {
	Name  uint32
	Kind  uint8
	Attrs uint8
	// Slot, Const, Class and Function traits
	SlotID uint32
	// Slot and Const traits
	TypeName  uint32
	ValueIdx  uint32
	ValueKind uint8
	// Method, Getter and Setter traits
	DispID uint32
	// Method index for Method/Getter/Setter/Function, class index for Class.
	Index    uint32
	Metadata []uint32
}

// Parse reads a complete ABC file.
func Parse(data []byte) (*File, error) {
	r := newReader(data)
	f := &File{}

	var err error
	if f.MinorVersion, err = r.u16(); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if f.MajorVersion, err = r.u16(); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}

	steps := []struct {
		name string
		fn   func(*reader, *File) error
	}{
		{"constant pool", parseConstantPool},
		{"methods", parseMethods},
		{"metadata", parseMetadata},
		{"classes", parseClasses},
		{"scripts", parseScripts},
		{"method bodies", parseBodies},
	}
	for _, step := range steps {
		if err := step.fn(r, f); err != nil {
			return nil, fmt.Errorf("reading %s: %w", step.name, err)
		}
	}
	return f, nil
}

// count reads a pool size and bounds it by the remaining input so that a
// corrupt count fails instead of allocating.
func count(r *reader) (int, error) {
	n, err := r.u30()
	if err != nil {
		return 0, err
	}
	if int(n) > r.remaining()+1 {
		return 0, fmt.Errorf("%w: count %d exceeds remaining %d bytes", ErrTruncated, n, r.remaining())
	}
	return int(n), nil
}

// poolSize turns an encoded pool count into a slice length including entry 0.
func poolSize(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func parseConstantPool(r *reader, f *File) error {
	cp := &f.ConstantPool

	n, err := count(r)
	if err != nil {
		return err
	}
	cp.Integers = make([]int32, poolSize(n))
	for i := 1; i < n; i++ {
		if cp.Integers[i], err = r.s32(); err != nil {
			return err
		}
	}

	if n, err = count(r); err != nil {
		return err
	}
	cp.Uintegers = make([]uint32, poolSize(n))
	for i := 1; i < n; i++ {
		if cp.Uintegers[i], err = r.u32(); err != nil {
			return err
		}
	}

	if n, err = count(r); err != nil {
		return err
	}
	cp.Doubles = make([]float64, poolSize(n))
	for i := 1; i < n; i++ {
		if cp.Doubles[i], err = r.d64(); err != nil {
			return err
		}
	}

	if n, err = count(r); err != nil {
		return err
	}
	cp.Strings = make([]string, poolSize(n))
	for i := 1; i < n; i++ {
		if cp.Strings[i], err = r.str(); err != nil {
			return err
		}
	}

	if n, err = count(r); err != nil {
		return err
	}
	cp.Namespaces = make([]Namespace, poolSize(n))
	for i := 1; i < n; i++ {
		kind, err := r.u8()
		if err != nil {
			return err
		}
		name, err := r.u30()
		if err != nil {
			return err
		}
		cp.Namespaces[i] = Namespace{Kind: kind, Name: name}
	}

	if n, err = count(r); err != nil {
		return err
	}
	cp.NsSets = make([][]uint32, poolSize(n))
	for i := 1; i < n; i++ {
		if cp.NsSets[i], err = r.u30s(); err != nil {
			return err
		}
	}

	if n, err = count(r); err != nil {
		return err
	}
	cp.Multinames = make([]Multiname, poolSize(n))
	for i := 1; i < n; i++ {
		if cp.Multinames[i], err = parseMultiname(r); err != nil {
			return fmt.Errorf("multiname %d: %w", i, err)
		}
	}
	return nil
}

func parseMultiname(r *reader) (Multiname, error) {
	kind, err := r.u8()
	if err != nil {
		return Multiname{}, err
	}
	mn := Multiname{Kind: kind}
	switch kind {
	case MultinameQName, MultinameQNameA:
		if mn.Namespace, err = r.u30(); err != nil {
			return mn, err
		}
		mn.Name, err = r.u30()
	case MultinameRTQName, MultinameRTQNameA:
		mn.Name, err = r.u30()
	case MultinameRTQNameL, MultinameRTQNameLA:
	case MultinameMultiname, MultinameMultinameA:
		if mn.Name, err = r.u30(); err != nil {
			return mn, err
		}
		mn.NsSet, err = r.u30()
	case MultinameMultinameL, MultinameMultinameLA:
		mn.NsSet, err = r.u30()
	case MultinameTypeName:
		if mn.QName, err = r.u30(); err != nil {
			return mn, err
		}
		mn.Params, err = r.u30s()
	default:
		return mn, fmt.Errorf("unknown multiname kind 0x%02x", kind)
	}
	return mn, err
}

func parseMethods(r *reader, f *File) error {
	n, err := count(r)
	if err != nil {
		return err
	}
	f.Methods = make([]*Method, n)
	for i := range f.Methods {
		m := &Method{}
		paramCount, err := r.u30()
		if err != nil {
			return err
		}
		if m.ReturnType, err = r.u30(); err != nil {
			return err
		}
		if m.ParamTypes, err = r.u30n(int(paramCount)); err != nil {
			return err
		}
		if m.Name, err = r.u30(); err != nil {
			return err
		}
		if m.Flags, err = r.u8(); err != nil {
			return err
		}
		if m.Flags&MethodHasOptional != 0 {
			optCount, err := count(r)
			if err != nil {
				return err
			}
			m.Options = make([]OptionDetail, optCount)
			for j := range m.Options {
				if m.Options[j].Value, err = r.u30(); err != nil {
					return err
				}
				if m.Options[j].Kind, err = r.u8(); err != nil {
					return err
				}
			}
		}
		if m.Flags&MethodHasParamNames != 0 {
			if m.ParamNames, err = r.u30n(int(paramCount)); err != nil {
				return err
			}
		}
		f.Methods[i] = m
	}
	return nil
}

func parseMetadata(r *reader, f *File) error {
	n, err := count(r)
	if err != nil {
		return err
	}
	f.Metadata = make([]Metadata, n)
	for i := range f.Metadata {
		md := &f.Metadata[i]
		if md.Name, err = r.u30(); err != nil {
			return err
		}
		items, err := count(r)
		if err != nil {
			return err
		}
		if md.Keys, err = r.u30n(items); err != nil {
			return err
		}
		if md.Values, err = r.u30n(items); err != nil {
			return err
		}
	}
	return nil
}

func parseClasses(r *reader, f *File) error {
	n, err := count(r)
	if err != nil {
		return err
	}
	f.Classes = make([]*Class, n)
	for i := range f.Classes {
		c := &Class{}
		if c.Name, err = r.u30(); err != nil {
			return err
		}
		if c.SuperName, err = r.u30(); err != nil {
			return err
		}
		if c.Flags, err = r.u8(); err != nil {
			return err
		}
		if c.Flags&ClassProtectedNs != 0 {
			if c.ProtectedNs, err = r.u30(); err != nil {
				return err
			}
		}
		if c.Interfaces, err = r.u30s(); err != nil {
			return err
		}
		if c.IInit, err = r.u30(); err != nil {
			return err
		}
		if c.ITraits, err = parseTraits(r); err != nil {
			return fmt.Errorf("instance %d traits: %w", i, err)
		}
		f.Classes[i] = c
	}
	for i, c := range f.Classes {
		if c.CInit, err = r.u30(); err != nil {
			return err
		}
		if c.CTraits, err = parseTraits(r); err != nil {
			return fmt.Errorf("class %d traits: %w", i, err)
		}
	}
	return nil
}

func parseScripts(r *reader, f *File) error {
	n, err := count(r)
	if err != nil {
		return err
	}
	f.Scripts = make([]Script, n)
	for i := range f.Scripts {
		if f.Scripts[i].Init, err = r.u30(); err != nil {
			return err
		}
		if f.Scripts[i].Traits, err = parseTraits(r); err != nil {
			return fmt.Errorf("script %d traits: %w", i, err)
		}
	}
	return nil
}

func parseBodies(r *reader, f *File) error {
	n, err := count(r)
	if err != nil {
		return err
	}
	f.Bodies = make([]*MethodBody, n)
	for i := range f.Bodies {
		b := &MethodBody{}
		fields := []*uint32{&b.Method, &b.MaxStack, &b.LocalCount, &b.InitScopeDepth, &b.MaxScopeDepth}
		for _, p := range fields {
			if *p, err = r.u30(); err != nil {
				return err
			}
		}
		codeLen, err := r.u30()
		if err != nil {
			return err
		}
		if b.Code, err = r.bytes(int(codeLen)); err != nil {
			return fmt.Errorf("body %d code: %w", i, err)
		}
		excCount, err := count(r)
		if err != nil {
			return err
		}
		b.Exceptions = make([]Exception, excCount)
		for j := range b.Exceptions {
			e := &b.Exceptions[j]
			for _, p := range []*uint32{&e.From, &e.To, &e.Target, &e.ExcType, &e.VarName} {
				if *p, err = r.u30(); err != nil {
					return err
				}
			}
		}
		if b.Traits, err = parseTraits(r); err != nil {
			return fmt.Errorf("body %d traits: %w", i, err)
		}

		m, err := f.Method(b.Method)
		if err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
		m.Body = b
		f.Bodies[i] = b
	}
	return nil
}

func parseTraits(r *reader) ([]Trait, error) {
	n, err := count(r)
	if err != nil {
		return nil, err
	}
	traits := make([]Trait, n)
	for i := range traits {
		t := &traits[i]
		if t.Name, err = r.u30(); err != nil {
			return nil, err
		}
		kind, err := r.u8()
		if err != nil {
			return nil, err
		}
		t.Kind = kind & 0x0f
		t.Attrs = kind >> 4

		switch t.Kind {
		case TraitSlot, TraitConst:
			if t.SlotID, err = r.u30(); err != nil {
				return nil, err
			}
			if t.TypeName, err = r.u30(); err != nil {
				return nil, err
			}
			if t.ValueIdx, err = r.u30(); err != nil {
				return nil, err
			}
			if t.ValueIdx != 0 {
				if t.ValueKind, err = r.u8(); err != nil {
					return nil, err
				}
			}
		case TraitClass, TraitFunction:
			if t.SlotID, err = r.u30(); err != nil {
				return nil, err
			}
			if t.Index, err = r.u30(); err != nil {
				return nil, err
			}
		case TraitMethod, TraitGetter, TraitSetter:
			if t.DispID, err = r.u30(); err != nil {
				return nil, err
			}
			if t.Index, err = r.u30(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown trait kind %d", t.Kind)
		}

		if t.Attrs&traitAttrMetadata != 0 {
			if t.Metadata, err = r.u30s(); err != nil {
				return nil, err
			}
		}
	}
	return traits, nil
}
