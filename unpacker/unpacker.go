// Package unpacker rebuilds a movie whose real content was split into
// DefineBinaryData tags and whose assembly order is hidden in obfuscated
// bytecode.
//
// The loader class of frame1 spells every string one character at a time,
// each character being a call to a helper method that returns one byte of a
// keymap. The binaries are written, in order, right after the "writeBytes"
// string.
package unpacker

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ruinedyourlife/tfm-unpacker/swf"
	"github.com/ruinedyourlife/tfm-unpacker/swf/abc"
)

const (
	DefaultMarker    = "writeBytes"
	DefaultSeparator = "_"
)

type Unpacker struct {
	movie  *swf.Movie
	abc    *abc.File
	logger *slog.Logger

	marker    string
	separator string

	Keymap    string
	HasKeymap bool
	Methods   MethodTable
	Order     []string
	Binaries  map[string][]byte
}

type Option func(*Unpacker)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Unpacker) {
		u.logger = logger
	}
}

// WithMarker sets the string that precedes every binary name.
func WithMarker(marker string) Option {
	return func(u *Unpacker) {
		u.marker = marker
	}
}

// WithSeparator sets the separator between a symbol's prefix and the binary name.
func WithSeparator(sep string) Option {
	return func(u *Unpacker) {
		u.separator = sep
	}
}

func New(movie *swf.Movie, opts ...Option) (*Unpacker, error) {
	frame1, ok := movie.Frame1()
	if !ok || frame1.File == nil {
		return nil, ErrMissingFrame1
	}
	u := &Unpacker{
		movie:     movie,
		abc:       frame1.File,
		logger:    slog.Default(),
		marker:    DefaultMarker,
		separator: DefaultSeparator,
		Methods:   make(MethodTable),
		Binaries:  make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Unpack resolves the order and the binaries and writes them to w.
func (u *Unpacker) Unpack(w io.Writer) error {
	if err := u.ResolveOrder(); err != nil {
		return err
	}
	u.ResolveBinaries()
	return u.WriteBinaries(w)
}

// UnpackBytes runs Unpack into memory. The result is empty when no order
// could be resolved, which usually means the movie is not packed.
func (u *Unpacker) UnpackBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := u.Unpack(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (u *Unpacker) resolveKeymap(instructions []abc.Instruction) {
	prog := abc.NewProgram(instructions)
	if !prog.SkipUntil(abc.OpPushString) {
		return
	}
	ins, _ := prog.Get()
	u.Keymap, u.HasKeymap = u.abc.String(ins.Arg(0))
	u.logger.Debug("keymap resolved", "found", u.HasKeymap, "length", len(u.Keymap))
}

// resolveMethods fills the method table. Character methods take a ...rest
// argument and use exactly two stack slots; each pushes its keymap index as
// a byte.
func (u *Unpacker) resolveMethods() error {
	if !u.HasKeymap {
		return ErrMissingKeymap
	}
	class, err := u.abc.Class(0)
	if err != nil {
		return err
	}

	for _, tr := range class.ITraits {
		if tr.Kind != abc.TraitMethod {
			continue
		}
		method, err := u.abc.Method(tr.Index)
		if err != nil {
			continue
		}
		if !method.NeedRest() || method.MaxStack() != 2 {
			continue
		}

		instructions, err := method.Parse()
		if err != nil {
			return fmt.Errorf("parsing method %d: %w", tr.Index, err)
		}
		prog := abc.NewProgram(instructions)
		if !prog.SkipUntil(abc.OpPushByte) {
			continue
		}
		ins, _ := prog.Get()
		idx := uint8(ins.Arg(0))
		if int(idx) >= len(u.Keymap) {
			return &KeymapIndexError{Index: idx, Method: tr.Name}
		}
		u.Methods[tr.Name] = u.Keymap[idx]
	}
	u.logger.Debug("character methods resolved", "count", len(u.Methods))
	return nil
}

// ResolveOrder reads the keymap from the class initializer, resolves the
// character methods, then walks the constructor for the binary names.
// Each call starts from an empty keymap, method table and order.
func (u *Unpacker) ResolveOrder() error {
	u.Keymap, u.HasKeymap = "", false
	u.Methods = make(MethodTable)
	u.Order = nil

	class, err := u.abc.Class(0)
	if err != nil {
		return err
	}

	cinit, err := u.abc.Method(class.CInit)
	if err != nil {
		return err
	}
	instructions, err := cinit.Parse()
	if err != nil {
		return fmt.Errorf("parsing class initializer: %w", err)
	}
	u.resolveKeymap(instructions)
	if err := u.resolveMethods(); err != nil {
		return err
	}

	iinit, err := u.abc.Method(class.IInit)
	if err != nil {
		return err
	}
	if instructions, err = iinit.Parse(); err != nil {
		return fmt.Errorf("parsing constructor: %w", err)
	}
	prog := abc.NewProgram(instructions)
	if !prog.SkipUntil(abc.OpConstructSuper) {
		return ErrMissingSuper
	}

	finder := NewStringFinder(prog, u.Methods)
	for finder.NextString() {
		if !finder.MatchTarget(u.marker) {
			continue
		}
		// the next string is the binary's name
		finder.NextString()
		name := finder.Build()
		if !utf8.Valid(name) {
			return &NameDecodeError{Name: name}
		}
		u.Order = append(u.Order, string(name))
	}
	u.logger.Debug("order resolved", "binaries", len(u.Order))
	return nil
}

// ResolveBinaries indexes the DefineBinaryData tags by their symbol name,
// without the prefix before the first separator. Each call rebuilds the index.
func (u *Unpacker) ResolveBinaries() {
	u.Binaries = make(map[string][]byte)
	for _, tag := range u.movie.Binaries() {
		symbol, ok := u.movie.Symbol(tag.CharID)
		if !ok {
			continue
		}
		_, name, found := strings.Cut(symbol, u.separator)
		if !found {
			continue
		}
		u.Binaries[name] = tag.Data
	}
}

// WriteBinaries writes the binaries to out in the resolved order. It stops
// at the first name without a binary with a *MissingBinaryError; whatever
// was written before stays written.
func (u *Unpacker) WriteBinaries(out io.Writer) error {
	for _, name := range u.Order {
		bin, found := u.Binaries[name]
		if !found {
			return &MissingBinaryError{Name: name}
		}
		if _, err := out.Write(bin); err != nil {
			return fmt.Errorf("writing binary %s: %w", name, err)
		}
	}
	return nil
}
