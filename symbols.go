package nativebuf

import "fmt"

// Op names a GraphicBuffer entry point.
type Op int

const (
	OpConstructor Op = iota
	OpDestructor
	OpLock
	OpUnlock
	OpGetNativeBuffer
	OpInitCheck
	numOps
)

var opNames = [numOps]string{
	OpConstructor:     "constructor",
	OpDestructor:      "destructor",
	OpLock:            "lock",
	OpUnlock:          "unlock",
	OpGetNativeBuffer: "getNativeBuffer",
	OpInitCheck:       "initCheck",
}

func (o Op) String() string {
	if o >= 0 && o < numOps {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp looks an Op up by the name String returns.
func ParseOp(name string) (Op, bool) {
	for i, n := range opNames {
		if n == name {
			return Op(i), true
		}
	}
	return 0, false
}

// Mangled libui.so symbol names.
const (
	symCtorLegacy       = "_ZN7android13GraphicBufferC1Ejjij"
	symCtorIntermediate = "_ZN7android13GraphicBufferC1EjjijNSt3__112basic_stringIcNS1_11char_traitsIcEENS1_9allocatorIcEEEE"
	symDtor             = "_ZN7android13GraphicBufferD1Ev"
	symGetNativeBuffer  = "_ZNK7android13GraphicBuffer15getNativeBufferEv"
	symLock             = "_ZN7android13GraphicBuffer4lockEjPPv"
	symUnlock           = "_ZN7android13GraphicBuffer6unlockEv"
	symInitCheck        = "_ZNK7android13GraphicBuffer9initCheckEv"
)

// SymbolNames returns the decorated name of every entry point for a
// revision. The modern revision has no constructor entry.
func SymbolNames(rev Revision) map[Op]string {
	names := map[Op]string{
		OpDestructor:      symDtor,
		OpLock:            symLock,
		OpUnlock:          symUnlock,
		OpGetNativeBuffer: symGetNativeBuffer,
		OpInitCheck:       symInitCheck,
	}
	switch rev {
	case RevisionLegacy:
		names[OpConstructor] = symCtorLegacy
	case RevisionIntermediate:
		names[OpConstructor] = symCtorIntermediate
	}
	return names
}

// Resolver looks symbols up by exact name. *ffi.Library implements it.
type Resolver interface {
	Resolve(name string) (uintptr, bool)
}

// Symbol is one SymbolTable entry. Addr is zero when resolution failed.
type Symbol struct {
	Name string
	Addr uintptr
}

// Present reports whether the symbol was resolved.
func (s Symbol) Present() bool { return s.Addr != 0 }

// SymbolTable maps each Op to its resolved entry point. It is filled once by
// BindSymbols and only read afterwards.
type SymbolTable struct {
	entries [numOps]Symbol
}

// BindSymbols resolves every entry point for rev. overrides replaces the
// built-in name for an op, for devices whose libui.so was built differently.
// Missing symbols are recorded, not reported as errors.
func BindSymbols(r Resolver, rev Revision, overrides map[Op]string) SymbolTable {
	names := SymbolNames(rev)
	for op, name := range overrides {
		if op == OpConstructor && rev == RevisionModern {
			continue
		}
		names[op] = name
	}

	var t SymbolTable
	for op := Op(0); op < numOps; op++ {
		name, ok := names[op]
		if !ok {
			continue
		}
		addr, _ := r.Resolve(name)
		t.entries[op] = Symbol{Name: name, Addr: addr}
	}
	return t
}

// Lookup returns the entry for op.
func (t SymbolTable) Lookup(op Op) Symbol {
	if op < 0 || op >= numOps {
		return Symbol{}
	}
	return t.entries[op]
}

// require returns the address for op, or a *SymbolError if it is absent.
func (t SymbolTable) require(op Op) (uintptr, error) {
	s := t.Lookup(op)
	if !s.Present() {
		return 0, &SymbolError{Op: op, Name: s.Name}
	}
	return s.Addr, nil
}

// Missing lists, in Op order, the ops with a name but no address.
func (t SymbolTable) Missing() []Op {
	var ops []Op
	for op, s := range t.entries {
		if s.Name != "" && !s.Present() {
			ops = append(ops, Op(op))
		}
	}
	return ops
}
