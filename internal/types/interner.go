package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs that exist independently of any declarations.
type Builtins struct {
	Error           TypeID
	Nothing         TypeID
	NullableNothing TypeID // type of the null literal
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Safe for concurrent use: files are resolved in parallel.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	args      [][]TypeID
	argsIndex map[string]uint32
	fns       []FnInfo
	fnIndex   map[string]uint32
	flex      []FlexInfo
}

type typeKey struct {
	Kind     Kind
	Sym      uint32
	Nullable bool
	Payload  uint32
}

// NewInterner constructs an interner seeded with the builtin types.
func NewInterner() *Interner {
	in := &Interner{
		types:     make([]Type, 1, 64), // 0 reserved for NoTypeID
		index:     make(map[typeKey]TypeID, 64),
		args:      make([][]TypeID, 1, 32),
		argsIndex: make(map[string]uint32, 32),
		fns:       make([]FnInfo, 1, 16),
		fnIndex:   make(map[string]uint32, 16),
		flex:      make([]FlexInfo, 1, 8),
	}
	in.builtins.Error = in.Intern(Type{Kind: KindError})
	in.builtins.Nothing = in.Intern(Type{Kind: KindNothing})
	in.builtins.NullableNothing = in.Intern(Type{Kind: KindNothing, Nullable: true})
	return in
}

// Builtins returns TypeIDs for builtin types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	in.mu.RLock()
	id, ok := in.index[key]
	in.mu.RUnlock()
	if ok {
		return id
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage; caller holds the write lock.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of interned types.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.types) - 1
}

func listKey(ids []TypeID) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sb.String()
}

func slotOf(n int) uint32 {
	slot, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("types side table overflow: %w", err))
	}
	return slot
}

func (in *Interner) argsSlot(args []TypeID) uint32 {
	if len(args) == 0 {
		return 0
	}
	key := listKey(args)
	in.mu.Lock()
	defer in.mu.Unlock()
	if slot, ok := in.argsIndex[key]; ok {
		return slot
	}
	slot := slotOf(len(in.args))
	in.args = append(in.args, slices.Clone(args))
	in.argsIndex[key] = slot
	return slot
}

// Class returns the type `cls<args>` with the given nullability.
func (in *Interner) Class(cls ClassID, args []TypeID, nullable bool) TypeID {
	return in.Intern(Type{Kind: KindClass, Sym: uint32(cls), Nullable: nullable, Payload: in.argsSlot(args)})
}

// Param returns the type of a type parameter usage.
func (in *Interner) Param(p ParamID, nullable bool) TypeID {
	return in.Intern(Type{Kind: KindParam, Sym: uint32(p), Nullable: nullable})
}

// Fn returns a function type `Recv.(params) -> result`.
func (in *Interner) Fn(receiver TypeID, params []TypeID, result TypeID, nullable bool) TypeID {
	key := strconv.FormatUint(uint64(receiver), 10) + "|" + listKey(params) + "|" + strconv.FormatUint(uint64(result), 10)
	in.mu.Lock()
	slot, ok := in.fnIndex[key]
	if !ok {
		slot = slotOf(len(in.fns))
		in.fns = append(in.fns, FnInfo{Receiver: receiver, Params: slices.Clone(params), Result: result})
		in.fnIndex[key] = slot
	}
	in.mu.Unlock()
	return in.Intern(Type{Kind: KindFn, Nullable: nullable, Payload: slot})
}

// Flexible builds `T!` from a non-flexible type: the lower bound is not-null, the upper one nullable.
func (in *Interner) Flexible(t TypeID) TypeID {
	tt, ok := in.Lookup(t)
	if !ok || tt.Kind == KindFlexible || tt.Kind == KindError {
		return t
	}
	lower, upper := in.WithNullable(t, false), in.WithNullable(t, true)
	in.mu.Lock()
	slot := uint32(0)
	for i := 1; i < len(in.flex); i++ {
		if in.flex[i].Lower == lower && in.flex[i].Upper == upper {
			slot = slotOf(i)
			break
		}
	}
	if slot == 0 {
		slot = slotOf(len(in.flex))
		in.flex = append(in.flex, FlexInfo{Lower: lower, Upper: upper})
	}
	in.mu.Unlock()
	return in.Intern(Type{Kind: KindFlexible, Payload: slot})
}

// Args returns the type arguments of a class type (nil otherwise).
func (in *Interner) Args(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass || tt.Payload == 0 {
		return nil
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.args[tt.Payload]
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn {
		return FnInfo{}, false
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.fns[tt.Payload], true
}

// FlexInfo retrieves the bounds of a flexible type.
func (in *Interner) FlexInfo(id TypeID) (FlexInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFlexible {
		return FlexInfo{}, false
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.flex[tt.Payload], true
}
