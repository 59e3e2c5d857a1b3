package fennecs

import (
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// Storage is a type-erased column: a contiguous, growable array of a single
// component type, indexed by row. Implementations are not safe for
// concurrent use; the World's structural lock is what makes a single
// Storage's callers mutually exclusive.
type Storage interface {
	// Len returns the logical element count.
	Len() int
	// Cap returns the backing capacity.
	Cap() int
	// ElemType returns the reflect.Type this Storage stores.
	ElemType() reflect.Type
	// ZeroValue returns the element type's zero value, boxed.
	ZeroValue() any

	// Store overwrites the element at row with v. row must be < Len(); it is
	// the sole in-bounds-overwrite mutator and never changes Len (spec §9's
	// open question: count is mutated only by Append/Delete).
	Store(row int, v any) error
	// Append appends n copies of v, growing capacity as needed.
	Append(v any, n int) error
	// Delete removes n contiguous elements starting at row. The vacated
	// rows are filled by relocating whichever elements end up at
	// [row, row+movedCount); movedFrom is their original row index, so a
	// caller (Archetype) can rewrite the directory entry for the entity
	// that used to live there. movedCount is 0 when the removed rows were
	// already the tail.
	Delete(row, n int) (movedFrom, movedCount int)
	// Blit overwrites every live element with v.
	Blit(v any) error
	// Clear sets Len to 0 and wipes the live region.
	Clear()
	// EnsureCapacity grows to the next power of two >= c. Never shrinks.
	EnsureCapacity(c int)
	// Compact resizes the backing array to the next power of two >=
	// max(2, Len()).
	Compact()
	// Migrate moves every live element from s into dst, leaving s empty.
	// dst must have the same element type.
	Migrate(dst Storage) error
	// Move relocates the single element at row into dst (appending it
	// there) and deletes it from s.
	Move(row int, dst Storage) error
	// Span returns a reflect.Value slice view over [0, Len()). Mutations
	// through it are visible in the storage.
	Span() reflect.Value
	// AsMemory returns a reflect.Value slice view over [start, start+length).
	AsMemory(start, length int) reflect.Value
}

// columnFactory builds a new, empty Storage for some component type. The
// World keeps one factory per TypeId, populated at first use of that
// component type (spec §9's "registry TypeId -> ColumnFactory").
type columnFactory func(capacity int) Storage

// reflectStorage is the concrete Storage: a reflect.Value wrapping a typed
// slice, grown manually rather than via reflect.Append so capacity tracks
// the power-of-two policy exactly.
type reflectStorage struct {
	elemType reflect.Type
	slice    reflect.Value // kind Slice, cap == Cap(), logical length tracked separately
	length   int
}

// newReflectColumnOf builds a Storage for a known reflect.Type, pre-sized to
// capacity. This is what the typeRegistry hands out as each type's
// columnFactory once it has seen a concrete reflect.Type for that TypeId.
func newReflectColumnOf(t reflect.Type, capacity int) Storage {
	capacity = nextPow2(max(2, capacity))
	return &reflectStorage{
		elemType: t,
		slice:    reflect.MakeSlice(reflect.SliceOf(t), capacity, capacity),
	}
}

// newTypedColumn builds a Storage for a statically-known component type T,
// pre-sized to capacity.
func newTypedColumn[T any](capacity int) Storage {
	var zero T
	return newReflectColumnOf(reflect.TypeOf(zero), capacity)
}

func (s *reflectStorage) Len() int { return s.length }

func (s *reflectStorage) Cap() int {
	if !s.slice.IsValid() {
		return 0
	}
	return s.slice.Cap()
}

func (s *reflectStorage) ElemType() reflect.Type { return s.elemType }

func (s *reflectStorage) ZeroValue() any { return reflect.Zero(s.elemType).Interface() }

func (s *reflectStorage) ensureInit(t reflect.Type) {
	if s.elemType == nil {
		s.elemType = t
		cap := nextPow2(max(2, Config.DefaultCapacity))
		s.slice = reflect.MakeSlice(reflect.SliceOf(t), cap, cap)
	}
}

func (s *reflectStorage) checkType(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	s.ensureInit(rv.Type())
	if rv.Type() != s.elemType {
		return reflect.Value{}, TypeMismatchError{Want: reflect.Zero(s.elemType).Interface(), Got: v}
	}
	return rv, nil
}

func (s *reflectStorage) Store(row int, v any) error {
	rv, err := s.checkType(v)
	if err != nil {
		return err
	}
	if row >= s.length {
		panic(bark.AddTrace(ArchetypeMismatchError{Reason: "Store called out of bounds"}))
	}
	s.slice.Index(row).Set(rv)
	return nil
}

func (s *reflectStorage) Append(v any, n int) error {
	if n <= 0 {
		return nil
	}
	rv, err := s.checkType(v)
	if err != nil {
		return err
	}
	s.EnsureCapacity(s.length + n)
	for i := 0; i < n; i++ {
		s.slice.Index(s.length + i).Set(rv)
	}
	s.length += n
	return nil
}

// Delete implements the hole-filling policy from spec §4.2: swap the tail
// into the hole when it is large enough to be disjoint from it, otherwise
// shift the remainder down. Either way the relocated block's new home is
// [row, row+movedCount).
func (s *reflectStorage) Delete(row, n int) (movedFrom, movedCount int) {
	if n <= 0 {
		return 0, 0
	}
	count := s.length
	if count-n > row+n {
		movedFrom = count - n
		movedCount = n
		reflect.Copy(s.slice.Slice(row, row+n), s.slice.Slice(movedFrom, count))
	} else {
		movedFrom = row + n
		movedCount = count - movedFrom
		if movedCount > 0 {
			reflect.Copy(s.slice.Slice(row, row+movedCount), s.slice.Slice(movedFrom, count))
		}
	}
	s.clearRange(count-n, count)
	s.length = count - n
	if movedCount <= 0 {
		return 0, 0
	}
	return movedFrom, movedCount
}

func (s *reflectStorage) clearRange(from, to int) {
	if !s.slice.IsValid() || from >= to {
		return
	}
	zero := reflect.Zero(s.elemType)
	for i := from; i < to; i++ {
		s.slice.Index(i).Set(zero)
	}
}

func (s *reflectStorage) Blit(v any) error {
	rv, err := s.checkType(v)
	if err != nil {
		return err
	}
	for i := 0; i < s.length; i++ {
		s.slice.Index(i).Set(rv)
	}
	return nil
}

func (s *reflectStorage) Clear() {
	s.clearRange(0, s.length)
	s.length = 0
}

func (s *reflectStorage) EnsureCapacity(c int) {
	if s.Cap() >= c {
		return
	}
	newCap := nextPow2(max(2, c))
	grown := reflect.MakeSlice(reflect.SliceOf(s.elemType), newCap, newCap)
	if s.slice.IsValid() {
		reflect.Copy(grown, s.slice.Slice(0, s.length))
	}
	s.slice = grown
}

func (s *reflectStorage) Compact() {
	target := nextPow2(max(2, s.length))
	if target == s.Cap() {
		return
	}
	shrunk := reflect.MakeSlice(reflect.SliceOf(s.elemType), target, target)
	reflect.Copy(shrunk, s.slice.Slice(0, s.length))
	s.slice = shrunk
}

// Migrate moves every live element of s into dst. When dst holds some, but
// fewer, elements than s, dst is given a new buffer at s's capacity holding
// dst_old ++ s_old and s is given a fresh minimum-size buffer; otherwise s's
// elements are appended into dst's own buffer. Both paths copy every live
// element of both sides; either way dst ends up holding dst_old ++ s_old
// and s ends empty.
func (s *reflectStorage) Migrate(dst Storage) error {
	d, ok := dst.(*reflectStorage)
	if !ok {
		return ArchetypeMismatchError{Reason: "Migrate destination is not a reflectStorage"}
	}
	if s.length == 0 {
		return nil
	}
	if d.elemType == nil {
		d.elemType = s.elemType
	}
	if d.elemType != s.elemType {
		return ArchetypeMismatchError{Reason: "Migrate element type mismatch"}
	}

	if d.length > 0 && d.length < s.length {
		s.EnsureCapacity(s.length + d.length)
		reflect.Copy(s.slice.Slice(s.length, s.length+d.length), d.slice.Slice(0, d.length))
		total := d.length + s.length
		rotated := reflect.MakeSlice(reflect.SliceOf(s.elemType), s.Cap(), s.Cap())
		reflect.Copy(rotated, s.slice.Slice(s.length, s.length+d.length))
		reflect.Copy(rotated.Slice(d.length, total), s.slice.Slice(0, s.length))
		d.slice = rotated
		d.length = total
		empty := nextPow2(2)
		s.slice = reflect.MakeSlice(reflect.SliceOf(s.elemType), empty, empty)
		s.length = 0
		return nil
	}

	d.EnsureCapacity(d.length + s.length)
	reflect.Copy(d.slice.Slice(d.length, d.length+s.length), s.slice.Slice(0, s.length))
	d.length += s.length
	s.clearRange(0, s.length)
	s.length = 0
	return nil
}

func (s *reflectStorage) Move(row int, dst Storage) error {
	d, ok := dst.(*reflectStorage)
	if !ok {
		return ArchetypeMismatchError{Reason: "Move destination is not a reflectStorage"}
	}
	if row >= s.length {
		panic(bark.AddTrace(ArchetypeMismatchError{Reason: "Move called out of bounds"}))
	}
	v := s.slice.Index(row).Interface()
	if d.elemType == nil {
		d.elemType = s.elemType
	}
	if err := d.Append(v, 1); err != nil {
		return err
	}
	s.Delete(row, 1)
	return nil
}

func (s *reflectStorage) Span() reflect.Value {
	if !s.slice.IsValid() {
		return reflect.Value{}
	}
	return s.slice.Slice(0, s.length)
}

func (s *reflectStorage) AsMemory(start, length int) reflect.Value {
	return s.slice.Slice(start, start+length)
}

// nextPow2 returns the smallest power of two >= n, with a floor of 1.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
