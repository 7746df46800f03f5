package universe

import "github.com/bits-and-blooms/bitset"

//CellsView is a read-only view over the packed cell bits, row-major, one bit per cell
//A view keeps showing the generation it was taken from: Tick swaps in a new bit set,
//while ToggleCell and the glider operations write through to the current one
type CellsView struct {
	bits *bitset.BitSet
}

//Len returns the number of cells covered by the view
func (v CellsView) Len() uint {
	if v.bits == nil {
		return 0
	}
	return v.bits.Len()
}

//Alive reports the state of the cell at linear index i
func (v CellsView) Alive(i uint) bool {
	return v.bits != nil && v.bits.Test(i)
}

//Count returns the number of alive cells
func (v CellsView) Count() int {
	if v.bits == nil {
		return 0
	}
	return int(v.bits.Count())
}

//Words returns a copy of the packed 64-bit words, bit i lives in word i/64 at position i%64
func (v CellsView) Words() []uint64 {
	if v.bits == nil {
		return nil
	}
	return append([]uint64(nil), v.bits.Bytes()...)
}

//Clone detaches the view from the universe
func (v CellsView) Clone() CellsView {
	if v.bits == nil {
		return v
	}
	return CellsView{bits: v.bits.Clone()}
}

//Equal reports whether both views hold the same bits
func (v CellsView) Equal(o CellsView) bool {
	if v.Len() != o.Len() {
		return false
	}
	if v.bits == nil || o.bits == nil {
		return true
	}
	return v.bits.Equal(o.bits)
}

//grow extends b to n bits, existing bits keep their index
func grow(b *bitset.BitSet, n uint) {
	if n <= b.Len() {
		return
	}
	b.Set(n - 1).Clear(n - 1)
}
