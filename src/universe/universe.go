package universe

import (
	"fmt"
	"math"
	"time"

	"github.com/bits-and-blooms/bitset"
)

//default universe dimension, callers may grow it afterwards
const (
	DefWidth  = 64
	DefHeight = 64
)

//seeding modes, anything other than ModeRandom seeds the default pattern
const (
	ModeRandom  = "random"
	ModeDefault = "default"
)

//timing span names
const (
	spanTick       = "tick"
	spanAllocate   = "tick/allocate"
	spanGeneration = "tick/generation"
)

//glider cells relative to the top-left corner of its 3x3 bounding box
var gliderShape = [5][2]uint32{{0, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}}

//TickStats describes the last generation advance
type TickStats struct {
	Changed   bool
	LiveCells int
	Duration  time.Duration
}

//Universe is a Game of Life (B3/S23) grid with wraparound edges
//The cells are bit-packed in row-major order
//A Universe is not safe for concurrent use, it has exactly one owner at a time
type Universe struct {
	width  uint32
	height uint32
	cells  *bitset.BitSet
	deps   Deps
	gen    uint64
	last   TickStats
}

//New creates a DefWidth x DefHeight universe
//mode "random": every cell draws one sample, the cell is dead when sample < threshold, alive otherwise
//any other mode: cell i is alive iff i%2 == 0 || i%7 == 0
func New(mode string, threshold float64, deps Deps) (*Universe, error) {
	u := newUniverse(DefWidth, DefHeight, deps)
	size := uint(DefWidth * DefHeight)

	switch mode {
	case ModeRandom:
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
		}
		u.deps.Logger.Printf("Generated random world with threshold %v", threshold)
		for i := uint(0); i < size; i++ {
			dead := u.deps.Random.Float64() < threshold
			u.cells.SetTo(i, !dead)
		}
	default:
		u.deps.Logger.Printf("Generated default world")
		for i := uint(0); i < size; i++ {
			u.cells.SetTo(i, i%2 == 0 || i%7 == 0)
		}
	}
	u.last.LiveCells = u.LiveCells()
	return u, nil
}

//NewEmpty creates an all-dead universe with arbitrary dimensions
func NewEmpty(width, height uint32, deps Deps) (*Universe, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	return newUniverse(width, height, deps), nil
}

func newUniverse(width, height uint32, deps Deps) *Universe {
	return &Universe{
		width:  width,
		height: height,
		cells:  bitset.New(uint(width) * uint(height)),
		deps:   deps.withDefaults(),
	}
}

func checkDimensions(width, height uint32) error {
	if width == 0 || height == 0 || uint64(width)*uint64(height) > math.MaxUint32 {
		return fmt.Errorf("%w: %v x %v", ErrInvalidDimension, width, height)
	}
	return nil
}

//Width returns the number of columns
func (u *Universe) Width() uint32 { return u.width }

//Height returns the number of rows
func (u *Universe) Height() uint32 { return u.height }

//Generation returns the number of ticks done so far
func (u *Universe) Generation() uint64 { return u.gen }

//LastTick returns statistics of the latest Tick
func (u *Universe) LastTick() TickStats { return u.last }

//Cells returns a read-only view over the current generation
func (u *Universe) Cells() CellsView { return CellsView{bits: u.cells} }

//LiveCells returns the number of alive cells
func (u *Universe) LiveCells() int { return int(u.cells.Count()) }

//SetWidth grows the universe to the given number of columns
//the bits keep their linear index, so the content of the old rows is reflowed over the new width
func (u *Universe) SetWidth(width uint32) error {
	if err := u.checkGrowth(width, u.width, u.height); err != nil {
		return err
	}
	u.width = width
	grow(u.cells, uint(u.width)*uint(u.height))
	return nil
}

//SetHeight grows the universe to the given number of rows
func (u *Universe) SetHeight(height uint32) error {
	if err := u.checkGrowth(height, u.height, u.width); err != nil {
		return err
	}
	u.height = height
	grow(u.cells, uint(u.width)*uint(u.height))
	return nil
}

func (u *Universe) checkGrowth(to, from, other uint32) error {
	if err := checkDimensions(to, other); err != nil {
		return err
	}
	if to < from {
		return fmt.Errorf("%w: %v -> %v", ErrShrink, from, to)
	}
	return nil
}

//Cell returns the state of the cell at row, column
func (u *Universe) Cell(row, column uint32) (bool, error) {
	if err := u.checkBounds(row, column); err != nil {
		return false, err
	}
	return u.cells.Test(u.index(row, column)), nil
}

//ToggleCell flips the cell at row, column
func (u *Universe) ToggleCell(row, column uint32) error {
	if err := u.checkBounds(row, column); err != nil {
		return err
	}
	u.cells.Flip(u.index(row, column))
	return nil
}

//SetCell sets the state of the cell at row, column
func (u *Universe) SetCell(row, column uint32, alive bool) error {
	if err := u.checkBounds(row, column); err != nil {
		return err
	}
	u.cells.SetTo(u.index(row, column), alive)
	return nil
}

//AddGlider places a glider into the top five rows at a random column offset
//the whole 5x5 block is cleared first
func (u *Universe) AddGlider() error {
	if u.width < 5 || u.height < 5 {
		return fmt.Errorf("%w: glider block needs 5 x 5, have %v x %v", ErrTooSmall, u.width, u.height)
	}
	offset := uint32(u.deps.Random.Float64() * float64(u.width-4))
	if offset > u.width-5 {
		offset = u.width - 5
	}
	u.deps.Logger.Printf("Glider coming through! offset %d", offset)

	u.fill(0, offset, 5, 5, false)
	u.place(1, offset+1)
	return nil
}

//AddGliderAt places a glider centered on row, column, the 3x3 block around it is cleared first
//there is no wraparound: the whole block must lie inside the grid
func (u *Universe) AddGliderAt(row, column uint32) error {
	if row < 1 || column < 1 {
		return fmt.Errorf("%w: got (%v, %v)", ErrGliderUnderflow, row, column)
	}
	if uint64(row)+1 >= uint64(u.height) || uint64(column)+1 >= uint64(u.width) {
		return fmt.Errorf("%w: glider block around (%v, %v) exceeds %v x %v", ErrOutOfBounds, row, column, u.height, u.width)
	}
	u.fill(row-1, column-1, 3, 3, false)
	u.place(row-1, column-1)
	return nil
}

//place sets the glider cells with the bounding box starting at row, column
func (u *Universe) place(row, column uint32) {
	for _, c := range gliderShape {
		u.cells.Set(u.index(row+c[0], column+c[1]))
	}
}

//fill sets the rows x columns block starting at row, column to state
func (u *Universe) fill(row, column, rows, columns uint32, state bool) {
	for r := row; r < row+rows; r++ {
		for c := column; c < column+columns; c++ {
			u.cells.SetTo(u.index(r, c), state)
		}
	}
}

//Tick advances the universe by one generation
//the next generation is computed into a separate bit set from the untouched current one
//and replaces it only when complete
func (u *Universe) Tick() {
	defer u.span(spanTick)()

	next := u.allocateNext()
	stats := u.computeGeneration(next)

	u.cells = next
	u.gen++
	u.last = stats
}

func (u *Universe) allocateNext() *bitset.BitSet {
	defer u.span(spanAllocate)()
	return bitset.New(u.cells.Len())
}

func (u *Universe) computeGeneration(next *bitset.BitSet) (stats TickStats) {
	defer u.span(spanGeneration)()
	for row := uint32(0); row < u.height; row++ {
		for col := uint32(0); col < u.width; col++ {
			idx := u.index(row, col)
			cell := u.cells.Test(idx)
			alive := nextState(cell, u.liveNeighborCount(row, col))
			if alive {
				next.Set(idx)
				stats.LiveCells++
			}
			stats.Changed = stats.Changed || alive != cell
		}
	}
	return
}

//nextState applies the B3/S23 rule
func nextState(alive bool, neighbors uint8) bool {
	switch {
	case alive && neighbors < 2:
		return false
	case alive && neighbors == 3:
		return true
	case alive && neighbors > 3:
		return false
	case !alive && neighbors == 3:
		return true
	default:
		return alive
	}
}

//liveNeighborCount counts the alive cells among the 8 wrapped neighbours of row, column
func (u *Universe) liveNeighborCount(row, column uint32) (count uint8) {
	h, w := uint64(u.height), uint64(u.width)
	for _, dr := range [3]uint64{h - 1, 0, 1} {
		for _, dc := range [3]uint64{w - 1, 0, 1} {
			if dr == 0 && dc == 0 {
				continue
			}
			r := uint32((uint64(row) + dr) % h)
			c := uint32((uint64(column) + dc) % w)
			if u.cells.Test(u.index(r, c)) {
				count++
			}
		}
	}
	return
}

func (u *Universe) index(row, column uint32) uint {
	return uint(row)*uint(u.width) + uint(column)
}

func (u *Universe) checkBounds(row, column uint32) error {
	if row >= u.height || column >= u.width {
		return fmt.Errorf("%w: (%v, %v) outside %v x %v", ErrOutOfBounds, row, column, u.height, u.width)
	}
	return nil
}
