package simulation

import "bitlife/src/universe"

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name  string      //template name
	Descr string      //template descr
	Cells [][2]uint32 //array of [row, column] coordinates
}

//DefaultTemplates are registered on every new Simulation
var DefaultTemplates = []Template{
	{
		Name:  "sample",
		Descr: "the test sample with 3 stable patterns",
		Cells: [][2]uint32{
			{1, 1}, {2, 1},
			{1, 2}, {2, 2},
			{3, 3},
			{2, 4},
			{3, 4},
			{3, 5},
		},
	},
	{
		Name:  "glider",
		Descr: "a glider heading to the bottom right",
		Cells: [][2]uint32{{1, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}},
	},
	{
		Name:  "blinker",
		Descr: "period 2 oscillator",
		Cells: [][2]uint32{{1, 2}, {2, 2}, {3, 2}},
	},
}

//settle sets the cells alive, nothing is written when any cell is outside the universe
func settle(u *universe.Universe, cells [][2]uint32) error {
	for _, c := range cells {
		if _, err := u.Cell(c[0], c[1]); err != nil {
			return err
		}
	}
	for _, c := range cells {
		if err := u.SetCell(c[0], c[1], true); err != nil {
			return err
		}
	}
	return nil
}
