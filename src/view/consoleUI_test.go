package view

import (
	"strings"
	"testing"

	"bitlife/src/simulation"
	"bitlife/src/universe"
)

func newTestFrame(t *testing.T, width, height uint32, live [][2]uint32) simulation.Frame {
	t.Helper()
	u, err := universe.NewEmpty(width, height, universe.Deps{})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range live {
		if err := u.SetCell(c[0], c[1], true); err != nil {
			t.Fatal(err)
		}
	}
	return simulation.Frame{Width: width, Height: height, Cells: u.Cells().Clone()}
}

func TestFieldTextFits(t *testing.T) {
	f := newTestFrame(t, 3, 2, [][2]uint32{{0, 1}, {1, 2}})
	got := fieldText(f, 10, 10, "#", ".")
	if want := ".#.\n..#"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFieldTextCropsToView(t *testing.T) {
	f := newTestFrame(t, 6, 6, [][2]uint32{{0, 0}})
	got := fieldText(f, 4, 3, "#", ".")
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), got)
	}
	if lines[0] != "#..." || lines[1] != "...." {
		t.Fatalf("unexpected cropped rows %q", lines[:2])
	}
	if !strings.Contains(lines[2], "larger than the viewing area") {
		t.Fatalf("last row misses the crop notice: %q", lines[2])
	}
}

func TestFieldTextFillers(t *testing.T) {
	f := newTestFrame(t, 2, 1, [][2]uint32{{0, 0}})
	got := fieldText(f, 10, 10, "██", "  ")
	if want := "██  "; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
