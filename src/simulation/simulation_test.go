package simulation

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"bitlife/src/universe"
)

func newTestSimulation(t *testing.T, o Options, stateCh chan Status) *Simulation {
	t.Helper()
	if o.Seed == 0 {
		o.Seed = 1
	}
	s, err := New(&o, stateCh, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

//waitFor reads the status updates until the running mode is reached
func waitFor(t *testing.T, stateCh chan Status, mode RunningState) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == mode {
				return st
			}
		case <-timeout:
			t.Fatalf("timed out waiting for running mode %v", mode)
		}
	}
}

func expectFrame(t *testing.T, f Frame, cells [][2]uint32) {
	t.Helper()
	want := map[[2]uint32]bool{}
	for _, c := range cells {
		want[c] = true
	}
	for row := uint32(0); row < f.Height; row++ {
		for col := uint32(0); col < f.Width; col++ {
			if f.Alive(row, col) != want[[2]uint32{row, col}] {
				t.Fatalf("cell (%d,%d) alive=%v", row, col, f.Alive(row, col))
			}
		}
	}
}

func TestStepAdvancesOneRender(t *testing.T) {
	stateCh := make(chan Status, 10)
	s := newTestSimulation(t, Options{Mode: ModeEmpty}, stateCh)
	if err := s.SettleTemplate("blinker"); err != nil {
		t.Fatal(err)
	}
	s.Step()
	waitFor(t, stateCh, RunningStateStep)
	st := waitFor(t, stateCh, RunningStateManual)
	if st.IterationNum != 1 || st.LiveCells != 3 {
		t.Fatalf("unexpected status %+v", st)
	}
	expectFrame(t, s.Frame(), [][2]uint32{{2, 1}, {2, 2}, {2, 3}})
	if _, ok := s.Status().Timings["tick"]; !ok {
		t.Fatalf("tick timing not reported: %v", s.Status().Timings)
	}
}

func TestTicksPerRender(t *testing.T) {
	stateCh := make(chan Status, 10)
	s := newTestSimulation(t, Options{Mode: ModeEmpty, TicksPerRender: 4}, stateCh)
	if err := s.SettleTemplate("glider"); err != nil {
		t.Fatal(err)
	}
	s.Step()
	st := waitFor(t, stateCh, RunningStateManual)
	if st.IterationNum != 4 {
		t.Fatalf("iteration %d, expected 4", st.IterationNum)
	}
	expectFrame(t, s.Frame(), [][2]uint32{{2, 3}, {3, 4}, {4, 2}, {4, 3}, {4, 4}})
}

func TestRunStopsAtMaxSteps(t *testing.T) {
	stateCh := make(chan Status, 10)
	s := newTestSimulation(t, Options{Mode: ModeEmpty, MaxSteps: 5}, stateCh)
	if err := s.SettleTemplate("blinker"); err != nil {
		t.Fatal(err)
	}
	s.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	if st.IterationNum != 5 {
		t.Fatalf("finished at iteration %d, expected 5", st.IterationNum)
	}
}

func TestRunFinishesWhenUniverseDies(t *testing.T) {
	stateCh := make(chan Status, 10)
	s := newTestSimulation(t, Options{Mode: ModeEmpty}, stateCh)
	if err := s.ToggleCell(10, 10); err != nil {
		t.Fatal(err)
	}
	s.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	if st.IterationNum != 1 || st.LiveCells != 0 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStopInterruptsRun(t *testing.T) {
	stateCh := make(chan Status, 10)
	s := newTestSimulation(t, Options{Mode: ModeEmpty, Interval: time.Millisecond}, stateCh)
	if err := s.SettleTemplate("glider"); err != nil {
		t.Fatal(err)
	}
	s.Run()
	waitFor(t, stateCh, RunningStateRun)
	//the main loop may be blocked on stateCh until it is drained
	go s.Stop()
	waitFor(t, stateCh, RunningStateManual)
	if s.Status().RunningMode != RunningStateManual {
		t.Fatalf("running mode %v after Stop", s.Status().RunningMode)
	}
}

func TestMutatorsReturnUniverseErrors(t *testing.T) {
	s := newTestSimulation(t, Options{Mode: ModeEmpty}, nil)
	if err := s.ToggleCell(64, 0); !errors.Is(err, universe.ErrOutOfBounds) {
		t.Fatalf("ToggleCell: got %v", err)
	}
	if err := s.AddGliderAt(0, 3); !errors.Is(err, universe.ErrGliderUnderflow) {
		t.Fatalf("AddGliderAt: got %v", err)
	}
	if err := s.SettleTemplate("nope"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("SettleTemplate: got %v", err)
	}
	if err := s.Reseed(universe.ModeRandom, 2); !errors.Is(err, universe.ErrInvalidThreshold) {
		t.Fatalf("Reseed: got %v", err)
	}
	if err := s.AddTemplate(Template{Name: "far", Cells: [][2]uint32{{1, 1}, {100, 1}}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SettleTemplate("far"); !errors.Is(err, universe.ErrOutOfBounds) {
		t.Fatalf("SettleTemplate: got %v", err)
	}
	if s.Frame().Cells.Count() != 0 {
		t.Fatal("rejected template must not settle any cell")
	}
}

func TestGliderCommands(t *testing.T) {
	s := newTestSimulation(t, Options{Mode: ModeEmpty}, nil)
	if err := s.AddGliderAt(20, 20); err != nil {
		t.Fatal(err)
	}
	expectFrame(t, s.Frame(), [][2]uint32{{19, 20}, {20, 21}, {21, 19}, {21, 20}, {21, 21}})
	if err := s.AddGlider(); err != nil {
		t.Fatal(err)
	}
	if s.Status().LiveCells != 10 {
		t.Fatalf("%d live cells, expected two gliders", s.Status().LiveCells)
	}
}

func TestReseedResetsCounters(t *testing.T) {
	s := newTestSimulation(t, Options{}, nil)
	s.Step()
	if err := s.Reseed(ModeEmpty, 0); err != nil {
		t.Fatal(err)
	}
	st := s.Status()
	if st.IterationNum != 0 || st.LiveCells != 0 || st.RunningMode != RunningStateManual {
		t.Fatalf("unexpected status after reseed %+v", st)
	}
	if err := s.Reseed(universe.ModeRandom, 0); err != nil {
		t.Fatal(err)
	}
	if s.Status().LiveCells != 64*64 {
		t.Fatalf("threshold 0 must seed every cell alive, got %d", s.Status().LiveCells)
	}
}

func TestOptionsGrowUniverse(t *testing.T) {
	s := newTestSimulation(t, Options{Width: 80, Height: 70}, nil)
	o := s.Options()
	f := s.Frame()
	if o.Width != 80 || o.Height != 70 || f.Width != 80 || f.Height != 70 || f.Cells.Len() != 80*70 {
		t.Fatalf("unexpected dimension options %vx%v frame %vx%v", o.Width, o.Height, f.Width, f.Height)
	}
	if o.TicksPerRender != DefTicksPerRender {
		t.Fatalf("ticks per render %d", o.TicksPerRender)
	}

	if _, err := New(&Options{Width: 10}, nil, nil); !errors.Is(err, universe.ErrShrink) {
		t.Fatalf("got %v, expected ErrShrink", err)
	}
}

type fakeViewer struct {
	c         Controller
	refreshes int32
	started   bool
}

func (v *fakeViewer) Register(c Controller) { v.c = c }
func (v *fakeViewer) Refresh()              { atomic.AddInt32(&v.refreshes, 1) }
func (v *fakeViewer) Start()                { v.started = true }

func TestViewerRefresh(t *testing.T) {
	s := newTestSimulation(t, Options{Mode: ModeEmpty}, nil)
	v := &fakeViewer{}
	if err := s.RegisterViewer(v); err != nil {
		t.Fatal(err)
	}
	if v.c == nil {
		t.Fatal("viewer not registered")
	}
	if err := s.ToggleCell(1, 1); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&v.refreshes); n != 1 {
		t.Fatalf("%d refreshes, expected 1", n)
	}
	if err := s.ToggleCell(100, 1); err == nil {
		t.Fatal("expected an error")
	}
	if n := atomic.LoadInt32(&v.refreshes); n != 1 {
		t.Fatalf("failed mutation must not refresh, got %d", n)
	}
}

func TestClosed(t *testing.T) {
	s := newTestSimulation(t, Options{}, nil)
	s.Close()
	<-s.Done()
	if err := s.ToggleCell(1, 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, expected ErrClosed", err)
	}
	s.Step()
	s.Close()
}
