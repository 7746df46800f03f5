package simulation

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"bitlife/src/universe"
)

//Options represents the Simulation's configurable options
type Options struct {
	Width          uint32 //grow the universe to this width, 0 keeps universe.DefWidth
	Height         uint32 //grow the universe to this height, 0 keeps universe.DefHeight
	Mode           string //seeding mode: random, empty or anything else for the default pattern
	Threshold      float64
	Seed           int64 //random seed, 0 seeds from the clock
	Interval       time.Duration
	MaxSteps       int //0 means unbounded
	TicksPerRender int
}

//Status represents the status of the Simulation at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	IterationTime time.Duration
	Timings       map[string]time.Duration //last duration of each tick timing span
}

//Frame is a detached copy of the grid, safe to read from any goroutine
type Frame struct {
	Width  uint32
	Height uint32
	Cells  universe.CellsView
}

//Alive reports the state of the cell at row, column
func (f Frame) Alive(row, column uint32) bool {
	return f.Cells.Alive(uint(row)*uint(f.Width) + uint(column))
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(c Controller)
	Start()
}

//The simulation running status at the concrete moment
type RunningState int

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

//ModeEmpty starts with an all-dead universe
const ModeEmpty = "empty"

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefThreshold          = 0.5
	DefTicksPerRender     = 1
)

var DefaultOptions = Options{
	Mode:           universe.ModeDefault,
	Threshold:      DefThreshold,
	Interval:       DefSimulationInterval,
	MaxSteps:       DefMaxSteps,
	TicksPerRender: DefTicksPerRender,
}

var (
	ErrClosed          = errors.New("simulation: closed")
	ErrUnknownTemplate = errors.New("simulation: unknown template")
)

//Simulation drives a universe.Universe
//every call into the universe happens on the mainLoop goroutine,
//other goroutines only see the Status and Frame copies
type Simulation struct {
	options Options
	logger  *log.Logger
	random  universe.RandomSource
	u       *universe.Universe
	timings timingRecorder
	runID   int
	state   struct {
		Status
		sync.Mutex
	}
	frame struct {
		Frame
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	templates map[string]Template
	controlCh chan func()
	closeCh   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

//timingRecorder keeps the last duration of every span, only touched by mainLoop
type timingRecorder map[string]time.Duration

func (t timingRecorder) Observe(name string, d time.Duration) { t[name] = d }

//New creates the Simulation instance and starts its main loop
//stateCh may be nil, otherwise every running state switch is written to it
func New(o *Options, stateCh chan Status, logger *log.Logger) (*Simulation, error) {
	if o == nil {
		o = &DefaultOptions
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := Simulation{
		options:   *o,
		logger:    logger,
		timings:   timingRecorder{},
		stateCh:   stateCh,
		templates: map[string]Template{},
		controlCh: make(chan func(), 1),
		closeCh:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	if s.options.TicksPerRender < 1 {
		s.options.TicksPerRender = DefTicksPerRender
	}
	seed := s.options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.random = universe.NewSeededSource(seed)

	u, err := s.newUniverse(s.options.Mode, s.options.Threshold)
	if err != nil {
		return nil, err
	}
	s.u = u
	s.options.Width, s.options.Height = u.Width(), u.Height()
	for _, tmpl := range DefaultTemplates {
		s.templates[tmpl.Name] = tmpl
	}
	s.publish()
	go s.mainLoop()
	return &s, nil
}

//newUniverse seeds a universe and grows it to the configured dimension
func (s *Simulation) newUniverse(mode string, threshold float64) (u *universe.Universe, err error) {
	deps := universe.Deps{Random: s.random, Logger: s.logger, Timing: s.timings}
	if mode == ModeEmpty {
		u, err = universe.NewEmpty(universe.DefWidth, universe.DefHeight, deps)
	} else {
		u, err = universe.New(mode, threshold, deps)
	}
	if err != nil {
		return nil, err
	}
	if s.options.Width != 0 {
		if err = u.SetWidth(s.options.Width); err != nil {
			return nil, fmt.Errorf("width: %w", err)
		}
	}
	if s.options.Height != 0 {
		if err = u.SetHeight(s.options.Height); err != nil {
			return nil, fmt.Errorf("height: %w", err)
		}
	}
	return u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (s *Simulation) AddTemplate(tmpl Template) error {
	return s.exec(func() error {
		s.templates[tmpl.Name] = tmpl
		return nil
	})
}

//SettleTemplate populates the universe with the seeding template
func (s *Simulation) SettleTemplate(name string) error {
	return s.mutate(func() error {
		tmpl, ok := s.templates[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
		}
		return settle(s.u, tmpl.Cells)
	})
}

//Reseed replaces the universe with a freshly seeded one and resets all counters
func (s *Simulation) Reseed(mode string, threshold float64) error {
	return s.exec(func() error {
		u, err := s.newUniverse(mode, threshold)
		if err != nil {
			return err
		}
		s.u = u
		s.state.Lock()
		s.state.IterationNum = 0
		s.state.IterationTime = 0
		s.state.Unlock()
		s.switchRunningState(RunningStateManual)
		s.publish()
		s.refreshView()
		return nil
	})
}

//ToggleCell flips the cell at row, column
func (s *Simulation) ToggleCell(row, column uint32) error {
	return s.mutate(func() error { return s.u.ToggleCell(row, column) })
}

//AddGlider spawns a glider at a random offset in the top rows
func (s *Simulation) AddGlider() error {
	return s.mutate(func() error { return s.u.AddGlider() })
}

//AddGliderAt spawns a glider centered on row, column
func (s *Simulation) AddGliderAt(row, column uint32) error {
	return s.mutate(func() error { return s.u.AddGliderAt(row, column) })
}

//RegisterViewer registers the viewer - the simulation will call the viewer when the state is changed
func (s *Simulation) RegisterViewer(v Viewer) error {
	v.Register(s)
	return s.exec(func() error {
		s.views = append(s.views, v)
		return nil
	})
}

//StateCh returns the channel with the simulation's status updates
func (s *Simulation) StateCh() chan Status {
	return s.stateCh
}

//Status returns current simulation status represented by Status struct
func (s *Simulation) Status() Status {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.copy()
}

//Options returns the simulation configuration, Width and Height hold the actual dimension
func (s *Simulation) Options() Options {
	return s.options
}

//Frame returns the grid as of the latest command
func (s *Simulation) Frame() Frame {
	s.frame.Lock()
	defer s.frame.Unlock()
	return s.frame.Frame
}

//Run starts the simulation, returns immediately
func (s *Simulation) Run() {
	s.post(s.run)
}

//Stop stops the simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (s *Simulation) Stop() {
	s.post(s.stop)
}

//Step does one render step (TicksPerRender generations), returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (s *Simulation) Step() {
	s.post(s.step)
}

//Close stops the main loop, returns immediately
func (s *Simulation) Close() {
	s.closeOnce.Do(func() { close(s.closeCh) })
}

//Done is closed once the main loop has exited
func (s *Simulation) Done() <-chan struct{} {
	return s.done
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (s *Simulation) mainLoop() {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.controlCh:
			cmd()
		case <-s.closeCh:
			return
		}
	}
}

//post queues the command without waiting for it
func (s *Simulation) post(cmd func()) {
	select {
	case s.controlCh <- cmd:
	case <-s.done:
	}
}

//exec runs the command on the main loop and waits for its result
func (s *Simulation) exec(cmd func() error) error {
	errCh := make(chan error, 1)
	select {
	case s.controlCh <- func() { errCh <- cmd() }:
	case <-s.done:
		return ErrClosed
	}
	select {
	case err := <-errCh:
		return err
	case <-s.done:
		return ErrClosed
	}
}

//mutate runs a universe mutation and refreshes the views when it succeeds
func (s *Simulation) mutate(cmd func() error) error {
	return s.exec(func() error {
		if err := cmd(); err != nil {
			return err
		}
		s.publish()
		s.refreshView()
		return nil
	})
}

func (s *Simulation) runningMode() RunningState {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.RunningMode
}

//switchRunningState switch the state of the simulation to RunningState
//also writes the new state to the stateCh to signal upper control software
func (s *Simulation) switchRunningState(to RunningState) {
	s.state.Lock()
	s.state.RunningMode = to
	st := s.state.copy()
	s.state.Unlock()
	if s.stateCh != nil {
		s.stateCh <- st
	}
}

//run starts the simulation cycle
//the cycle stops on Stop() calling or when the boundary conditions are reached
func (s *Simulation) run() {
	if s.runningMode() == RunningStateRun {
		return
	}
	s.runID++
	id := s.runID
	s.logger.Printf("simulation started at iteration %v", s.Status().IterationNum)
	s.switchRunningState(RunningStateRun)
	go func() {
		for {
			running := false
			err := s.exec(func() error {
				if s.runID != id || s.runningMode() != RunningStateRun {
					return nil
				}
				s.step()
				running = s.runningMode() == RunningStateRun
				return nil
			})
			if err != nil || !running {
				return
			}
			if s.options.Interval > 0 {
				time.Sleep(s.options.Interval)
			}
		}
	}()
}

//stop stops the simulation running cycle
func (s *Simulation) stop() {
	if s.runningMode() == RunningStateRun {
		s.switchRunningState(RunningStateManual)
	}
}

//step advances the universe by TicksPerRender generations
//the simulation is finished when MaxSteps is reached, all cells died or nothing changed
func (s *Simulation) step() {
	rm := s.runningMode()
	finished := false
	s.switchRunningState(RunningStateStep)

	for i := 0; i < s.options.TicksPerRender; i++ {
		if s.maxStepsReached() {
			finished = true
			break
		}
		s.u.Tick()
		st := s.u.LastTick()
		s.state.Lock()
		s.state.IterationNum++
		s.state.IterationTime = st.Duration
		s.state.Unlock()
		if st.LiveCells == 0 || !st.Changed || s.maxStepsReached() {
			finished = true
			break
		}
	}
	s.publish()

	if finished {
		st := s.Status()
		s.logger.Printf("simulation finished at iteration %v with %v live cells", st.IterationNum, st.LiveCells)
		s.switchRunningState(RunningStateFinished)
	} else {
		s.switchRunningState(rm)
	}
	s.refreshView()
}

func (s *Simulation) maxStepsReached() bool {
	s.state.Lock()
	defer s.state.Unlock()
	return s.options.MaxSteps != 0 && s.state.IterationNum >= s.options.MaxSteps
}

//publish copies the universe into the Status and Frame snapshots
func (s *Simulation) publish() {
	f := Frame{Width: s.u.Width(), Height: s.u.Height(), Cells: s.u.Cells().Clone()}
	s.frame.Lock()
	s.frame.Frame = f
	s.frame.Unlock()

	timings := make(map[string]time.Duration, len(s.timings))
	for k, v := range s.timings {
		timings[k] = v
	}
	s.state.Lock()
	s.state.LiveCells = f.Cells.Count()
	s.state.Timings = timings
	s.state.Unlock()
}

//refreshView calls Refresh event for all registered views
func (s *Simulation) refreshView() {
	for _, v := range s.views {
		v.Refresh()
	}
}

//copy returns the Status with its own Timings map
func (st *Status) copy() Status {
	c := *st
	c.Timings = make(map[string]time.Duration, len(st.Timings))
	for k, v := range st.Timings {
		c.Timings[k] = v
	}
	return c
}
