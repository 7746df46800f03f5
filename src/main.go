package main

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/integrii/flaggy"
	"github.com/logrusorgru/aurora"

	"bitlife/src/simulation"
	"bitlife/src/universe"
	"bitlife/src/view"
)

var modes = []string{universe.ModeDefault, universe.ModeRandom, simulation.ModeEmpty}

type EnvOptions struct {
	interactive bool
	template    string
	logFile     string
	progress    int
	width       int
	height      int
}

func main() {
	eo, so := initOptions()

	logger, closeLog := newLogger(eo)
	defer closeLog()

	var stateCh chan simulation.Status

	if !eo.interactive {
		stateCh = make(chan simulation.Status, 10) //the buffered channel to getting the simulation status
	}

	s, err := simulation.New(so, stateCh, logger)
	if err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	if eo.template != "" {
		if err := s.SettleTemplate(eo.template); err != nil {
			log.Fatal(err)
		}
	}

	if eo.interactive {
		v := view.NewViewTerminal(so.Threshold)
		if err := s.RegisterViewer(v); err != nil {
			log.Fatal(err)
		}
		v.Start()
		s.Close()
		return
	}

	v := view.NewConsoleOut(os.Stdout, eo.progress)
	if err := s.RegisterViewer(v); err != nil {
		log.Fatal(err)
	}
	v.Start()
	s.Run()
	for st := range stateCh {
		if st.RunningMode == simulation.RunningStateFinished {
			break
		}
	}
	s.Close()
	<-s.Done()
}

//newLogger writes to stderr in batch mode, the interactive mode logs only to --log
func newLogger(eo *EnvOptions) (*log.Logger, func()) {
	prefix := aurora.Cyan("[life] ").String()
	if eo.logFile != "" {
		f, err := os.OpenFile(eo.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		return log.New(f, prefix, log.LstdFlags), func() { _ = f.Close() }
	}
	if eo.interactive {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.New(os.Stderr, prefix, log.LstdFlags), func() {}
}

func initOptions() (eo *EnvOptions, so *simulation.Options) {

	o := simulation.DefaultOptions
	so = &o
	eo = &EnvOptions{progress: 10}

	flaggy.SetName("bitlife")
	flaggy.SetDescription("Conway's Game of Life on a toroidal, bit-packed grid")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&eo.width, "x", "width", "Grow the field to this width (the field starts 64 wide)")
	flaggy.Int(&eo.height, "y", "height", "Grow the field to this height (the field starts 64 high)")
	flaggy.String(&so.Mode, "m", "mode", "Seeding mode ["+strings.Join(modes, "|")+"]")
	flaggy.Float64(&so.Threshold, "t", "threshold", "Random seeding: a cell is dead when its sample is below the threshold")
	flaggy.Int64(&so.Seed, "", "seed", "Random seed, 0 seeds from the clock")
	flaggy.Duration(&so.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&so.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 runs until the universe settles")
	flaggy.Int(&so.TicksPerRender, "k", "ticks", "Generations per render step")
	flaggy.String(&eo.template, "p", "pattern", "Settle a built-in pattern on start ["+strings.Join(templateNames(), "|")+"]")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.String(&eo.logFile, "l", "log", "Append diagnostics to this file")
	flaggy.Int(&eo.progress, "", "progress", "Print progress every n iterations in batch mode")

	flaggy.Parse()

	if eo.width < 0 || eo.height < 0 {
		flaggy.ShowHelpAndExit("width and height must not be negative")
	}
	so.Width, so.Height = uint32(eo.width), uint32(eo.height)
	if so.Interval < 0 {
		so.Interval = 0
	}

	return
}

func templateNames() []string {
	names := make([]string, 0, len(simulation.DefaultTemplates))
	for _, t := range simulation.DefaultTemplates {
		names = append(names, t.Name)
	}
	return names
}
