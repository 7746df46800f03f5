package view

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"bitlife/src/simulation"
	"bitlife/src/universe"
)

//ConsoleOut prints the configuration, the progress and the final result of a non-interactive run
type ConsoleOut struct {
	c         simulation.Controller
	w         io.Writer
	every     int
	reported  int //progress intervals already printed
	startTime time.Time
}

//NewConsoleOut creates the viewer, progress is printed every n iterations
func NewConsoleOut(w io.Writer, every int) *ConsoleOut {
	if every < 1 {
		every = 1
	}
	return &ConsoleOut{w: w, every: every}
}

func (c *ConsoleOut) Refresh() {
	st := c.c.Status()
	if st.RunningMode == simulation.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration": st.IterationNum,
			"Total time":     totalTime,
			"Live cells":     st.LiveCells,
		}
		for name, d := range st.Timings {
			resultData["Span "+name] = d.Round(time.Microsecond)
		}
		fmt.Fprintln(c.w, aurora.Bold("\nFinished:"))
		c.printHashData(resultData)
	} else if st.RunningMode == simulation.RunningStateRun {
		//a render step may jump over several multiples of every
		if n := st.IterationNum / c.every; n > c.reported {
			c.reported = n
			fmt.Fprintf(c.w, "  Iterations done: %v, live cells: %v\n", aurora.Cyan(st.IterationNum), st.LiveCells)
		}
	}
}

func (c *ConsoleOut) Register(ctrl simulation.Controller) {
	c.c = ctrl
	o := c.c.Options()
	fmt.Fprintln(c.w, aurora.Bold("Running configuration:"))
	c.printHashData(map[string]interface{}{
		"Dimension":        fmt.Sprintf("%v x %v", o.Width, o.Height),
		"Interval":         o.Interval,
		"Max iterations":   fmt.Sprintf("%v steps", o.MaxSteps),
		"Seeding":          seedingDescr(o),
		"Ticks per render": o.TicksPerRender,
	})
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	c.reported = 0
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", aurora.Green(propName), d[propName])
	}
}

func seedingDescr(o simulation.Options) string {
	switch o.Mode {
	case universe.ModeRandom:
		return fmt.Sprintf("random, threshold %v", o.Threshold)
	case simulation.ModeEmpty:
		return "empty"
	}
	return "default"
}
