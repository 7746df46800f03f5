package view

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"bitlife/src/simulation"
	"bitlife/src/universe"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

type ConsoleUI struct {
	c          simulation.Controller
	g          *gocui.Gui
	k          []keyBindings
	threshold  float64
	liveFiller string
	deadFiller string
	lastErr    string //only touched on the gui goroutine
}

var (
	runningStateDescr = map[simulation.RunningState]string{
		simulation.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		simulation.RunningStateStep:     "do the step",
		simulation.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		simulation.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

//NewViewTerminal creates the interactive viewer, threshold is used by the random reseed command
func NewViewTerminal(threshold float64) *ConsoleUI {

	var err error
	t := ConsoleUI{
		threshold:  threshold,
		liveFiller: aurora.Green("█").BgBrightGreen().String(),
		deadFiller: "░",
	}

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}

	t.g.Mouse = true
	t.k = []keyBindings{
		{gocui.KeyCtrlC,
			"^C",
			"Exit",
			t.cmdQuit,
			""},
		{'n',
			"N",
			"Next step",
			t.cmdNextRound,
			""},
		{'r',
			"R",
			"Run",
			t.cmdRun,
			""},
		{'s',
			"S",
			"Stop",
			t.cmdStop,
			""},
		{'c',
			"C",
			"Clear",
			t.cmdClear,
			""},
		{'d',
			"D",
			"Default world",
			t.cmdSettleDefault,
			""},
		{'w',
			"W",
			"Settle with random",
			t.cmdSettleWithRandom,
			""},
		{'q',
			"Q",
			"Glider",
			t.cmdGlider,
			""},
		{gocui.MouseLeft,
			"MOUSE",
			"Toggle the cell",
			t.cmdMouseClick,
			"battlefield"},
		{gocui.MouseRight,
			"RMOUSE",
			"Glider at",
			t.cmdMouseGlider,
			"battlefield"},
	}
	t.g.SetManagerFunc(t.layout)

	t.initKeyBindings(t.k)

	return &t
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			log.Panicln(err)
		}
	}
}

func (t *ConsoleUI) Register(c simulation.Controller) {
	t.c = c
}

func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh() {
	t.renderField(t.c.Frame())
	t.renderConfiguration()
	t.renderStatus()
}

//renderField schedules a field redraw, for calls from outside the gui goroutine
func (t *ConsoleUI) renderField(f simulation.Frame) {
	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("battlefield")
		if e != nil {
			return e
		}
		t.drawField(v, f)
		return nil
	})
}

//drawField redraws the entire field at once, must run on the gui goroutine
func (t *ConsoleUI) drawField(v *gocui.View, f simulation.Frame) {
	v.Clear()
	maxW, maxH := v.Size()
	_, _ = fmt.Fprint(v, fieldText(f, maxW, maxH, t.liveFiller, t.deadFiller))
}

//fieldText renders the frame cropped to maxW x maxH
func fieldText(f simulation.Frame, maxW, maxH int, liveFiller, deadFiller string) string {
	crop := int(f.Width) > maxW || int(f.Height) > maxH

	var b bytes.Buffer

	for row := uint32(0); row < f.Height; row++ {
		//discard the data outside the view area
		if int(row) >= maxH {
			break
		}
		//line feed char
		if row != 0 {
			b.WriteByte(10)
		}
		if crop && int(row) == (maxH-1) {
			b.WriteString(aurora.Red("The field size is larger than the viewing area").BgBlack().String())
			break
		}
		for col := uint32(0); col < f.Width && int(col) < maxW; col++ {
			if f.Alive(row, col) {
				b.WriteString(liveFiller)
			} else {
				b.WriteString(deadFiller)
			}
		}
	}
	return b.String()
}

func (t *ConsoleUI) renderStatus() {
	s := t.c.Status()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := t.g.View("status"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Step", "%v", s.IterationNum))
			_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
			_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
			spans := make([]string, 0, len(s.Timings))
			for name := range s.Timings {
				spans = append(spans, name)
			}
			sort.Strings(spans)
			for _, name := range spans {
				_, _ = fmt.Fprintln(v, t.renderProp(name, "%v", s.Timings[name].Round(time.Microsecond)))
			}
			if t.lastErr != "" {
				_, _ = fmt.Fprintln(v, " "+aurora.Red(t.lastErr).String())
			}
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		c := t.c.Options()
		if v, e := g.View("configuration"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", c.Width, c.Height))
			_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", c.Interval))
			_, _ = fmt.Fprintln(v, t.renderProp("Iterations", "%v steps", c.MaxSteps))
			_, _ = fmt.Fprintln(v, t.renderProp("Ticks/render", "%v", c.TicksPerRender))
			_, _ = fmt.Fprintln(v, t.renderProp("Threshold", "%v", t.threshold))
		}
		return nil
	})
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()
	leftColumnWidth := 32
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		return nil

	} else {
		if _, err := t.headerLayout(g, 3, "This is \"The Life\" game on a torus"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Universe"
		v.Frame = true
		t.drawField(v, t.c.Frame())
	}

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		v.Wrap = true
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		if maxX < len(text) {
			panic(fmt.Sprintf("Terminal width is too small: %v", maxX))
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", (maxX-len(text))/2)+text)
	}
	return
}

//report keeps the error of the last command for the status view
func (t *ConsoleUI) report(err error) error {
	if err != nil {
		t.lastErr = err.Error()
	} else {
		t.lastErr = ""
	}
	t.renderStatus()
	return nil
}

//cell maps the view cursor to the grid coordinates
func cell(v *gocui.View) (row, column uint32) {
	cx, cy := v.Cursor()
	ox, oy := v.Origin()
	return uint32(cy + oy), uint32(cx + ox)
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	t.c.Step()
	return nil
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	t.c.Run()
	return nil
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	t.c.Stop()
	return nil
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	return t.report(t.c.Reseed(simulation.ModeEmpty, 0))
}

func (t *ConsoleUI) cmdSettleDefault(_ *gocui.View) error {
	return t.report(t.c.Reseed(universe.ModeDefault, 0))
}

func (t *ConsoleUI) cmdSettleWithRandom(_ *gocui.View) error {
	return t.report(t.c.Reseed(universe.ModeRandom, t.threshold))
}

func (t *ConsoleUI) cmdGlider(_ *gocui.View) error {
	return t.report(t.c.AddGlider())
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	row, col := cell(v)
	return t.report(t.c.ToggleCell(row, col))
}

func (t *ConsoleUI) cmdMouseGlider(v *gocui.View) error {
	row, col := cell(v)
	return t.report(t.c.AddGliderAt(row, col))
}
