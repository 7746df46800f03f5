package simulation

//Controller is what a Viewer can see and do with the simulation
type Controller interface {
	Status() Status
	Options() Options
	Frame() Frame
	StateCh() chan Status
	AddTemplate(tmpl Template) error
	SettleTemplate(name string) error
	Reseed(mode string, threshold float64) error
	ToggleCell(row, column uint32) error
	AddGlider() error
	AddGliderAt(row, column uint32) error
	RegisterViewer(v Viewer) error
	Run()
	Stop()
	Step()
	Close()
}

var _ Controller = (*Simulation)(nil)
