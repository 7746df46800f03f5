package universe

import (
	"math/rand"
	"time"
)

//RandomSource yields uniform samples in [0,1)
//*rand.Rand satisfies it
type RandomSource interface {
	Float64() float64
}

//RandomFunc adapts a plain function to RandomSource
type RandomFunc func() float64

func (f RandomFunc) Float64() float64 { return f() }

//NewSeededSource returns a deterministic source for the given seed
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

//Logger is the diagnostic sink, *log.Logger satisfies it
type Logger interface {
	Printf(format string, v ...interface{})
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

//TimingSink receives the durations of the scoped timing spans
type TimingSink interface {
	Observe(name string, d time.Duration)
}

//Deps carries the capabilities a Universe consumes from its host
//all fields are optional
type Deps struct {
	Random RandomSource
	Logger Logger
	Timing TimingSink
}

func (d Deps) withDefaults() Deps {
	if d.Random == nil {
		d.Random = RandomFunc(rand.Float64)
	}
	if d.Logger == nil {
		d.Logger = discardLogger{}
	}
	return d
}

//span starts a timing span, the returned func ends it
//usage: defer u.span("tick")()
func (u *Universe) span(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		if name == spanTick {
			u.last.Duration = d
		}
		if u.deps.Timing != nil {
			u.deps.Timing.Observe(name, d)
		}
	}
}
