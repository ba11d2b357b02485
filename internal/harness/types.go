package harness

import (
	"time"

	"github.com/roach88/fmuharness/internal/params"
	"github.com/roach88/fmuharness/internal/store"
)

// AssertionResult is one line written to the log in assert mode, plus
// whether it evaluates to true.
type AssertionResult struct {
	Line string `json:"line"`
	Pass bool   `json:"pass"`
}

// Outcome is what a Runner observed during one run.
//
// A run whose engine failed still produces an Outcome: Err is set and the
// synthetic failing line is the last entry in Assertions.
type Outcome struct {
	RunID    string        `json:"run_id"`
	Scenario string        `json:"scenario"`
	Engine   string        `json:"engine"`
	Mode     string        `json:"mode"`
	Params   params.Params `json:"params"`

	// Samples is the number of samples the engine returned.
	Samples int `json:"samples"`

	// Dumped is the number of sample rows written in dump mode.
	Dumped int `json:"dumped,omitempty"`

	Assertions []AssertionResult `json:"assertions,omitempty"`

	// Err is the error caught between engine call and report, if any.
	Err error `json:"-"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// AddAssertion appends a result line.
func (o *Outcome) AddAssertion(line string, pass bool) {
	o.Assertions = append(o.Assertions, AssertionResult{Line: line, Pass: pass})
}

// Passed counts assertion lines that hold.
func (o *Outcome) Passed() int {
	n := 0
	for _, a := range o.Assertions {
		if a.Pass {
			n++
		}
	}
	return n
}

// Failed counts assertion lines that do not hold.
func (o *Outcome) Failed() int {
	return len(o.Assertions) - o.Passed()
}

// OK reports whether the run finished without error and every assertion
// holds.
func (o *Outcome) OK() bool {
	return o.Err == nil && o.Failed() == 0
}

// Record converts the outcome into a ledger row.
func (o *Outcome) Record() store.Run {
	run := store.Run{
		ID:         o.RunID,
		Scenario:   o.Scenario,
		Engine:     o.Engine,
		FMUFile:    o.Params.FMUFile,
		Start:      o.Params.Start,
		Stop:       o.Params.Stop,
		StartedAt:  o.StartedAt,
		FinishedAt: o.FinishedAt,
		Samples:    o.Samples,
		Passed:     o.Passed(),
		Failed:     o.Failed(),
		Params: map[string]any{
			"lock_file": o.Params.LockFile,
			"log_file":  o.Params.LogFile,
			"fmu_file":  o.Params.FMUFile,
			"test_flag": o.Params.TestFlag,
			"t_start":   o.Params.Start,
			"t_stop":    o.Params.Stop,
			"mode":      o.Mode,
		},
	}
	if o.Err != nil {
		run.Error = o.Err.Error()
	}
	return run
}
