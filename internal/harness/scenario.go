package harness

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

// Report modes.
const (
	ModeAssert = "assert"
	ModeDump   = "dump"
)

// ErrUnknownScenario is returned by ResolveScenario when the argument is
// neither a built-in name nor a readable file.
var ErrUnknownScenario = errors.New("harness: unknown scenario")

//go:embed scenario.cue
var scenarioSchema string

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// Scenario describes what to simulate and how to report it.
// Field defaults come from scenario.cue, not from Go zero values.
type Scenario struct {
	// Name is written into the log header and done marker.
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description,omitempty"`

	// Mode is ModeAssert or ModeDump.
	Mode string `json:"mode" yaml:"mode"`

	Solver         string  `json:"solver" yaml:"solver"`
	RecordEvents   bool    `json:"record_events" yaml:"record_events"`
	OutputInterval float64 `json:"output_interval" yaml:"output_interval"`
	Validate       bool    `json:"validate" yaml:"validate"`

	// Describe prints the model description before simulating, when the
	// engine supports it.
	Describe bool `json:"describe" yaml:"describe"`

	// Tolerance is the atol of every emitted isapprox line.
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`

	FinalTime   FinalTimeCheck `json:"final_time" yaml:"final_time"`
	Checkpoints []Checkpoint   `json:"checkpoints" yaml:"checkpoints,omitempty"`
	FinalStates []FieldCheck   `json:"final_states" yaml:"final_states,omitempty"`

	// DumpTag names the dump markers: ---begin_of_<tag>_results---.
	DumpTag string `json:"dump_tag" yaml:"dump_tag"`
}

// FinalTimeCheck compares the time of the last sample with the stop time.
type FinalTimeCheck struct {
	Check   bool   `json:"check" yaml:"check"`
	Comment string `json:"comment" yaml:"comment"`
}

// Checkpoint compares one field of the first sample at or after Time.
type Checkpoint struct {
	Time     float64 `json:"time" yaml:"time"`
	Field    int     `json:"field" yaml:"field"`
	Expected float64 `json:"expected" yaml:"expected"`
	Comment  string  `json:"comment" yaml:"comment,omitempty"`
}

// FieldCheck compares one field of the final sample.
type FieldCheck struct {
	Field    int     `json:"field" yaml:"field"`
	Expected float64 `json:"expected" yaml:"expected"`
	Comment  string  `json:"comment" yaml:"comment,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes YAML, unifies it with the #Scenario schema and
// decodes the fully defaulted result. filename is used in error positions.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema, cue.Filename("scenario.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))

	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("build scenario: %s", cueerrors.Details(err, nil))
	}

	v := def.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid scenario: %s", strings.TrimSpace(cueerrors.Details(err, nil)))
	}

	var s Scenario
	if err := v.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &s, nil
}

// Builtin returns the embedded scenario with the given short name, e.g.
// "bouncing_ball".
func Builtin(name string) (*Scenario, error) {
	data, err := builtinFS.ReadFile(path.Join("scenarios", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return ParseScenario(name+".yaml", data)
}

// ListBuiltin returns the short names of the embedded scenarios, sorted.
func ListBuiltin() []string {
	entries, err := builtinFS.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// ResolveScenario accepts a built-in name or a path to a scenario file.
// Built-in names win over files in the working directory.
func ResolveScenario(nameOrPath string) (*Scenario, error) {
	if s, err := Builtin(nameOrPath); err == nil {
		return s, nil
	} else if !errors.Is(err, ErrUnknownScenario) {
		return nil, err
	}

	if _, err := os.Stat(nameOrPath); err != nil {
		return nil, fmt.Errorf("%w: %q is not a built-in scenario (%s) or a readable file",
			ErrUnknownScenario, nameOrPath, strings.Join(ListBuiltin(), ", "))
	}
	return LoadScenario(nameOrPath)
}
