package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/hashnav/internal/errors"
)

// Scenario is a scripted navigation session.
type Scenario struct {
	// Name describes the scenario.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Config is a config file path, relative to the scenario file.
	Config string `json:"config,omitempty" yaml:"config,omitempty"`

	// InitialURL overrides the config's initial address.
	InitialURL string `json:"initialURL,omitempty" yaml:"initialURL,omitempty"`

	// PushState overrides the config's History API support.
	PushState *bool `json:"pushState,omitempty" yaml:"pushState,omitempty"`

	// Steps run in order.
	Steps []Step `json:"steps" yaml:"steps"`

	path string
}

// Step is one scenario action. Exactly one field other than Line is set.
type Step struct {
	Push    *string `json:"push,omitempty" yaml:"push,omitempty"`
	Replace *string `json:"replace,omitempty" yaml:"replace,omitempty"`
	Go      *int    `json:"go,omitempty" yaml:"go,omitempty"`

	// Edit types an address into the address bar. A value starting with
	// "#" or "/" is resolved against the current address.
	Edit   *string `json:"edit,omitempty" yaml:"edit,omitempty"`
	Expect *Expect `json:"expect,omitempty" yaml:"expect,omitempty"`

	// Line is the step's line in a YAML file, or 0.
	Line int `json:"-" yaml:"-"`
}

// Expect checks the state after the previous steps. Empty fields are not
// checked.
type Expect struct {
	FullPath string `json:"fullPath,omitempty" yaml:"fullPath,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`

	// Hash is the address fragment without "#".
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Href string `json:"href,omitempty" yaml:"href,omitempty"`

	// Outcome is the outcome of the last transition the previous step
	// started, such as "committed" or "duplicated".
	Outcome string `json:"outcome,omitempty" yaml:"outcome,omitempty"`

	Ready   *bool `json:"ready,omitempty" yaml:"ready,omitempty"`
	Reloads *int  `json:"reloads,omitempty" yaml:"reloads,omitempty"`
	Entries *int  `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// UnmarshalYAML records the step's line.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type plain Step
	if err := value.Decode((*plain)(s)); err != nil {
		return err
	}
	s.Line = value.Line
	return nil
}

// Kind names the step's action.
func (s Step) Kind() string {
	switch {
	case s.Push != nil:
		return "push"
	case s.Replace != nil:
		return "replace"
	case s.Go != nil:
		return "go"
	case s.Edit != nil:
		return "edit"
	case s.Expect != nil:
		return "expect"
	default:
		return ""
	}
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{s.Push != nil, s.Replace != nil, s.Go != nil, s.Edit != nil, s.Expect != nil} {
		if set {
			n++
		}
	}
	return n
}

// Path returns the file the scenario was loaded from.
func (sc *Scenario) Path() string {
	return sc.path
}

// ConfigPath returns the scenario's config file path, or "".
func (sc *Scenario) ConfigPath() string {
	if sc.Config == "" || filepath.IsAbs(sc.Config) || sc.path == "" {
		return sc.Config
	}
	return filepath.Join(filepath.Dir(sc.path), sc.Config)
}

// Load reads a scenario file. The format is chosen by extension.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").Wrap(err)
	}
	sc, err := decode(data, filepath.Ext(path), path)
	if err != nil {
		return nil, err
	}
	sc.path = path
	return sc, nil
}

// Parse decodes a scenario in the format named by ext (".yaml", ".yml"
// or ".json").
func Parse(data []byte, ext string) (*Scenario, error) {
	return decode(data, ext, "")
}

func decode(data []byte, ext, path string) (*Scenario, error) {
	var sc Scenario
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&sc); err != nil && err != io.EOF {
			return nil, located(errors.New("E120").WithDetail(err.Error()), path, yamlLine(err))
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sc); err != nil {
			return nil, errors.New("E120").WithDetail(err.Error())
		}
	default:
		return nil, errors.New("E120").WithDetailf("unsupported scenario extension %q", ext)
	}

	if len(sc.Steps) == 0 {
		return nil, errors.New("E120").WithDetail("scenario has no steps")
	}
	for i, step := range sc.Steps {
		if step.actions() != 1 {
			err := errors.New("E120").
				WithDetailf("step %d must have exactly one action", i+1).
				WithSuggestion("Split combined actions into separate list items")
			return nil, located(err, path, step.Line)
		}
	}
	return &sc, nil
}

// located attaches a file location when both parts are known.
func located(e *errors.Error, path string, line int) *errors.Error {
	if path != "" && line > 0 {
		e.WithLocation(path, line, 0)
	}
	return e
}

// yamlLine extracts the line from a yaml.v3 error message ("yaml: line 3: ...").
func yamlLine(err error) int {
	msg := err.Error()
	i := strings.Index(msg, "line ")
	if i < 0 {
		return 0
	}
	var line int
	fmt.Sscanf(msg[i:], "line %d", &line)
	return line
}
