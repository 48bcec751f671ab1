package policy

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// Enumeration of integer division rules.  Trunc divides toward zero with the
// remainder taking the dividend's sign; floor floors the quotient.  Every
// generator and the reference evaluator follow the configured rule, so all
// parties agree on negative operands by construction.
const (
	DivisionTrunc = "trunc"
	DivisionFloor = "floor"
)

// Policy carries the translation and verification settings loaded from the
// optional `rrt.toml` file.
type Policy struct {
	// The targets to generate and verify, in order.
	Targets []string `toml:"targets"`

	// The integer division rule: `trunc` or `floor`.
	Division string `toml:"division"`

	// The maximum relative error accepted when comparing float results.
	Epsilon float64 `toml:"epsilon"`

	// Per-target compile timeout in seconds.
	CompileTimeoutSecs float64 `toml:"compile-timeout"`

	// Per-case run timeout in seconds.
	RunTimeoutSecs float64 `toml:"run-timeout"`

	// Overrides for the external tools used to compile and run targets,
	// keyed by target name.
	Tools map[string]string `toml:"tools"`
}

// PolicyFileName is the name of the policy file looked up in the working
// directory.
const PolicyFileName = "rrt.toml"

// Default returns the policy used when no policy file exists.
func Default() *Policy {
	return &Policy{
		Targets:            []string{"c99", "java"},
		Division:           DivisionTrunc,
		Epsilon:            1e-9,
		CompileTimeoutSecs: 30,
		RunTimeoutSecs:     5,
	}
}

// Load reads the policy file at path, filling unset fields with defaults.  A
// missing file yields the default policy.
func Load(path string) (*Policy, error) {
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}

		return nil, fmt.Errorf("unable to read policy file at `%s`: %s", path, err.Error())
	}

	p := &Policy{}
	if err := toml.Unmarshal(buff, p); err != nil {
		return nil, fmt.Errorf("error parsing policy file at `%s`: %s", path, err.Error())
	}

	p.fillDefaults()

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid policy file at `%s`: %s", path, err.Error())
	}

	return p, nil
}

// fillDefaults replaces unset policy fields with their default values.
func (p *Policy) fillDefaults() {
	def := Default()

	if len(p.Targets) == 0 {
		p.Targets = def.Targets
	}

	if p.Division == "" {
		p.Division = def.Division
	}

	if p.Epsilon == 0 {
		p.Epsilon = def.Epsilon
	}

	if p.CompileTimeoutSecs == 0 {
		p.CompileTimeoutSecs = def.CompileTimeoutSecs
	}

	if p.RunTimeoutSecs == 0 {
		p.RunTimeoutSecs = def.RunTimeoutSecs
	}
}

// validate checks the loaded policy values.
func (p *Policy) validate() error {
	if p.Division != DivisionTrunc && p.Division != DivisionFloor {
		return fmt.Errorf("division must be `%s` or `%s` not `%s`", DivisionTrunc, DivisionFloor, p.Division)
	}

	if p.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative")
	}

	if p.CompileTimeoutSecs <= 0 || p.RunTimeoutSecs <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	return nil
}

// CompileTimeout returns the per-target compile timeout as a duration.
func (p *Policy) CompileTimeout() time.Duration {
	return time.Duration(p.CompileTimeoutSecs * float64(time.Second))
}

// RunTimeout returns the per-case run timeout as a duration.
func (p *Policy) RunTimeout() time.Duration {
	return time.Duration(p.RunTimeoutSecs * float64(time.Second))
}

// Tool returns the external tool override for the given target, or fallback
// if there is none.
func (p *Policy) Tool(target, fallback string) string {
	if tool, ok := p.Tools[target]; ok && tool != "" {
		return tool
	}

	return fallback
}
