package policy

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writePolicy writes a policy file into a temp directory and returns its path.
func writePolicy(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), PolicyFileName)
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), PolicyFileName))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	def := Default()
	if p.Division != def.Division || p.Epsilon != def.Epsilon {
		t.Errorf("policy = %+v, want defaults", p)
	}
	if len(p.Targets) != 2 || p.Targets[0] != "c99" || p.Targets[1] != "java" {
		t.Errorf("targets = %v, want [c99 java]", p.Targets)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writePolicy(t, `
targets = ["llvm"]
division = "floor"
epsilon = 1e-6
run-timeout = 2.5

[tools]
llvm = "clang-15"
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(p.Targets) != 1 || p.Targets[0] != "llvm" {
		t.Errorf("targets = %v, want [llvm]", p.Targets)
	}
	if p.Division != DivisionFloor {
		t.Errorf("division = %q, want floor", p.Division)
	}
	if p.Epsilon != 1e-6 {
		t.Errorf("epsilon = %g, want 1e-6", p.Epsilon)
	}
	if p.RunTimeout() != 2500*time.Millisecond {
		t.Errorf("run timeout = %s, want 2.5s", p.RunTimeout())
	}

	// Unset fields keep their defaults.
	if p.CompileTimeoutSecs != Default().CompileTimeoutSecs {
		t.Errorf("compile timeout = %g, want the default", p.CompileTimeoutSecs)
	}

	if tool := p.Tool("llvm", "clang"); tool != "clang-15" {
		t.Errorf("llvm tool = %q, want clang-15", tool)
	}
	if tool := p.Tool("c99", "cc"); tool != "cc" {
		t.Errorf("c99 tool = %q, want the fallback", tool)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad division", `division = "euclid"`, "division must be"},
		{"negative epsilon", `epsilon = -1.0`, "epsilon must not be negative"},
		{"negative timeout", `run-timeout = -1.0`, "timeouts must be positive"},
		{"malformed toml", `division = `, "error parsing policy file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writePolicy(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
