package harness

import (
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"
	"testing"

	"rrt/eval"
	"rrt/policy"
)

func TestFloatsAgree(t *testing.T) {
	inf := math.Inf(1)
	nan := math.NaN()

	tests := []struct {
		a, b float64
		want bool
	}{
		{1.0, 1.0, true},
		{1.0, 1.0 + 1e-12, true},
		{1.0, 1.001, false},
		// The epsilon is relative for large magnitudes.
		{1e15, 1e15 + 1, true},
		// ... but absolute near zero.
		{0, 1e-12, true},
		{0, 1e-3, false},
		{nan, nan, true},
		{nan, 1.0, false},
		{inf, inf, true},
		{inf, -inf, false},
		{inf, 1.0, false},
	}

	for _, tt := range tests {
		if got := floatsAgree(tt.a, tt.b, 1e-9); got != tt.want {
			t.Errorf("floatsAgree(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	h := New(policy.Default(), nil, "")

	tests := []struct {
		got  string
		ref  eval.Value
		want bool
	}{
		{"42", int64(42), true},
		{"41", int64(42), false},
		{"x", int64(42), false},
		{"2.5", float64(2.5), true},
		{"2.5000000001", float64(2.5), true},
		{"2.6", float64(2.5), false},
		{"true", true, true},
		{"false", true, false},
		{"hi bob", "hi bob", true},
		{"hi", "hi bob", false},
	}

	for _, tt := range tests {
		if ok, _ := h.compare(tt.got, tt.ref); ok != tt.want {
			t.Errorf("compare(%q, %v) = %v, want %v", tt.got, tt.ref, ok, tt.want)
		}
	}
}

/* -------------------------------------------------------------------------- */

// stubOracle maps joined argument strings to canned results.
type stubOracle struct {
	results map[string]eval.Value
	errs    map[string]error
}

func (o *stubOracle) Call(args []string) (eval.Value, error) {
	key := fmt.Sprint(args)
	if err, ok := o.errs[key]; ok {
		return nil, err
	}

	return o.results[key], nil
}

func TestVerifyOracleRow(t *testing.T) {
	oracle := &stubOracle{
		results: map[string]eval.Value{
			fmt.Sprint([]string{"1"}): int64(2),
			fmt.Sprint([]string{"2"}): int64(4),
		},
		errs: map[string]error{
			fmt.Sprint([]string{"0"}): fmt.Errorf("integer division by zero"),
		},
	}

	h := New(policy.Default(), oracle, t.TempDir())
	report := h.Verify(nil, []TestCase{
		{Args: []string{"1"}, Want: "2"},
		{Args: []string{"2"}, Want: "5"},
		{Args: []string{"0"}},
	})

	if len(report.Original) != 3 {
		t.Fatalf("original row length = %d, want 3", len(report.Original))
	}

	if report.Original[0].Status != Pass {
		t.Errorf("case 0 status = %s, want pass", report.Original[0].Status)
	}
	if report.Original[1].Status != AssertionMismatch {
		t.Errorf("case 1 status = %s, want mismatch", report.Original[1].Status)
	}
	if report.Original[2].Status != RuntimeFailure {
		t.Errorf("case 2 status = %s, want runtime failure", report.Original[2].Status)
	}

	if report.AllPassed() {
		t.Error("report with failures claims all passed")
	}
}

func TestVerifyCompileFailureMarksEveryCase(t *testing.T) {
	oracle := &stubOracle{results: map[string]eval.Value{
		fmt.Sprint([]string{"1"}): int64(1),
		fmt.Sprint([]string{"2"}): int64(2),
	}}

	pol := policy.Default()
	pol.Tools = map[string]string{"c99": "rrt-no-such-compiler"}

	h := New(pol, oracle, t.TempDir())

	src := filepath.Join(t.TempDir(), "id.c")
	if err := ioutil.WriteFile(src, []byte("int main(void) { return 0; }\n"), 0644); err != nil {
		t.Fatal(err)
	}

	report := h.Verify(
		[]Artifact{{Target: "c99", Path: src}},
		[]TestCase{{Args: []string{"1"}}, {Args: []string{"2"}}},
	)

	if len(report.Targets) != 1 {
		t.Fatalf("target count = %d, want 1", len(report.Targets))
	}

	for i, cr := range report.Targets[0].Cases {
		if cr.Status != CompileFailure {
			t.Errorf("case %d status = %s, want compile failure", i, cr.Status)
		}
	}
}

func TestVerifyGenerationFailureKeepsTargetRow(t *testing.T) {
	oracle := &stubOracle{results: map[string]eval.Value{
		fmt.Sprint([]string{"1"}): int64(1),
	}}

	h := New(policy.Default(), oracle, t.TempDir())
	report := h.Verify(
		[]Artifact{{Target: "c99", GenErr: "the c99 target does not support str values"}},
		[]TestCase{{Args: []string{"1"}}},
	)

	if len(report.Targets) != 1 {
		t.Fatalf("target count = %d, want 1", len(report.Targets))
	}
	if cr := report.Targets[0].Cases[0]; cr.Status != CompileFailure {
		t.Errorf("status = %s, want compile failure", cr.Status)
	}
	if report.AllPassed() {
		t.Error("report with a failed target claims all passed")
	}
}

/* -------------------------------------------------------------------------- */

func TestLoadSuite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.toml")
	content := `
[[case]]
args = ["54", "24"]
want = "6"

[[case]]
args = ["17", "5"]
`

	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cases, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(cases) != 2 {
		t.Fatalf("case count = %d, want 2", len(cases))
	}
	if cases[0].Want != "6" || len(cases[0].Args) != 2 {
		t.Errorf("case 0 = %+v", cases[0])
	}
	if cases[1].Want != "" {
		t.Errorf("case 1 want = %q, want empty", cases[1].Want)
	}
}

func TestLoadSuiteErrors(t *testing.T) {
	if _, err := LoadSuite(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing suite file")
	}

	empty := filepath.Join(t.TempDir(), "empty.toml")
	if err := ioutil.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSuite(empty); err == nil {
		t.Error("expected an error for a suite with no cases")
	}
}
