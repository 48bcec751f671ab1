package harness

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"rrt/eval"
	"rrt/policy"
)

// Enumeration of per-cell verdict statuses.
type Status int

const (
	Pass Status = iota

	// The target toolchain failed or is missing.  Recorded for every case of
	// the target.
	CompileFailure

	// The compiled program exited nonzero or the oracle hit a runtime error.
	RuntimeFailure

	// The run exceeded the per-case timeout.
	Timeout

	// The output disagrees with the reference result.
	AssertionMismatch
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case CompileFailure:
		return "compile failure"
	case RuntimeFailure:
		return "runtime failure"
	case Timeout:
		return "timeout"
	default:
		return "mismatch"
	}
}

/* -------------------------------------------------------------------------- */

// Oracle produces the reference result for a test case.
type Oracle interface {
	Call(args []string) (eval.Value, error)
}

// Artifact names one generated source file to verify.  A target whose
// generation failed carries the failure reason instead of a path and fails
// every case.
type Artifact struct {
	Target string
	Path   string
	GenErr string
}

// CaseResult is the verdict for one (target, case) cell.
type CaseResult struct {
	Status Status

	// The observed output, where there was one.
	Got string

	// Failure detail for non-pass statuses.
	Detail string
}

// TargetResult holds one verdict per case for a single target.
type TargetResult struct {
	Target string
	Cases  []CaseResult
}

// Report is the full verification matrix.  Original holds the oracle's own
// results checked against each case's expected output.
type Report struct {
	Original []CaseResult
	Targets  []TargetResult
}

// AllPassed returns whether every cell of the report passed.
func (r *Report) AllPassed() bool {
	for _, cr := range r.Original {
		if cr.Status != Pass {
			return false
		}
	}

	for _, tr := range r.Targets {
		for _, cr := range tr.Cases {
			if cr.Status != Pass {
				return false
			}
		}
	}

	return true
}

/* -------------------------------------------------------------------------- */

// Harness compiles generated artifacts and checks their runtime behavior
// against the reference oracle.
type Harness struct {
	pol    *policy.Policy
	oracle Oracle

	// The directory compiled binaries and class files are placed in.
	binDir string
}

// New creates a harness placing compiled outputs in binDir.
func New(pol *policy.Policy, oracle Oracle, binDir string) *Harness {
	return &Harness{pol: pol, oracle: oracle, binDir: binDir}
}

// Verify runs the full (target, case) matrix.  Targets verify concurrently;
// one target's failure never blocks another.
func (h *Harness) Verify(artifacts []Artifact, cases []TestCase) *Report {
	// The oracle results double as the reference the targets compare against.
	refs := make([]eval.Value, len(cases))
	refErrs := make([]error, len(cases))

	report := &Report{Original: make([]CaseResult, len(cases))}
	for i, tc := range cases {
		refs[i], refErrs[i] = h.oracle.Call(tc.Args)
		report.Original[i] = h.checkOracle(refs[i], refErrs[i], tc.Want)
	}

	report.Targets = make([]TargetResult, len(artifacts))

	var wg sync.WaitGroup
	for i, artifact := range artifacts {
		wg.Add(1)

		go func(i int, artifact Artifact) {
			defer wg.Done()
			report.Targets[i] = h.verifyTarget(artifact, cases, refs, refErrs)
		}(i, artifact)
	}
	wg.Wait()

	return report
}

// checkOracle builds the `original` row cell for one case.
func (h *Harness) checkOracle(ref eval.Value, refErr error, want string) CaseResult {
	if refErr != nil {
		return CaseResult{Status: RuntimeFailure, Detail: refErr.Error()}
	}

	got := eval.Format(ref)
	if want == "" {
		return CaseResult{Status: Pass, Got: got}
	}

	if ok, detail := h.compare(want, ref); !ok {
		return CaseResult{Status: AssertionMismatch, Got: got, Detail: detail}
	}

	return CaseResult{Status: Pass, Got: got}
}

// verifyTarget compiles one artifact and runs every case against it.
func (h *Harness) verifyTarget(artifact Artifact, cases []TestCase, refs []eval.Value, refErrs []error) TargetResult {
	tr := TargetResult{Target: artifact.Target, Cases: make([]CaseResult, len(cases))}

	if artifact.GenErr != "" {
		for i := range tr.Cases {
			tr.Cases[i] = CaseResult{Status: CompileFailure,
				Detail: fmt.Sprintf("no artifact generated: %s", artifact.GenErr)}
		}
		return tr
	}

	runner, err := h.compile(artifact)
	if err != nil {
		for i := range tr.Cases {
			tr.Cases[i] = CaseResult{Status: CompileFailure, Detail: err.Error()}
		}
		return tr
	}

	for i, tc := range cases {
		// A case the oracle cannot run has no reference to compare against.
		if refErrs[i] != nil {
			tr.Cases[i] = CaseResult{Status: RuntimeFailure,
				Detail: fmt.Sprintf("no reference result: %s", refErrs[i].Error())}
			continue
		}

		tr.Cases[i] = h.runCase(runner, tc, refs[i])
	}

	return tr
}

// runCase executes one compiled case and compares its output to the
// reference value.
func (h *Harness) runCase(runner *runner, tc TestCase, ref eval.Value) CaseResult {
	out, status, detail := runner.run(tc.Args, h.pol.RunTimeout())
	if status != Pass {
		return CaseResult{Status: status, Got: out, Detail: detail}
	}

	if ok, d := h.compare(out, ref); !ok {
		return CaseResult{Status: AssertionMismatch, Got: out, Detail: d}
	}

	return CaseResult{Status: Pass, Got: out}
}

/* -------------------------------------------------------------------------- */

// compare checks an observed output line against the reference value.  Int,
// bool, and str results compare exactly; float results compare within the
// configured relative epsilon.
func (h *Harness) compare(got string, ref eval.Value) (bool, string) {
	switch want := ref.(type) {
	case int64:
		gotInt, err := strconv.ParseInt(got, 10, 64)
		if err != nil {
			return false, fmt.Sprintf("expected the integer %d, got `%s`", want, got)
		}
		if gotInt != want {
			return false, fmt.Sprintf("expected %d, got %d", want, gotInt)
		}
		return true, ""
	case float64:
		gotFloat, err := strconv.ParseFloat(got, 64)
		if err != nil {
			return false, fmt.Sprintf("expected the float %v, got `%s`", want, got)
		}
		if !floatsAgree(gotFloat, want, h.pol.Epsilon) {
			return false, fmt.Sprintf("expected %v within relative %g, got %v", want, h.pol.Epsilon, gotFloat)
		}
		return true, ""
	default:
		wantText := eval.Format(ref)
		if got != wantText {
			return false, fmt.Sprintf("expected `%s`, got `%s`", wantText, got)
		}
		return true, ""
	}
}

// floatsAgree compares two floats within a relative epsilon.  NaNs agree with
// each other, as do equal infinities.
func floatsAgree(a, b, eps float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}

	scale := math.Max(1, math.Abs(b))
	return math.Abs(a-b) <= eps*scale
}
