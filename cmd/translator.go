package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"

	"rrt/codegen"
	"rrt/eval"
	"rrt/harness"
	"rrt/lower"
	"rrt/mir"
	"rrt/policy"
	"rrt/report"
	"rrt/syntax"
	"rrt/walk"
)

// Translator drives the pipeline for a single source function: parse, check,
// lower, generate, and optionally verify.  It owns all file I/O of the
// pipeline.
type Translator struct {
	srcPath  string
	funcName string
	outDir   string

	pol *policy.Policy

	fn        *mir.FuncDef
	artifacts []harness.Artifact
}

// NewTranslator creates a translator for the named function of the source
// file at srcPath.  An empty funcName selects the first function in the file.
// The policy is loaded from `rrt.toml` in the working directory if present.
func NewTranslator(srcPath, funcName, outDir string) *Translator {
	pol, err := policy.Load(policy.PolicyFileName)
	if err != nil {
		report.ReportFatal(err.Error())
	}

	return &Translator{srcPath: srcPath, funcName: funcName, outDir: outDir, pol: pol}
}

// Translate runs the pipeline through generation, writing one artifact per
// configured target.  It returns whether translation succeeded.
func (t *Translator) Translate() bool {
	report.ReportBeginPhase("Parsing")

	src, err := ioutil.ReadFile(t.srcPath)
	if err != nil {
		report.ReportEndPhase(false)
		report.ReportFatal("unable to read source file at `%s`: %s", t.srcPath, err.Error())
	}

	def, err := syntax.ParseFunction(string(src), t.funcName)
	if err != nil {
		report.ReportEndPhase(false)
		report.ReportError(t.srcPath, err)
		return false
	}

	report.ReportEndPhase(true)
	report.ReportBeginPhase("Checking")

	if err := walk.WalkFunction(def); err != nil {
		report.ReportEndPhase(false)
		report.ReportError(t.srcPath, err)
		return false
	}

	report.ReportEndPhase(true)
	report.ReportBeginPhase("Generating")

	t.fn = lower.Lower(def)

	if err := os.MkdirAll(t.outDir, 0755); err != nil {
		report.ReportEndPhase(false)
		report.ReportFatal("unable to create output directory `%s`: %s", t.outDir, err.Error())
	}

	for _, target := range t.pol.Targets {
		gen, err := codegen.New(target, t.pol)
		if err != nil {
			report.ReportEndPhase(false)
			report.ReportError(t.srcPath, err)
			return false
		}

		out, err := gen.Generate(t.fn)
		if err != nil {
			// A target that cannot represent the function's types still gets
			// a row in the verification matrix so the verdict reflects it.
			report.ReportWarning("no `%s` artifact: %s", target, err.Error())
			t.artifacts = append(t.artifacts, harness.Artifact{Target: target, GenErr: err.Error()})
			continue
		}

		path := filepath.Join(t.outDir, gen.FileName(t.fn))
		if err := ioutil.WriteFile(path, []byte(out), 0644); err != nil {
			report.ReportEndPhase(false)
			report.ReportFatal("unable to write artifact at `%s`: %s", path, err.Error())
		}

		t.artifacts = append(t.artifacts, harness.Artifact{Target: target, Path: path})
		report.ReportInfo(target, path)
	}

	report.ReportEndPhase(true)
	return true
}

// Verify compiles and runs every generated artifact against the test suite
// at suitePath and renders the verdict table.  It returns whether every cell
// of the matrix passed.
func (t *Translator) Verify(suitePath string) bool {
	cases, err := harness.LoadSuite(suitePath)
	if err != nil {
		report.ReportFatal(err.Error())
	}

	report.ReportBeginPhase("Verifying")

	h := harness.New(t.pol, eval.NewEvaluator(t.fn, t.pol), t.outDir)
	rep := h.Verify(t.artifacts, cases)

	report.ReportEndPhase(rep.AllPassed())

	displayVerdictTable(rep, len(cases))
	return rep.AllPassed()
}

/* -------------------------------------------------------------------------- */

// displayVerdictTable renders the (target, case) verdict matrix with the
// oracle as the `original` row, then enumerates the failing cells.
func displayVerdictTable(rep *harness.Report, caseCount int) {
	header := []string{"target"}
	for i := 0; i < caseCount; i++ {
		header = append(header, fmt.Sprintf("case %d", i+1))
	}

	allRows := append(
		[]harness.TargetResult{{Target: "original", Cases: rep.Original}},
		rep.Targets...,
	)

	data := pterm.TableData{header}
	for _, tr := range allRows {
		row := []string{tr.Target}
		for _, cr := range tr.Cases {
			row = append(row, verdictCell(cr))
		}

		data = append(data, row)
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	for _, tr := range allRows {
		for i, cr := range tr.Cases {
			if cr.Status != harness.Pass {
				report.ReportWarning("%s, case %d: %s: %s", tr.Target, i+1, cr.Status, cr.Detail)
			}
		}
	}
}

// verdictCell renders one cell of the verdict table.
func verdictCell(cr harness.CaseResult) string {
	if cr.Status == harness.Pass {
		return report.SuccessColorFG.Sprint("pass")
	}

	return report.ErrorColorFG.Sprint(cr.Status.String())
}
