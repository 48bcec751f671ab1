package harness

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// runner invokes the compiled form of one target: either a native binary or
// a command with fixed leading arguments such as `java -cp <dir> <class>`.
type runner struct {
	name     string
	baseArgs []string
}

// compile builds the artifact with the target's toolchain and returns a
// runner for it.  Tool names come from the policy's overrides.
func (h *Harness) compile(artifact Artifact) (*runner, error) {
	base := filepath.Base(artifact.Path)

	switch artifact.Target {
	case "c99":
		bin := filepath.Join(h.binDir, strings.TrimSuffix(base, ".c")+"_c99")
		cc := h.pol.Tool("c99", "cc")
		if err := h.runCompile(cc, "-std=c99", "-O1", "-o", bin, artifact.Path, "-lm"); err != nil {
			return nil, err
		}

		return &runner{name: bin}, nil
	case "java":
		javac := h.pol.Tool("java", "javac")
		if err := h.runCompile(javac, "-d", h.binDir, artifact.Path); err != nil {
			return nil, err
		}

		class := strings.TrimSuffix(base, ".java")
		return &runner{
			name:     h.pol.Tool("java-run", "java"),
			baseArgs: []string{"-cp", h.binDir, class},
		}, nil
	case "llvm":
		bin := filepath.Join(h.binDir, strings.TrimSuffix(base, ".ll")+"_llvm")
		clang := h.pol.Tool("llvm", "clang")
		if err := h.runCompile(clang, "-O1", "-o", bin, artifact.Path, "-lm"); err != nil {
			return nil, err
		}

		return &runner{name: bin}, nil
	default:
		return nil, fmt.Errorf("no toolchain known for target `%s`", artifact.Target)
	}
}

// runCompile invokes one toolchain command under the compile timeout.
func (h *Harness) runCompile(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.pol.CompileTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("`%s` timed out after %s", name, h.pol.CompileTimeout())
		}

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}

		return fmt.Errorf("`%s` failed: %s", name, firstLine(msg))
	}

	return nil
}

// run executes one case under the run timeout and returns the trimmed
// standard output.
func (r *runner) run(args []string, timeout time.Duration) (string, Status, string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fullArgs := make([]string, 0, len(r.baseArgs)+len(args))
	fullArgs = append(fullArgs, r.baseArgs...)
	fullArgs = append(fullArgs, args...)

	cmd := exec.CommandContext(ctx, r.name, fullArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", Timeout, fmt.Sprintf("no result after %s", timeout)
		}

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}

		return "", RuntimeFailure, firstLine(msg)
	}

	return strings.TrimSpace(stdout.String()), Pass, ""
}

// firstLine truncates multi-line tool output to its first line.
func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}

	return text
}
