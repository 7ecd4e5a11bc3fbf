package requirements

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

// waitDelay is how long we give a timed-out process between SIGKILL and
// abandoning its pipes. Keeps a wedged child from turning a timeout into a hang.
const waitDelay = 5 * time.Second

// commandSpec describes one external command invocation. Commands are always
// an argument vector (never a shell string) with an explicit working
// directory and timeout.
type commandSpec struct {
	Argv    []string
	Dir     string
	Timeout time.Duration
	Env     map[string]string
	// Signature, when set, must appear as a literal substring of the raw
	// (untruncated) stdout or stderr for the command to pass.
	Signature string
}

// runCommand executes spec and folds every failure mode (spawn error,
// non-zero exit, timeout, missing signature) into a CheckResult. stdout and
// stderr are captured with a bounded buffer; signature matching runs against
// the full streams so truncation never causes a false negative.
func runCommand(ctx context.Context, spec commandSpec) models.CheckResult {
	timeoutCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	//nolint:gosec // requirement commands come from the evaluation bundle, not untrusted input
	cmd := exec.CommandContext(timeoutCtx, spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Stdin = nil
	cmd.WaitDelay = waitDelay

	if len(spec.Env) > 0 {
		env := os.Environ()
		for k, v := range spec.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	stdout := newCappedBuffer(models.DefaultMaxCaptureChars)
	stderr := newCappedBuffer(models.DefaultMaxCaptureChars)
	var stdoutW, stderrW io.Writer = stdout, stderr

	var stdoutSig, stderrSig *signatureScanner
	if spec.Signature != "" {
		stdoutSig = newSignatureScanner(spec.Signature)
		stderrSig = newSignatureScanner(spec.Signature)
		stdoutW = io.MultiWriter(stdout, stdoutSig)
		stderrW = io.MultiWriter(stderr, stderrSig)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	err := cmd.Run()

	res := models.Pass()
	res.Dir = spec.Dir
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if timeoutCtx.Err() == context.DeadlineExceeded {
		res = models.Failf("command timed out after %s: %s%s", spec.Timeout, displayCommand(spec.Argv), dirSuffix(spec.Dir))
		res.TimedOut = true
		res.Dir = spec.Dir
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()
		return res
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			rc := exitErr.ExitCode()
			res = models.Failf("command failed (rc = %d): %s%s", rc, displayCommand(spec.Argv), dirSuffix(spec.Dir))
			res.ExitCode = &rc
		} else {
			// Spawn error: command not found, permission denied, bad dir.
			res = models.Failf("failed to run command: %s%s: %v", displayCommand(spec.Argv), dirSuffix(spec.Dir), err)
		}
		res.Dir = spec.Dir
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()
		return res
	}

	rc := 0
	res.ExitCode = &rc

	if spec.Signature != "" && !stdoutSig.Found() && !stderrSig.Found() {
		res = models.Failf("signature not found: %q: %s%s", spec.Signature, displayCommand(spec.Argv), dirSuffix(spec.Dir))
		res.ExitCode = &rc
		res.Dir = spec.Dir
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()
		return res
	}

	return res
}

func displayCommand(argv []string) string {
	return strings.Join(argv, " ")
}

func dirSuffix(dir string) string {
	if dir == "" {
		return ""
	}
	return fmt.Sprintf(" [cwd = %s]", dir)
}

// cappedBuffer captures up to max bytes and discards the rest, remembering
// that it overflowed. Keeps runaway build output from ballooning reports.
type cappedBuffer struct {
	max       int
	buf       []byte
	truncated bool
}

func newCappedBuffer(max int) *cappedBuffer {
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - len(b.buf)
	if remaining <= 0 {
		b.truncated = b.truncated || len(p) > 0
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf = append(b.buf, p[:remaining]...)
		b.truncated = true
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return string(b.buf) + "..."
	}
	return string(b.buf)
}

// signatureScanner watches a stream for a literal substring, carrying a tail
// across writes so matches spanning chunk boundaries are still found.
type signatureScanner struct {
	needle string
	tail   string
	found  bool
}

func newSignatureScanner(needle string) *signatureScanner {
	return &signatureScanner{needle: needle}
}

func (s *signatureScanner) Write(p []byte) (int, error) {
	if s.found || s.needle == "" {
		return len(p), nil
	}
	hay := s.tail + string(p)
	if strings.Contains(hay, s.needle) {
		s.found = true
		s.tail = ""
		return len(p), nil
	}
	if keep := len(s.needle) - 1; keep > 0 && len(hay) > keep {
		s.tail = hay[len(hay)-keep:]
	} else {
		s.tail = hay
	}
	return len(p), nil
}

func (s *signatureScanner) Found() bool { return s.found }
