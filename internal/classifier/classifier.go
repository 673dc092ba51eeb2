// Package classifier runs the external emotion classifier as a child process
// under bounded concurrency and parses its result.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/semaphore"

	"github.com/JaimeStill/emotionwave/pkg/formatting"
)

// System classifies images stored on the local filesystem.
type System interface {
	// Classify runs the classifier on the image at path and returns its
	// validated result. Errors wrap ErrBusy, ErrTimeout, ErrExecutionFailed
	// (as *ExitError when the process exited non-zero), ErrOutputInvalid,
	// or the context error when ctx ends first.
	Classify(ctx context.Context, path string) (*Result, error)
	// ExposeDiagnostics reports whether classifier stderr may be returned to clients.
	ExposeDiagnostics() bool
}

type runner struct {
	command      string
	args         []string
	workDir      string
	timeout      time.Duration
	queueTimeout time.Duration
	waitDelay    time.Duration
	maxOutput    int64
	diagnostics  bool

	slots    *semaphore.Weighted
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a classifier system from a finalized config.
func New(cfg *Config, logger *slog.Logger) System {
	return &runner{
		command:      cfg.Command,
		args:         cfg.Args,
		workDir:      cfg.WorkDir,
		timeout:      cfg.TimeoutDuration(),
		queueTimeout: cfg.QueueTimeoutDuration(),
		waitDelay:    cfg.WaitDelayDuration(),
		maxOutput:    cfg.MaxOutputBytes(),
		diagnostics:  cfg.ExposeDiagnostics,
		slots:        semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger.With("system", "classifier"),
	}
}

func (r *runner) ExposeDiagnostics() bool {
	return r.diagnostics
}

func (r *runner) Classify(ctx context.Context, path string) (*Result, error) {
	if err := r.admit(ctx); err != nil {
		return nil, err
	}
	defer r.slots.Release(1)

	stdout, err := r.run(ctx, path)
	if err != nil {
		return nil, err
	}

	return r.parse(stdout)
}

func (r *runner) admit(ctx context.Context) error {
	admitCtx, cancel := context.WithTimeout(ctx, r.queueTimeout)
	defer cancel()

	if err := r.slots.Acquire(admitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Warn("classifier admission timed out", "queue_timeout", r.queueTimeout)
		return ErrBusy
	}
	return nil
}

func (r *runner) run(ctx context.Context, path string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string{}, r.args...), path)
	cmd := exec.CommandContext(runCtx, r.command, args...)
	cmd.Dir = r.workDir
	cmd.WaitDelay = r.waitDelay
	configureProcess(cmd)

	stdout := newCappedBuffer(r.maxOutput)
	stderr := newCappedBuffer(r.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	logger := r.logger.With("path", path, "duration", elapsed)
	if stdout.Truncated() || stderr.Truncated() {
		logger.Warn("classifier output truncated",
			"stdout_truncated", stdout.Truncated(),
			"stderr_truncated", stderr.Truncated(),
			"limit", r.maxOutput,
		)
	}

	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		logger.Warn("classifier left output pipes open after exit")
		err = nil
	}

	if err != nil {
		switch {
		case ctx.Err() != nil:
			logger.Info("classifier cancelled", "error", ctx.Err())
			return "", ctx.Err()
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			logger.Error("classifier timed out", "timeout", r.timeout, "stderr", stderr.String())
			return "", fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Error("classifier exited with error", "exit_code", exitErr.ExitCode(), "stderr", stderr.String())
			return "", &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}

		logger.Error("classifier failed to run", "error", err)
		return "", fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}

	if s := stderr.String(); s != "" {
		logger.Debug("classifier stderr", "stderr", s)
	}
	if stdout.Truncated() {
		logger.Error("classifier stdout exceeded limit", "limit", r.maxOutput)
		return "", fmt.Errorf("%w: stdout exceeded %d bytes", ErrOutputInvalid, r.maxOutput)
	}
	logger.Info("classifier completed")

	return stdout.String(), nil
}

func (r *runner) parse(stdout string) (*Result, error) {
	out, err := formatting.Parse[output](stdout)
	if err != nil {
		r.logger.Error("classifier output unparseable", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOutputInvalid, err)
	}

	if err := r.validate.Struct(out.trimmed()); err != nil {
		r.logger.Error("classifier output failed validation", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOutputInvalid, err)
	}

	return out.result(), nil
}
