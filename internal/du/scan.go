package du

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	apperrors "idu/internal/errors"
	"idu/internal/log"
)

// ScanFunc is the scan collaborator contract: given a directory, return one
// entry for the directory itself plus at least one per immediate
// subdirectory. Implementations may report deeper entries; callers filter
// with ResultSet.ChildrenOf.
type ScanFunc func(ctx context.Context, dir string) ([]Entry, error)

// Runner invokes the system disk-usage utility as a child process.
type Runner struct {
	command string
}

// NewRunner builds a Runner around the given du binary (usually "du").
func NewRunner(command string) *Runner {
	return &Runner{command: command}
}

// Scan runs `du -d1 <dir>` and parses its output. Anything written to
// stderr is treated as failure, matching du's habit of exiting zero after
// printing permission errors. Cancelling the context kills the child and
// yields a cancellation error.
func (r *Runner) Scan(ctx context.Context, dir string) ([]Entry, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command, "-d1", dir)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("running %s -d1 %s", r.command, dir)
	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, apperrors.Cancel(ctx.Err())
	}
	if stderr.Len() > 0 {
		return nil, apperrors.NewScanError("du failed", dir, apperrors.New(strings.TrimSpace(stderr.String())))
	}
	if err != nil {
		return nil, apperrors.NewScanError("du failed", dir, err)
	}

	entries, err := parseOutput(stdout.Bytes())
	if err != nil {
		return nil, apperrors.NewScanError("unreadable du output", dir, err)
	}
	return entries, nil
}

// parseOutput splits du output into entries. Each line is
// "<size>\t<path>"; sizes are whatever unit the du binary reports (1024-byte
// blocks for a stock GNU du).
func parseOutput(out []byte) ([]Entry, error) {
	var entries []Entry
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		size, path, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("malformed line %q", line)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed size in line %q: %w", line, err)
		}
		entry, err := NewEntry(path, n)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
