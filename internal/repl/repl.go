package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "idu/internal/errors"
	"idu/internal/log"
	"idu/internal/session"
)

const helpText = `
integer - traverse into that directory
? - show this help message
p - print current state
P - refresh
u or .. - go up to parent directory
c - make current directory the base
g <path> - go to a path, relative to the base directory or absolute
r - relative or absolute paths
s - sort by name or by size
f <glob> - only show entries matching the pattern, plain f clears it
h - raw or human-readable sizes
q - quit
`

// Invalidator tracks visited directories and reports the ones whose
// contents changed on disk so their cached scans can be marked stale.
type Invalidator interface {
	Add(dir string) error
	Invalidated() <-chan string
}

// REPL drives a session from line input: read a line, dispatch it, render.
// It holds the only reference to the session for its lifetime, so all cache
// mutation happens on this loop's goroutine.
type REPL struct {
	session *session.Session
	in      io.Reader
	out     io.Writer
	lines   chan string
	signals chan os.Signal
	watcher Invalidator
}

// New builds a REPL reading commands from in and rendering to out.
func New(s *session.Session, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		session: s,
		in:      in,
		out:     out,
		lines:   make(chan string),
		signals: make(chan os.Signal, 1),
	}
}

// Signals returns the channel to wire interrupt delivery to. An interrupt
// during a scan cancels that scan; an interrupt at the prompt quits.
func (r *REPL) Signals() chan<- os.Signal {
	return r.signals
}

// SetWatcher attaches an optional cache invalidator. Visited directories
// are registered with it and its reports are drained once per prompt cycle,
// keeping the cache single-threaded.
func (r *REPL) SetWatcher(w Invalidator) {
	r.watcher = w
}

// Run performs the initial scan and enters the prompt loop. The initial
// scan failing is fatal; every later failure warns and keeps prior state.
// Returns nil on quit, interrupt at the prompt, or end of input.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.session.Update(ctx, "", false); err != nil {
		return err
	}
	r.watchCurrent()
	r.print()

	go r.readLines()
	for {
		r.drainInvalidations()
		fmt.Fprint(r.out, "> ")
		select {
		case <-ctx.Done():
			return nil
		case <-r.signals:
			fmt.Fprintln(r.out)
			return nil
		case line, ok := <-r.lines:
			if !ok {
				return nil
			}
			if quit := r.dispatch(ctx, line); quit {
				return nil
			}
		}
	}
}

func (r *REPL) readLines() {
	sc := bufio.NewScanner(r.in)
	for sc.Scan() {
		r.lines <- sc.Text()
	}
	close(r.lines)
}

// dispatch runs one parsed command and reports whether the loop should end.
func (r *REPL) dispatch(ctx context.Context, line string) bool {
	cmd := Parse(line)
	switch cmd.Kind {
	case CmdSelect:
		entry, ok := r.session.EntryAt(cmd.Index)
		if !ok {
			fmt.Fprintln(r.out, "?")
			return false
		}
		r.navigate(ctx, entry.Path, false)
	case CmdHelp:
		fmt.Fprint(r.out, helpText)
	case CmdQuit:
		return true
	case CmdPrint:
		r.print()
	case CmdRefresh:
		r.navigate(ctx, r.session.CurrentDir(), true)
	case CmdUp:
		r.navigate(ctx, filepath.Dir(r.session.CurrentDir()), false)
	case CmdSetBase:
		if err := r.session.SetBase(r.session.CurrentDir()); err != nil {
			log.Warnf("%v", err)
		}
		r.print()
	case CmdGoto:
		path := cmd.Arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.session.BaseDir(), path)
		}
		r.navigate(ctx, path, false)
	case CmdToggleDisplay:
		r.session.ToggleDisplay()
		r.print()
	case CmdToggleSort:
		r.session.ToggleSort()
		r.print()
	case CmdToggleHuman:
		r.session.ToggleHumanSizes()
		r.print()
	case CmdFilter:
		if cmd.Arg == "" {
			r.session.ClearFilter()
		} else if err := r.session.SetFilter(cmd.Arg); err != nil {
			log.Warnf("%v", err)
		}
		r.print()
	default:
		fmt.Fprintln(r.out, "?")
	}
	return false
}

// navigate updates the session and renders. A scan failure warns and leaves
// the prior state on screen; an interrupted scan is silently abandoned, the
// interrupt meaning "cancel this navigation", not "quit".
func (r *REPL) navigate(ctx context.Context, dir string, refresh bool) {
	scanCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		select {
		case <-r.signals:
			cancel()
		case <-done:
		}
	}()
	err := r.session.Update(scanCtx, dir, refresh)
	close(done)
	cancel()

	switch {
	case err == nil:
		r.watchCurrent()
	case apperrors.IsCancelled(err):
		// state untouched, nothing to report
	default:
		log.Warnf("%v", err)
	}
	r.print()
}

func (r *REPL) print() {
	fmt.Fprintln(r.out, r.session.Render())
}

func (r *REPL) watchCurrent() {
	if r.watcher == nil {
		return
	}
	if err := r.watcher.Add(r.session.CurrentDir()); err != nil {
		log.Debugf("cannot watch %s: %v", r.session.CurrentDir(), err)
	}
}

func (r *REPL) drainInvalidations() {
	if r.watcher == nil {
		return
	}
	for {
		select {
		case path := <-r.watcher.Invalidated():
			log.Debugf("cached scans touching %s marked stale", path)
			r.session.MarkStale(path)
		default:
			return
		}
	}
}
