// Package repl implements the line-based command loop that drives a
// session: one command per line, parsed into a tagged value, dispatched
// through a single switch.
package repl

import (
	"strconv"
	"strings"
)

// CommandKind tags a parsed input line.
type CommandKind int

const (
	// CmdUnknown is any line that matches nothing below
	CmdUnknown CommandKind = iota
	// CmdSelect is an integer index into the visible entries
	CmdSelect
	// CmdHelp prints the command summary
	CmdHelp
	// CmdQuit ends the loop
	CmdQuit
	// CmdPrint re-renders without scanning
	CmdPrint
	// CmdRefresh force-rescans the current directory
	CmdRefresh
	// CmdUp navigates to the parent directory
	CmdUp
	// CmdSetBase makes the current directory the base
	CmdSetBase
	// CmdGoto navigates to an explicit path
	CmdGoto
	// CmdToggleDisplay flips relative/absolute rendering
	CmdToggleDisplay
	// CmdToggleSort flips name/size ordering
	CmdToggleSort
	// CmdToggleHuman flips raw/human-readable sizes
	CmdToggleHuman
	// CmdFilter sets or clears the visible-entry glob filter
	CmdFilter
)

// Command is one parsed input line.
type Command struct {
	Kind  CommandKind
	Index int    // CmdSelect
	Arg   string // CmdGoto, CmdFilter
}

// Parse turns a raw input line into a Command. Parsing never fails:
// unrecognized input is a first-class outcome, not an error.
func Parse(line string) Command {
	line = strings.TrimSpace(line)

	if n, err := strconv.Atoi(line); err == nil {
		return Command{Kind: CmdSelect, Index: n}
	}

	switch line {
	case "?":
		return Command{Kind: CmdHelp}
	case "q":
		return Command{Kind: CmdQuit}
	case "p":
		return Command{Kind: CmdPrint}
	case "P":
		return Command{Kind: CmdRefresh}
	case "u", "..":
		return Command{Kind: CmdUp}
	case "c":
		return Command{Kind: CmdSetBase}
	case "r":
		return Command{Kind: CmdToggleDisplay}
	case "s":
		return Command{Kind: CmdToggleSort}
	case "h":
		return Command{Kind: CmdToggleHuman}
	case "f":
		return Command{Kind: CmdFilter}
	}

	if arg, ok := strings.CutPrefix(line, "g "); ok {
		if arg = strings.TrimSpace(arg); arg != "" {
			return Command{Kind: CmdGoto, Arg: arg}
		}
	}
	if arg, ok := strings.CutPrefix(line, "f "); ok {
		return Command{Kind: CmdFilter, Arg: strings.TrimSpace(arg)}
	}

	return Command{Kind: CmdUnknown}
}
