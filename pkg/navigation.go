package display

import (
	"strconv"
	"strings"
)

type NavState int

const (
	Browsing NavState = iota
	Exited
)

func (s NavState) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Navigator tracks the current position within the events whose hit count
// exceeds the threshold.
type Navigator struct {
	Threshold int64
	selected  []int
	position  int
	state     NavState
}

// NewNavigator selects, in order, the events with more than threshold hits.
func NewNavigator(hitCounts []int64, threshold int64) *Navigator {
	n := &Navigator{Threshold: threshold}
	for i, count := range hitCounts {
		if count > threshold {
			n.selected = append(n.selected, i)
		}
	}
	return n
}

// Len is the number of events passing the filter.
func (n *Navigator) Len() int { return len(n.selected) }

func (n *Navigator) Position() int { return n.position }

func (n *Navigator) State() NavState { return n.state }

// Current performs the bound check and returns the index (into the full
// events table) of the event to display. An out-of-range position exits.
func (n *Navigator) Current() (int, bool) {
	if n.state == Exited {
		return 0, false
	}
	if n.position < 0 || n.position >= len(n.selected) {
		n.state = Exited
		return 0, false
	}
	return n.selected[n.position], true
}

func (n *Navigator) Advance() {
	if n.state == Exited {
		return
	}
	n.position++
	if n.position >= len(n.selected) {
		n.state = Exited
	}
}

// Jump moves to position p without validation; the next Current call exits
// if p is out of range.
func (n *Navigator) Jump(p int) {
	if n.state == Exited {
		return
	}
	n.position = p
}

func (n *Navigator) Quit() {
	n.state = Exited
}

type CommandKind int

const (
	CommandAdvance CommandKind = iota
	CommandJump
	CommandQuit
)

type Command struct {
	Kind     CommandKind
	Position int
}

// ParseCommand reads one navigation line: empty advances, a leading q or Q
// quits, anything else must be an integer position.
func ParseCommand(input string) (Command, error) {
	input = strings.TrimRight(input, "\r\n")
	if input == "" {
		return Command{Kind: CommandAdvance}, nil
	}
	if input[0] == 'q' || input[0] == 'Q' {
		return Command{Kind: CommandQuit}, nil
	}
	p, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return Command{}, &InvalidInputError{Input: input, Err: err}
	}
	return Command{Kind: CommandJump, Position: p}, nil
}

func (n *Navigator) Apply(cmd Command) {
	switch cmd.Kind {
	case CommandAdvance:
		n.Advance()
	case CommandJump:
		n.Jump(cmd.Position)
	case CommandQuit:
		n.Quit()
	}
}
