package render

import (
	"errors"
	"fmt"

	"pmp-reports/internal/slides"
)

var (
	ErrInvalidIndex = errors.New("slide index out of range")
	ErrClosed       = errors.New("presentation closed")
)

// Navigator presentation state: the current slide index within [0, N-1].
// Next and Previous clamp at the ends; nothing advances on its own.
type Navigator struct {
	deck   []slides.Slide
	index  int
	closed bool
}

// NewNavigator starts on the first slide (the cover)
func NewNavigator(deck []slides.Slide) *Navigator {
	return &Navigator{deck: deck}
}

func (n *Navigator) Len() int      { return len(n.deck) }
func (n *Navigator) Index() int    { return n.index }
func (n *Navigator) Closed() bool  { return n.closed }
func (n *Navigator) AtFirst() bool { return n.index == 0 }
func (n *Navigator) AtLast() bool  { return n.index >= len(n.deck)-1 }

// Current slide, nil for an empty deck
func (n *Navigator) Current() slides.Slide {
	if len(n.deck) == 0 {
		return nil
	}
	return n.deck[n.index]
}

// Next advances one slide; false when already on the last slide or closed
func (n *Navigator) Next() bool {
	if n.closed || n.AtLast() {
		return false
	}
	n.index++
	return true
}

// Previous goes back one slide; false when already on the first slide or closed
func (n *Navigator) Previous() bool {
	if n.closed || n.AtFirst() {
		return false
	}
	n.index--
	return true
}

// JumpTo moves to slide i; on error the index is unchanged
func (n *Navigator) JumpTo(i int) error {
	if n.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(n.deck) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidIndex, i, len(n.deck)-1)
	}
	n.index = i
	return nil
}

// Close ends the presentation
func (n *Navigator) Close() {
	n.closed = true
}

// Command navigation intent decoded from a key
type Command int

const (
	CmdNone Command = iota
	CmdNext
	CmdPrevious
	CmdFirst
	CmdLast
	CmdClose
)

var keyCommands = map[string]Command{
	"right":      CmdNext,
	"l":          CmdNext,
	"pgdown":     CmdNext,
	" ":          CmdNext,
	"space":      CmdNext,
	"left":       CmdPrevious,
	"h":          CmdPrevious,
	"pgup":       CmdPrevious,
	"home":       CmdFirst,
	"end":        CmdLast,
	"q":          CmdClose,
	"esc":        CmdClose,
	"ctrl+c":     CmdClose,
	"ArrowRight": CmdNext,
	"PageDown":   CmdNext,
	"ArrowLeft":  CmdPrevious,
	"PageUp":     CmdPrevious,
	"Home":       CmdFirst,
	"End":        CmdLast,
	"Escape":     CmdClose,
}

// KeyCommand maps terminal key names and DOM key values to a command
func KeyCommand(key string) Command {
	return keyCommands[key]
}

// Apply runs cmd; it reports whether the state changed
func (n *Navigator) Apply(cmd Command) bool {
	switch cmd {
	case CmdNext:
		return n.Next()
	case CmdPrevious:
		return n.Previous()
	case CmdFirst:
		before := n.index
		return n.JumpTo(0) == nil && before != n.index
	case CmdLast:
		before := n.index
		return n.JumpTo(len(n.deck)-1) == nil && before != n.index
	case CmdClose:
		if n.closed {
			return false
		}
		n.Close()
		return true
	}
	return false
}
