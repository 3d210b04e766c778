package manager

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

var ErrNoClipboard = errors.New("no clipboard available")

// SystemClipboard writes to the native clipboard and falls back to an OSC 52
// escape sequence on the terminal (ssh sessions, headless hosts).
type SystemClipboard struct {
	terminal io.Writer
	native   func(string) error
	env      func(string) string
}

// NewSystemClipboard terminal receives the OSC 52 fallback; nil disables it
func NewSystemClipboard(terminal io.Writer) *SystemClipboard {
	c := &SystemClipboard{terminal: terminal, env: os.Getenv}
	if !clipboard.Unsupported {
		c.native = clipboard.WriteAll
	}
	return c
}

func (c *SystemClipboard) WriteText(text string) error {
	var nativeErr error
	if c.native != nil {
		if nativeErr = c.native(text); nativeErr == nil {
			return nil
		}
	}
	if c.terminal == nil {
		if nativeErr != nil {
			return nativeErr
		}
		return ErrNoClipboard
	}

	seq := osc52.New(text)
	switch {
	case c.env("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(c.env("TERM"), "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(c.terminal)
	return err
}
