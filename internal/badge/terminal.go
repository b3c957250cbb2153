package badge

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pterm/pterm"
)

// Colors follow the glyph: green for a count, amber while waiting, red for unknown.
var (
	countStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#1FA382"))
	waitingStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#F59E0B"))
	unknownStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#EF4444"))
)

// Terminal paints the badge as a line of terminal output.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	onClick func()
	now     func() time.Time
}

// NewTerminal returns a surface writing to w, labelled with label.
func NewTerminal(w io.Writer, label string) *Terminal {
	return &Terminal{w: w, label: label, now: time.Now}
}

func (t *Terminal) SetText(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	pterm.Fprintln(t.w, pterm.Sprintf("%s %s %s",
		pterm.Gray(t.now().Format("15:04:05")),
		pterm.Bold.Sprint(t.label),
		style(text).Render(text),
	))
	return nil
}

func (t *Terminal) OnClick(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClick = fn
}

// Listen treats every line read from r as a click until ctx is done or r
// is exhausted.
func (t *Terminal) Listen(ctx context.Context, r io.Reader) {
	lines := make(chan struct{})
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-lines:
			if !ok {
				return
			}
			t.mu.Lock()
			fn := t.onClick
			t.mu.Unlock()
			if fn != nil {
				fn()
			}
		}
	}
}

func style(text string) lipgloss.Style {
	switch text {
	case Unknown:
		return unknownStyle
	case InFlight, Retrying:
		return waitingStyle
	default:
		return countStyle
	}
}
