package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
)

var (
	lcdStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FAF5F")).
			Foreground(lipgloss.Color("#D7FFAF")).
			Background(lipgloss.Color("#1C3A1C")).
			Width(Cols)

	noticeStyle = lcdStyle.
			BorderForeground(lipgloss.Color("#D75F5F"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))
)

// Terminal draws the character display as a box on a terminal, redrawing
// only when the content changes.
type Terminal struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

var _ ports.Display = (*Terminal)(nil)

// NewTerminal creates a display writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Render implements ports.Display.
func (t *Terminal) Render(s domain.Snapshot) error {
	frame := RenderBox(s)

	t.mu.Lock()
	defer t.mu.Unlock()
	if frame == t.last {
		return nil
	}
	t.last = frame
	// Home the cursor and clear before redrawing.
	_, err := fmt.Fprint(t.out, "\033[H\033[2J"+frame+"\n")
	return err
}

// RenderBox returns the boxed screen followed by a status line.
func RenderBox(s domain.Snapshot) string {
	sc := Compose(s)
	style := lcdStyle
	if len(s.Notice) > 0 {
		style = noticeStyle
	}
	box := style.Render(strings.Join(sc[:], "\n"))

	status := s.Mode.String()
	if s.Mode.Kind == domain.ModePacketCapture {
		status += fmt.Sprintf("  frames=%d", s.Counters.Total)
	}
	if rec, ok := s.SelectedRecord(); ok {
		status += "  target=" + rec.SSID
	}
	return lipgloss.JoinVertical(lipgloss.Left, box, statusStyle.Render(status))
}
