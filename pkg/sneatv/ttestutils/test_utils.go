package ttestutils

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TB is the part of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

var NewSimulationScreen = tcell.NewSimulationScreen

// ReadLine reads a full line from the screen, empty cells read as spaces.
func ReadLine(screen tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		str, _, _ := screen.Get(x, y)
		if str == "" || str == "\x00" {
			b.WriteRune(' ')
			continue
		}
		b.WriteString(str)
	}
	return b.String()
}

// ReadScreen returns every line of the screen with trailing spaces trimmed.
func ReadScreen(screen tcell.Screen) []string {
	width, height := screen.Size()
	lines := make([]string, height)
	for y := range lines {
		lines[y] = strings.TrimRight(ReadLine(screen, y, width), " ")
	}
	return lines
}

// NewSimScreen creates a new simulation screen for testing
func NewSimScreen(t TB, charset string, width, height int) tcell.SimulationScreen {
	t.Helper()
	s := NewSimulationScreen(charset)
	if err := s.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	s.SetSize(width, height)
	return s
}

// Draw lays p out over a width x height simulation screen, draws it and
// returns the screen lines.
func Draw(t TB, p tview.Primitive, width, height int) []string {
	t.Helper()
	s := NewSimScreen(t, "UTF-8", width, height)
	defer s.Fini()
	p.SetRect(0, 0, width, height)
	p.Draw(s)
	return ReadScreen(s)
}
