package reader

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// longest animation step, slower frames make animation slower instead of
// jumping
const maxFrameStep = 0.1

type frameMsg time.Time

type model struct {
	r             *Reader
	last          time.Time
	width, height int
	err           error
}

func newModel(r *Reader) model {
	return model{r: r}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.r.frameInterval(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return m.tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.r.Resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		if _, err := m.r.HandleKey(keyName(msg)); err != nil {
			m.err = err
			return m, tea.Quit
		}

	case frameMsg:
		t := time.Time(msg)
		dt := m.r.frameInterval().Seconds()
		if !m.last.IsZero() {
			dt = min(t.Sub(m.last).Seconds(), maxFrameStep)
		}
		m.last = t
		if err := m.r.Frame(dt); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

func (m model) View() string {
	return m.r.Render(m.width, m.height)
}

// keyName translates terminal key to the name book view understands.
func keyName(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRight:
		return "ArrowRight"
	case tea.KeyLeft:
		return "ArrowLeft"
	case tea.KeyEnter:
		return "Enter"
	case tea.KeySpace:
		return " "
	case tea.KeyRunes:
		return string(msg.Runes)
	}
	return msg.String()
}
