package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// App is a Controller that also reports the end of a session.
type App interface {
	Controller
	OnSessionEnd(f func())
}

// Notifier forwards application notifications to a running board. Sends are
// asynchronous so they are safe from inside the event loop.
// Messages sent while no board is running are dropped.
type Notifier struct {
	mu      sync.Mutex
	program *tea.Program
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Info(msg string) {
	n.send(statusMsg{text: msg})
}

func (n *Notifier) Error(msg string) {
	n.send(statusMsg{text: msg, isErr: true})
}

func (n *Notifier) attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = p
}

func (n *Notifier) send(msg tea.Msg) {
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

// Run shows the board until the user quits.
func Run(a App, n *Notifier, themes ThemeStore, opts Options) error {
	p := tea.NewProgram(New(a, themes, opts), tea.WithAltScreen())
	n.attach(p)
	defer n.attach(nil)

	a.Board().OnChange(func() { n.send(boardChangedMsg{}) })
	a.OnSessionEnd(func() { n.send(sessionEndedMsg{}) })

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}
