package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/edubrasil/internal/player"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg         = Msg{}
	_ player.Notifier = (*Notices)(nil)
)

const (
	MsgTick MsgKind = iota
	MsgDispatched
	MsgNotice
)

type dispatched struct {
	action player.Action
	err    error
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}

// dispatchedMsg is the constructor for [MsgDispatched]
func dispatchedMsg(action player.Action, err error) Msg {
	return Msg{kind: MsgDispatched, data: dispatched{action, err}}
}

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(err error) Msg {
	return Msg{kind: MsgNotice, data: err}
}

// Notices is a player.Notifier that queues notifications for the TUI.
//
// Notifications beyond the buffer are dropped rather than blocking the widget.
type Notices struct {
	ch chan error
}

func NewNotices(size int) *Notices {
	return &Notices{ch: make(chan error, size)}
}

func (n *Notices) Notify(err error) {
	select {
	case n.ch <- err:
	default:
	}
}

// wait blocks until the next notification.
func (n *Notices) wait() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-n.ch)
	}
}
