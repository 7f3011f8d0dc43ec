package player

import (
	"github.com/desertthunder/edubrasil/internal/models"
	"github.com/desertthunder/edubrasil/internal/shared"
)

// AccessState tracks the admin gate.
//
// Correct starts true and only a wrong submission flips it to false. PanelVisible only becomes true on a
// correct submission.
type AccessState struct {
	Correct      bool   `json:"correct"`
	PanelVisible bool   `json:"panel_visible"`
	Entry        string `json:"-"`
}

// State is everything the widget owns.
type State struct {
	Playing  bool             `json:"playing"`
	Source   models.Source    `json:"source"`
	Info     models.TrackInfo `json:"info"`
	Position float64          `json:"position"`
	Duration float64          `json:"duration"`
	Locked   bool             `json:"locked"`
	Access   AccessState      `json:"access"`
}

// initialState is the state before [Mount].
func initialState() State {
	return State{Access: AccessState{Correct: true}}
}

// Remaining is Duration minus Position. It may be negative while a seek is in flight.
func (s State) Remaining() float64 {
	return s.Duration - s.Position
}

// TimeLabel renders "position / duration".
func (s State) TimeLabel() string {
	return shared.FormatTime(s.Position) + " / " + shared.FormatTime(s.Duration)
}

// ButtonLabel is the label of the play control.
func (s State) ButtonLabel() string {
	if s.Playing {
		return "Pause"
	}
	return "Play"
}

// CanUpload reports whether the file picker is offered.
func (s State) CanUpload() bool {
	return !s.Locked
}

// ShowGate reports whether the passphrase prompt is shown without being requested.
func (s State) ShowGate() bool {
	return !s.Access.Correct
}
