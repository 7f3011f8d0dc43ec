package player

import (
	"fmt"

	"github.com/desertthunder/edubrasil/internal/models"
)

// Action is one event applied through [Widget.Dispatch].
type Action interface {
	fmt.Stringer
	isAction()
}

var (
	_ Action = Mount{}
	_ Action = TogglePlay{}
	_ Action = Seek{}
	_ Action = Progress{}
	_ Action = MetadataReady{}
	_ Action = SelectFile{}
	_ Action = EnterPassphrase{}
	_ Action = SubmitPassphrase{}
	_ Action = Authenticate{}
	_ Action = Reset{}
	_ Action = Lock{}
)

// Mount restores the persisted track, or the default asset, and loads it.
type Mount struct{}

// TogglePlay plays when paused and pauses when playing.
type TogglePlay struct{}

// Seek is a user-initiated jump to Position seconds.
type Seek struct {
	Position float64
}

// Progress is the media primitive reporting its current offset.
//
// Generation identifies the load the notification belongs to. Notifications from an earlier load are dropped.
type Progress struct {
	Position   float64
	Generation uint64
}

// MetadataReady is the media primitive reporting the track duration.
type MetadataReady struct {
	Duration   float64
	Generation uint64
}

// SelectFile is a file chosen by the user.
type SelectFile struct {
	File models.File
}

// EnterPassphrase records the passphrase entry as typed.
type EnterPassphrase struct {
	Value string
}

// SubmitPassphrase compares the recorded entry against the configured passphrase.
type SubmitPassphrase struct{}

// Authenticate records Value as the passphrase entry and submits it, as one action.
type Authenticate struct {
	Value string
}

// Reset is the admin action that restores the default track.
type Reset struct{}

// Lock is the admin action that disables the file picker. There is no unlock.
type Lock struct{}

func (Mount) isAction()            {}
func (TogglePlay) isAction()       {}
func (Seek) isAction()             {}
func (Progress) isAction()         {}
func (MetadataReady) isAction()    {}
func (SelectFile) isAction()       {}
func (EnterPassphrase) isAction()  {}
func (SubmitPassphrase) isAction() {}
func (Authenticate) isAction()     {}
func (Reset) isAction()            {}
func (Lock) isAction()             {}

func (Mount) String() string            { return "mount" }
func (TogglePlay) String() string       { return "toggle_play" }
func (a Seek) String() string           { return fmt.Sprintf("seek(%.2f)", a.Position) }
func (a Progress) String() string       { return fmt.Sprintf("progress(%.2f)", a.Position) }
func (a MetadataReady) String() string  { return fmt.Sprintf("metadata_ready(%.2f)", a.Duration) }
func (a SelectFile) String() string     { return fmt.Sprintf("select_file(%s)", a.File.Name) }
func (EnterPassphrase) String() string  { return "enter_passphrase" }
func (SubmitPassphrase) String() string { return "submit_passphrase" }
func (Authenticate) String() string     { return "authenticate" }
func (Reset) String() string            { return "reset" }
func (Lock) String() string             { return "lock" }
