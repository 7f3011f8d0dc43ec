// Package player implements the single-owner player widget: playback, timeline, track source and the admin gate.
//
// All state lives in one [State] value owned by a [Widget]. The only way to change it is [Widget.Dispatch],
// which applies one [Action] at a time and then performs the side effects that action implies on the injected
// collaborators:
//   - [Storage] : persistent key-value storage for the chosen track
//   - [Media] : the playback primitive (play, pause, seek, duration, progress and metadata notifications)
//   - [Blobs] : turns uploaded files into transient, revocable track references
//   - [Notifier] : the user-facing alert channel
//
// Two conditions are reported to the user through the Notifier: a selected file whose declared media type is
// not audio ([ErrInvalidFile]) and a wrong admin passphrase ([ErrWrongPassphrase]). Media and storage failures
// are logged and otherwise ignored.
//
// # Admin gate
//
// The gate compares the typed entry against a passphrase held in memory in plaintext. Anyone who can read the
// configuration or the binary can read the passphrase. It hides the admin panel from casual users and nothing
// more; do not rely on it for access control.
//
// # Uploaded tracks
//
// An uploaded file becomes a blob:<uuid> reference that is persisted under the storage key. Blobs only live as
// long as the process that created them, so a reference persisted in an earlier session is restored on
// [Mount] but fails to load. The failure is logged and the stale reference stays active until the next upload
// or an admin reset.
package player
