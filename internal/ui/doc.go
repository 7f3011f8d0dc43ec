// Package ui implements the terminal player using bubbletea's Elm architecture.
//
// The [Model] renders a branded header, the play control, a seek bar with the time display, and a status line
// for notifications. It never mutates player state itself: every key press becomes a [player.Action]
// dispatched in a command, and the view is redrawn from [player.Widget.Snapshot] on each tick.
//
// Views:
//  1. [PlayerView] : playback controls, and the admin panel once unlocked
//  2. [FileView] : path prompt for choosing a track (hidden once the player is locked)
//  3. [GateView] : passphrase prompt for the admin panel
//
// Notifications arrive through [Notices], which implements player.Notifier over a channel.
package ui
