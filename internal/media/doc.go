// Package media provides the concrete playback primitive and file inspection used by the player.
//
// [Speaker] plays mp3, wav, flac and ogg/vorbis files through the system audio device using beep. It reports
// the playback offset on a fixed interval and the duration once a file is decoded, matching the notification
// contract of player.Media.
//
// [TagInspector] reads title, artist and album tags with dhowden/tag, and [DetectMediaType] derives a declared
// media type for a local file the way a browser file input would.
//
// [NullOutput] stands in for the audio device when nothing should be heard, and [WriteTone] generates the demo
// track written by setup.
package media
