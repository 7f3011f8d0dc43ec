package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// DefaultSampleRate is the output rate the speaker is initialised with. Tracks are resampled to it.
const DefaultSampleRate = beep.SampleRate(44100)

var (
	ErrNotLoaded         = errors.New("no track loaded")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Output is the audio device a [Speaker] plays through. [DeviceOutput] wraps beep/speaker.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Clear()
}

// DeviceOutput plays through the system audio device.
type DeviceOutput struct{}

func (DeviceOutput) Init(sr beep.SampleRate, bufferSize int) error { return speaker.Init(sr, bufferSize) }
func (DeviceOutput) Play(s beep.Streamer)                          { speaker.Play(s) }
func (DeviceOutput) Lock()                                         { speaker.Lock() }
func (DeviceOutput) Unlock()                                       { speaker.Unlock() }
func (DeviceOutput) Clear()                                        { speaker.Clear() }

// Speaker implements player.Media on top of beep.
type Speaker struct {
	mu         sync.Mutex
	out        Output
	rate       beep.SampleRate
	ready      bool
	stream     beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	onProgress func(float64)
	onMetadata func(float64)
	interval   time.Duration
	stop       chan struct{}
	done       chan struct{}
	logger     *log.Logger

	// progress is the callback bound to the loaded track.
	progress func(float64)
}

// SpeakerOpts contains configuration options for creating a Speaker.
type SpeakerOpts struct {
	Output     Output
	SampleRate beep.SampleRate
	// Interval between progress notifications while playing. Defaults to 250ms.
	Interval time.Duration
	Logger   *log.Logger
}

// NewSpeaker creates a Speaker and starts its progress clock. The audio device is opened on the first Load.
func NewSpeaker(opts SpeakerOpts) *Speaker {
	if opts.Output == nil {
		opts.Output = DeviceOutput{}
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Interval <= 0 {
		opts.Interval = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	s := &Speaker{
		out:      opts.Output,
		rate:     opts.SampleRate,
		interval: opts.Interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   opts.Logger,
	}
	go s.clock()
	return s
}

// Load decodes the file at location and queues it paused. The previous track is stopped and closed, even
// when the new one cannot be decoded.
//
// The callbacks registered at the time of the call are bound to this track: its progress and metadata
// notifications go to them even if other callbacks are registered later.
func (s *Speaker) Load(location string) error {
	stream, format, err := decode(location)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.release()
		return err
	}

	if !s.ready {
		if err := s.out.Init(s.rate, s.rate.N(time.Second/10)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to initialise audio output: %w", err)
		}
		s.ready = true
	}

	s.release()
	s.stream = stream
	s.format = format
	s.ctrl = &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, s.rate, stream), Paused: true}
	s.progress = s.onProgress
	duration := format.SampleRate.D(stream.Len()).Seconds()

	s.out.Play(s.ctrl)
	s.logger.Debug("track loaded", "location", location, "duration", duration, "rate", format.SampleRate)

	if fn := s.onMetadata; fn != nil {
		go fn(duration)
	}
	return nil
}

// Play resumes the loaded track.
func (s *Speaker) Play() error {
	return s.setPaused(false)
}

// Pause pauses the loaded track.
func (s *Speaker) Pause() error {
	return s.setPaused(true)
}

func (s *Speaker) setPaused(paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return ErrNotLoaded
	}
	s.out.Lock()
	s.ctrl.Paused = paused
	s.out.Unlock()
	return nil
}

// Seek moves the loaded track to seconds, clamped to the track bounds.
func (s *Speaker) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return ErrNotLoaded
	}

	s.out.Lock()
	defer s.out.Unlock()

	pos := s.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	pos = max(0, min(pos, s.stream.Len()-1))
	if err := s.stream.Seek(pos); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// Duration returns the loaded track's length in seconds, or 0.
func (s *Speaker) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return 0
	}
	s.out.Lock()
	defer s.out.Unlock()
	return s.format.SampleRate.D(s.stream.Len()).Seconds()
}

// OnProgress registers the progress callback for tracks loaded after the call.
func (s *Speaker) OnProgress(fn func(position float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

// OnMetadataReady registers the duration callback for tracks loaded after the call.
func (s *Speaker) OnMetadataReady(fn func(duration float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMetadata = fn
}

// Close stops the clock and releases the loaded track.
func (s *Speaker) Close() error {
	select {
	case <-s.stop:
		return nil
	default:
		close(s.stop)
	}
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		s.release()
	}
	return nil
}

// release stops and closes the current stream. Callers hold s.mu but not the output lock, which Clear takes.
func (s *Speaker) release() {
	if s.stream == nil {
		return
	}
	s.out.Clear()
	if err := s.stream.Close(); err != nil {
		s.logger.Debug("failed to close stream", "error", err)
	}
	s.stream, s.ctrl, s.progress = nil, nil, nil
}

// clock reports the playback offset every interval while a track is playing.
func (s *Speaker) clock() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if pos, fn, ok := s.position(); ok && fn != nil {
				fn(pos)
			}
		}
	}
}

// position returns the current offset and the callback bound to the same track, without holding any lock
// on return.
func (s *Speaker) position() (float64, func(float64), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil || s.ctrl == nil {
		return 0, nil, false
	}

	s.out.Lock()
	defer s.out.Unlock()
	if s.ctrl.Paused {
		return 0, nil, false
	}
	return s.format.SampleRate.D(s.stream.Position()).Seconds(), s.progress, true
}

// decode opens location and picks a decoder by extension, falling back to container identification.
func decode(location string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open track: %w", err)
	}

	kind := strings.ToLower(filepath.Ext(location))
	if _, ok := audioExtensions[kind]; !ok {
		if _, fileType, err := tag.Identify(f); err == nil {
			kind = "." + strings.ToLower(string(fileType))
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, beep.Format{}, fmt.Errorf("failed to rewind track: %w", err)
		}
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch kind {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg", ".oga":
		stream, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, location)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode track: %w", err)
	}
	return stream, format, nil
}

// NullOutput discards audio. The serve command uses it with --mute and the shell commands always do.
type NullOutput struct{}

func (NullOutput) Init(beep.SampleRate, int) error { return nil }
func (NullOutput) Play(beep.Streamer)              {}
func (NullOutput) Lock()                           {}
func (NullOutput) Unlock()                         {}
func (NullOutput) Clear()                          {}
