package media

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteTone writes a mono 16-bit PCM WAV file containing a sine tone with a short fade in and out.
//
// setup --demo uses it to create a default track when none is bundled.
func WriteTone(path string, seconds, frequency float64, sampleRate int) error {
	if seconds <= 0 || frequency <= 0 || sampleRate <= 0 {
		return fmt.Errorf("invalid tone parameters: %gs at %gHz, %d Hz sample rate", seconds, frequency, sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	n := int(seconds * float64(sampleRate))
	fade := min(n/2, sampleRate/20)
	data := make([]int, n)
	for i := range data {
		gain := 0.5
		if i < fade {
			gain *= float64(i) / float64(fade)
		} else if i >= n-fade {
			gain *= float64(n-i) / float64(fade)
		}
		data[i] = int(gain * math.MaxInt16 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode tone: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalise wav: %w", err)
	}
	return nil
}
