package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const (
	stubSampleRate = 24000
	// Rough stand-in pacing: one second of silence per ~90 characters,
	// clamped so tiny and huge inputs stay in a sane range.
	stubCharsPerSecond = 90.0
	stubMinSeconds     = 0.6
	stubMaxSeconds     = 6.0
)

// StubSynthesizer is the dry-run engine: it emits silence whose length
// approximates how long the text would take to speak. No model, no
// network. Used by DRY_RUN mode and by tests.
type StubSynthesizer struct{}

func NewStubSynthesizer() *StubSynthesizer {
	return &StubSynthesizer{}
}

func (s *StubSynthesizer) Synthesize(ctx context.Context, text, speakerWAV, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seconds := float64(len(text)) / stubCharsPerSecond
	if seconds < stubMinSeconds {
		seconds = stubMinSeconds
	}
	if seconds > stubMaxSeconds {
		seconds = stubMaxSeconds
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	format := beep.Format{
		SampleRate:  beep.SampleRate(stubSampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	n := format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if err := wav.Encode(out, beep.Silence(n), format); err != nil {
		return fmt.Errorf("encode stub wav: %w", err)
	}
	return nil
}
