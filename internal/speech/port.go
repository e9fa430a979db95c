package speech

import "context"

// Synthesizer turns one piece of text into a waveform file.
type Synthesizer interface {
	// Synthesize renders text in the vocal style of the reference sample at
	// speakerWAV and writes the waveform to outPath. An empty speakerWAV
	// selects the engine's default voice.
	Synthesize(ctx context.Context, text, speakerWAV, outPath string) error
}
