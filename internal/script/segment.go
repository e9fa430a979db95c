package script

// Kind distinguishes the three segment types of the tag stream.
type Kind string

const (
	KindSpeech  Kind = "speech"
	KindPause   Kind = "pause"
	KindBGMusic Kind = "bgmusic"
)

// Segment is one ordered unit of the parsed tag stream. Segments are
// immutable once created and are processed strictly in input order.
type Segment struct {
	Kind     Kind
	Text     string  // speech only
	VoiceID  string  // speech only; empty means the default voice
	Duration float64 // pause only, in seconds
	Filename string  // bgmusic only
}
