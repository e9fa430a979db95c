package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports a malformed inline directive. The run aborts before
// any synthesis when one is returned.
type ParseError struct {
	Offset int    // byte offset into the source text
	Tag    string // the offending tag or fragment
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s: %q", e.Offset, e.Reason, e.Tag)
}

var (
	tagRe = regexp.MustCompile(`(?i)\[(voice|pause|bgmusic):([^\[\]]*)\]`)
	// A directive opener that never got matched as a full tag, e.g. because
	// another tag was nested inside its body or the closing bracket is gone.
	danglingRe = regexp.MustCompile(`(?i)\[(voice|pause|bgmusic):`)
)

// Parse splits raw text into an ordered segment stream.
//
// Plain text between directives becomes a speech segment under the voice
// most recently set by [voice:...]. [pause:N] emits one pause segment and
// [bgmusic:F] one music directive; whitespace-only text runs are dropped
// so no zero-length synthesis call is ever issued downstream.
func Parse(raw string) ([]Segment, error) {
	var segments []Segment
	voice := ""
	last := 0

	for _, m := range tagRe.FindAllStringSubmatchIndex(raw, -1) {
		seg, err := speechRun(raw, last, m[0], voice)
		if err != nil {
			return nil, err
		}
		if seg != nil {
			segments = append(segments, *seg)
		}

		name := strings.ToLower(raw[m[2]:m[3]])
		body := strings.TrimSpace(raw[m[4]:m[5]])
		tag := raw[m[0]:m[1]]

		switch name {
		case "voice":
			if body == "" {
				return nil, &ParseError{Offset: m[0], Tag: tag, Reason: "voice tag requires a name"}
			}
			voice = strings.ToLower(body)

		case "pause":
			d, err := strconv.ParseFloat(body, 64)
			if err != nil || d < 0 {
				return nil, &ParseError{Offset: m[0], Tag: tag, Reason: "pause duration must be a non-negative number"}
			}
			segments = append(segments, Segment{Kind: KindPause, Duration: d})

		case "bgmusic":
			if body == "" {
				return nil, &ParseError{Offset: m[0], Tag: tag, Reason: "bgmusic tag requires a filename"}
			}
			segments = append(segments, Segment{Kind: KindBGMusic, Filename: body})
		}

		last = m[1]
	}

	seg, err := speechRun(raw, last, len(raw), voice)
	if err != nil {
		return nil, err
	}
	if seg != nil {
		segments = append(segments, *seg)
	}

	return segments, nil
}

// speechRun turns the text between two directives into a speech segment.
// A leftover directive opener inside the run means the source had a nested
// or unterminated tag; that is rejected instead of guessing intent.
func speechRun(raw string, from, to int, voice string) (*Segment, error) {
	chunk := raw[from:to]
	if loc := danglingRe.FindStringIndex(chunk); loc != nil {
		return nil, &ParseError{
			Offset: from + loc[0],
			Tag:    strings.TrimSpace(chunk[loc[0]:]),
			Reason: "nested or unterminated directive",
		}
	}

	text := strings.TrimSpace(chunk)
	if text == "" {
		return nil, nil
	}
	return &Segment{Kind: KindSpeech, Text: text, VoiceID: voice}, nil
}
