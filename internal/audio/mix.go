package audio

import (
	"bytes"
	"fmt"
	"math"
	"os/exec"
	"strings"
)

const (
	SampleRate = 44100

	// Background music sits ≈ -12 dB under the narration bus.
	MusicVolume  = 0.25
	MusicFadeSec = 0.6
)

// Chunk is one synthesized waveform pinned to its start offset in the mix.
// Pauses never become chunks; they exist only as gaps between offsets.
type Chunk struct {
	Path     string
	Start    float64 // seconds from mix start
	Duration float64
}

// mixArgs builds the single ffmpeg invocation that lays every chunk onto a
// silent base of the full duration, loops the music under it at reduced
// volume with fade-in/out, and encodes the final mix.
func mixArgs(chunks []Chunk, musicPath string, total float64, format, outPath string) []string {
	args := []string{"-y"}

	// Input 0: silent base pinning the exact total duration
	args = append(args, "-f", "lavfi", "-i", fmt.Sprintf("anullsrc=r=%d:cl=stereo:d=%f", SampleRate, total))

	// Inputs 1..N: narration chunks
	for _, c := range chunks {
		args = append(args, "-i", c.Path)
	}

	// Input N+1: background music, looped so short tracks cover the mix
	musicIdx := -1
	if musicPath != "" {
		musicIdx = len(chunks) + 1
		args = append(args, "-stream_loop", "-1", "-i", musicPath)
	}

	var filters []string
	mix := []string{"[0]"}

	for i, c := range chunks {
		label := fmt.Sprintf("v%d", i+1)
		delay := int(math.Round(c.Start * 1000))
		filters = append(filters, fmt.Sprintf("[%d:a]aresample=%d,adelay=%d|%d[%s]", i+1, SampleRate, delay, delay, label))
		mix = append(mix, "["+label+"]")
	}

	if musicIdx >= 0 {
		fadeOutStart := total - MusicFadeSec
		if fadeOutStart < 0 {
			fadeOutStart = 0
		}
		filters = append(filters, fmt.Sprintf(
			"[%d:a]atrim=duration=%f,volume=%.2f,afade=t=in:d=%.1f,afade=t=out:st=%f:d=%.1f[bg]",
			musicIdx, total, MusicVolume, MusicFadeSec, fadeOutStart, MusicFadeSec))
		mix = append(mix, "[bg]")
	}

	filter := strings.Join(filters, ";")
	if filter != "" {
		filter += ";"
	}
	// duration=first keeps the silent base authoritative for total length
	filter += strings.Join(mix, "") + fmt.Sprintf("amix=inputs=%d:duration=first:dropout_transition=0:normalize=0", len(mix))

	args = append(args, "-filter_complex", filter)

	if format == "wav" {
		args = append(args, "-c:a", "pcm_s16le")
	} else {
		args = append(args, "-c:a", "libmp3lame", "-q:a", "2")
	}

	return append(args, outPath)
}

func runFFmpeg(args ...string) error {
	cmd := exec.Command("ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %v: %s", err, stderr.String())
	}
	return nil
}
