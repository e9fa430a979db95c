package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/cwarloe/spokenword/internal/script"
	"github.com/cwarloe/spokenword/internal/voices"
)

type fakeSynth struct {
	calls []string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, speakerWAV, outPath string) error {
	f.calls = append(f.calls, text)
	return os.WriteFile(outPath, []byte("RIFF"), 0644)
}

type env struct {
	svc      *Service
	synth    *fakeSynth
	voices   string
	music    string
	out      string
	mixCalls [][]string
}

func newEnv(t *testing.T, cfg Config) *env {
	t.Helper()

	e := &env{
		synth:  &fakeSynth{},
		voices: t.TempDir(),
		music:  t.TempDir(),
		out:    t.TempDir(),
	}
	cfg.MusicDir = e.music
	cfg.OutputDir = e.out

	e.svc = NewService(e.synth, voices.NewLibrary(e.voices), zap.NewNop().Sugar(), cfg)
	e.svc.probe = func(path string) (float64, error) { return 1.5, nil }
	e.svc.run = func(args ...string) error {
		e.mixCalls = append(e.mixCalls, args)
		return nil
	}
	return e
}

func (e *env) addVoice(t *testing.T, id string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.voices, id+".wav"), []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
}

func (e *env) addMusic(t *testing.T, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.music, name), []byte("ID3"), 0644); err != nil {
		t.Fatal(err)
	}
}

func (e *env) lastMix(t *testing.T) string {
	t.Helper()
	if len(e.mixCalls) == 0 {
		t.Fatal("ffmpeg was never invoked")
	}
	return strings.Join(e.mixCalls[len(e.mixCalls)-1], " ")
}

func TestAssembleOffsets(t *testing.T) {
	e := newEnv(t, Config{})
	e.addVoice(t, "alt")

	segments := []script.Segment{
		{Kind: script.KindSpeech, Text: "Hello."},
		{Kind: script.KindPause, Duration: 2},
		{Kind: script.KindSpeech, Text: "World.", VoiceID: "alt"},
	}

	out, err := e.svc.Assemble(context.Background(), segments, "mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != filepath.Join(e.out, "mix.mp3") {
		t.Errorf("out = %q", out)
	}

	args := e.lastMix(t)
	// second chunk starts after 1.5s of speech plus the 2s pause
	if !strings.Contains(args, "adelay=0|0") || !strings.Contains(args, "adelay=3500|3500") {
		t.Errorf("chunk delays wrong: %s", args)
	}
	// total = 1.5 + 2 + 1.5
	if !strings.Contains(args, "d=5.000000") {
		t.Errorf("silent base duration wrong: %s", args)
	}
	if len(e.synth.calls) != 2 {
		t.Errorf("synth calls = %v, want 2", e.synth.calls)
	}
}

func TestAssembleNoMusicWhenDefaultMissing(t *testing.T) {
	e := newEnv(t, Config{DefaultMusic: "default.mp3"})

	_, err := e.svc.Assemble(context.Background(), []script.Segment{
		{Kind: script.KindSpeech, Text: "Hi."},
	}, "mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(e.lastMix(t), "-stream_loop") {
		t.Error("expected no music input when the default track is missing")
	}
}

func TestAssembleDefaultMusicUsed(t *testing.T) {
	e := newEnv(t, Config{DefaultMusic: "default.mp3"})
	e.addMusic(t, "default.mp3")

	_, err := e.svc.Assemble(context.Background(), []script.Segment{
		{Kind: script.KindSpeech, Text: "Hi."},
	}, "mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := e.lastMix(t)
	if !strings.Contains(args, "-stream_loop") || !strings.Contains(args, "default.mp3") {
		t.Errorf("default track not mixed: %s", args)
	}
}

func TestAssembleLastBGMusicWins(t *testing.T) {
	e := newEnv(t, Config{DefaultMusic: "default.mp3"})
	e.addMusic(t, "a.mp3")
	e.addMusic(t, "b.mp3")

	_, err := e.svc.Assemble(context.Background(), []script.Segment{
		{Kind: script.KindBGMusic, Filename: "a.mp3"},
		{Kind: script.KindSpeech, Text: "Hi."},
		{Kind: script.KindBGMusic, Filename: "b.mp3"},
	}, "mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := e.lastMix(t)
	if !strings.Contains(args, "b.mp3") || strings.Contains(args, "a.mp3") {
		t.Errorf("last bgmusic tag should win: %s", args)
	}
}

func TestAssembleExplicitMusicMissing(t *testing.T) {
	e := newEnv(t, Config{})

	_, err := e.svc.Assemble(context.Background(), []script.Segment{
		{Kind: script.KindSpeech, Text: "Hi."},
		{Kind: script.KindBGMusic, Filename: "ghost.mp3"},
	}, "mix")
	if err == nil {
		t.Fatal("expected an error for a missing requested track")
	}
	if len(e.mixCalls) != 0 {
		t.Error("ffmpeg must not run after a failed music lookup")
	}
}

func TestAssembleVoiceNotFound(t *testing.T) {
	e := newEnv(t, Config{})

	_, err := e.svc.Assemble(context.Background(), []script.Segment{
		{Kind: script.KindSpeech, Text: "Hi.", VoiceID: "ghost"},
	}, "mix")
	if !errors.Is(err, voices.ErrVoiceNotFound) {
		t.Fatalf("err = %v, want ErrVoiceNotFound", err)
	}
	if len(e.synth.calls) != 0 {
		t.Error("no synthesis call may happen for an unresolvable voice")
	}
	if len(e.mixCalls) != 0 {
		t.Error("ffmpeg must not run after a failed voice lookup")
	}
}

func TestAssembleEmptyStream(t *testing.T) {
	e := newEnv(t, Config{})
	_, err := e.svc.Assemble(context.Background(), nil, "mix")
	if err == nil {
		t.Fatal("expected an error for an empty segment stream")
	}
}

func TestAssembleRemovesTempChunks(t *testing.T) {
	e := newEnv(t, Config{})

	_, err := e.svc.Assemble(context.Background(), []script.Segment{
		{Kind: script.KindSpeech, Text: "One."},
		{Kind: script.KindSpeech, Text: "Two."},
	}, "mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(e.out, "chunk_*.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp chunks left behind: %v", leftovers)
	}
}

func TestRenderSingle(t *testing.T) {
	e := newEnv(t, Config{Format: "wav"})
	e.addVoice(t, "anna")

	out, err := e.svc.RenderSingle(context.Background(), "Whole text.", "anna", "output")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != filepath.Join(e.out, "output.wav") {
		t.Errorf("out = %q", out)
	}
	if len(e.synth.calls) != 1 || e.synth.calls[0] != "Whole text." {
		t.Errorf("synth calls = %v", e.synth.calls)
	}
}

func TestRenderSingleVoiceNotFound(t *testing.T) {
	e := newEnv(t, Config{})
	_, err := e.svc.RenderSingle(context.Background(), "Text.", "ghost", "output")
	if !errors.Is(err, voices.ErrVoiceNotFound) {
		t.Fatalf("err = %v, want ErrVoiceNotFound", err)
	}
}
