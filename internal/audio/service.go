package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cwarloe/spokenword/internal/script"
	"github.com/cwarloe/spokenword/internal/speech"
	"github.com/cwarloe/spokenword/internal/voices"
)

// Config holds the assembler's directory and export settings.
type Config struct {
	MusicDir     string
	OutputDir    string
	Format       string // "mp3" or "wav"
	DefaultMusic string // track used when the script has no [bgmusic:] tag
}

// Service turns a parsed segment stream into one mixed audio file. It is
// strictly linear: one pass, each synthesis call blocks, first error aborts.
type Service struct {
	synth   speech.Synthesizer
	library *voices.Library
	log     *zap.SugaredLogger
	cfg     Config

	probe func(path string) (float64, error)
	run   func(args ...string) error
}

func NewService(synth speech.Synthesizer, library *voices.Library, log *zap.SugaredLogger, cfg Config) *Service {
	if cfg.Format == "" {
		cfg.Format = "mp3"
	}
	return &Service{
		synth:   synth,
		library: library,
		log:     log,
		cfg:     cfg,
		probe:   speech.Duration,
		run:     runFFmpeg,
	}
}

// Assemble renders the segment stream into one mixed audio file and returns
// its path. Segment order in the mix matches input order exactly; the only
// gaps are explicit pauses.
func (s *Service) Assemble(ctx context.Context, segments []script.Segment, name string) (string, error) {
	music := s.cfg.DefaultMusic
	explicit := false
	for _, seg := range segments {
		if seg.Kind == script.KindBGMusic {
			music = seg.Filename // last occurrence wins
			explicit = true
		}
	}

	chunks, total, cleanup, err := s.synthesize(ctx, segments)
	defer cleanup()
	if err != nil {
		return "", err
	}
	if total <= 0 {
		return "", errors.New("nothing to render: no speech or pause segments")
	}

	musicPath, err := s.resolveMusic(music, explicit)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	outPath := filepath.Join(s.cfg.OutputDir, name+"."+s.cfg.Format)
	s.log.Infow("mixing", "chunks", len(chunks), "duration_sec", total, "music", musicPath, "out", outPath)

	if err := s.run(mixArgs(chunks, musicPath, total, s.cfg.Format, outPath)...); err != nil {
		return "", err
	}
	return outPath, nil
}

// RenderSingle narrates the whole text as one take with a single voice,
// ignoring inline tags. Used by single-voice mode.
func (s *Service) RenderSingle(ctx context.Context, text, voiceID, name string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no text to render")
	}

	speakerWAV := ""
	if voiceID != "" {
		p, err := s.library.Resolve(voiceID)
		if err != nil {
			return "", err
		}
		speakerWAV = p
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("single_%s.wav", uuid.NewString()))
	defer os.Remove(tmp)

	s.log.Infow("synthesizing", "voice", voiceID, "text", preview(text))
	if err := s.synth.Synthesize(ctx, text, speakerWAV, tmp); err != nil {
		return "", fmt.Errorf("synthesis failed: %w", err)
	}

	outPath := filepath.Join(s.cfg.OutputDir, name+"."+s.cfg.Format)
	if err := s.run("-y", "-i", tmp, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// synthesize walks the stream in order, rendering each speech segment to a
// temp waveform and advancing the running offset by real (probed) chunk
// durations and explicit pause durations.
func (s *Service) synthesize(ctx context.Context, segments []script.Segment) ([]Chunk, float64, func(), error) {
	var chunks []Chunk
	var temps []string
	cleanup := func() {
		for _, f := range temps {
			os.Remove(f)
		}
	}

	offset := 0.0
	for _, seg := range segments {
		switch seg.Kind {
		case script.KindPause:
			s.log.Infow("pause", "seconds", seg.Duration)
			offset += seg.Duration

		case script.KindSpeech:
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}

			speakerWAV := ""
			if seg.VoiceID != "" {
				p, err := s.library.Resolve(seg.VoiceID)
				if err != nil {
					return nil, 0, cleanup, err
				}
				speakerWAV = p
			}

			if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
				return nil, 0, cleanup, fmt.Errorf("create output dir: %w", err)
			}

			tmp := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("chunk_%s.wav", uuid.NewString()))
			s.log.Infow("synthesizing", "voice", seg.VoiceID, "text", preview(text))
			if err := s.synth.Synthesize(ctx, text, speakerWAV, tmp); err != nil {
				return nil, 0, cleanup, fmt.Errorf("synthesis failed: %w", err)
			}
			temps = append(temps, tmp)

			d, err := s.probe(tmp)
			if err != nil {
				return nil, 0, cleanup, err
			}

			chunks = append(chunks, Chunk{Path: tmp, Start: offset, Duration: d})
			offset += d
		}
	}

	return chunks, offset, cleanup, nil
}

func (s *Service) resolveMusic(filename string, explicit bool) (string, error) {
	if filename == "" {
		return "", nil
	}
	path := filepath.Join(s.cfg.MusicDir, filename)
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return "", fmt.Errorf("background music %q: %w", filename, err)
		}
		s.log.Warnw("default music track missing, mixing without music", "path", path)
		return "", nil
	}
	return path, nil
}

func preview(text string) string {
	if len(text) > 60 {
		return text[:60] + "..."
	}
	return text
}
