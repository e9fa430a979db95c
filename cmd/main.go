package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cwarloe/spokenword/internal/archive"
	"github.com/cwarloe/spokenword/internal/audio"
	"github.com/cwarloe/spokenword/internal/script"
	"github.com/cwarloe/spokenword/internal/speech"
	"github.com/cwarloe/spokenword/internal/voices"
)

type config struct {
	TextFile     string
	VoicesDir    string
	MusicDir     string
	OutputDir    string
	Format       string
	DefaultMusic string
	Engine       string
	Mode         string
	S3Endpoint   string
}

func loadConfig() config {
	cfg := config{
		TextFile:     getenv("TEXT_FILE", "text.txt"),
		VoicesDir:    getenv("VOICES_DIR", "voices"),
		MusicDir:     getenv("MUSIC_DIR", "music"),
		OutputDir:    getenv("OUTPUT_DIR", "outputs"),
		Format:       getenv("OUTPUT_FORMAT", "mp3"),
		DefaultMusic: getenv("DEFAULT_MUSIC", "default.mp3"),
		Engine:       getenv("TTS_ENGINE", "xtts"),
		Mode:         os.Getenv("MODE"),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
	}

	// DRY_RUN=1 swaps in the silence stub and keeps the output as WAV so
	// the run needs neither the model server nor an mp3 encoder setup.
	if os.Getenv("DRY_RUN") == "1" {
		cfg.Engine = "stub"
		cfg.Format = "wav"
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {

	// =========================================================================
	// ENV / INPUT
	// =========================================================================

	_ = godotenv.Load()

	cfg := loadConfig()

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	logg := baseLogger.Sugar()

	raw, err := os.ReadFile(cfg.TextFile)
	if err != nil {
		log.Fatalf("missing %s: %v", cfg.TextFile, err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		log.Fatalf("no text in %s", cfg.TextFile)
	}

	// =========================================================================
	// ENGINE / SERVICES
	// =========================================================================

	var synth speech.Synthesizer
	switch cfg.Engine {
	case "stub":
		synth = speech.NewStubSynthesizer()
		logg.Infow("dry run: using silence stub engine")
	case "openai":
		synth = speech.NewOpenAIClient()
	case "xtts":
		synth = speech.NewXTTSClient()
	default:
		log.Fatalf("unknown TTS_ENGINE %q", cfg.Engine)
	}

	library := voices.NewLibrary(cfg.VoicesDir)
	assembler := audio.NewService(synth, library, logg, audio.Config{
		MusicDir:     cfg.MusicDir,
		OutputDir:    cfg.OutputDir,
		Format:       cfg.Format,
		DefaultMusic: cfg.DefaultMusic,
	})

	// =========================================================================
	// MODE SELECTION
	// =========================================================================

	stdin := bufio.NewReader(os.Stdin)
	mode := cfg.Mode
	if mode == "" {
		fmt.Println("\nSelect mode:")
		fmt.Println("1. Single voice (choose at prompt)")
		fmt.Println("2. Multi-voice script ([voice:], [pause:], [bgmusic:] tags)")
		fmt.Print("Choice (1 or 2): ")
		mode = readLine(stdin)
	}

	ctx := context.Background()

	var outPaths []string
	switch mode {
	case "2", "multi":
		segments, err := script.Parse(text)
		if err != nil {
			log.Fatalf("script error: %v", err)
		}
		out, err := assembler.Assemble(ctx, segments, "multi_voice_with_music")
		if err != nil {
			log.Fatalf("assembly failed: %v", err)
		}
		outPaths = append(outPaths, out)

	default:
		outPaths = runSingleVoice(ctx, stdin, assembler, library, text, logg)
	}

	for _, out := range outPaths {
		st, err := os.Stat(out)
		if err != nil {
			log.Fatalf("output missing: %v", err)
		}
		logg.Infow("mix written", "path", out, "size", humanize.Bytes(uint64(st.Size())))
	}

	// =========================================================================
	// ARCHIVE (optional)
	// =========================================================================

	if cfg.S3Endpoint != "" {
		client, err := archive.NewMinioClient()
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		archiver := archive.NewService(client)
		for _, out := range outPaths {
			url, err := archiver.SaveMix(ctx, out)
			if err != nil {
				log.Fatalf("archive failed: %v", err)
			}
			logg.Infow("mix archived", "url", url)
		}
	}
}

// runSingleVoice narrates the whole text as one take. The user picks a
// voice sample by number; 0 renders the text once per available voice.
func runSingleVoice(
	ctx context.Context,
	stdin *bufio.Reader,
	assembler *audio.Service,
	library *voices.Library,
	text string,
	logg *zap.SugaredLogger,
) []string {

	ids, err := library.List()
	if err != nil {
		log.Fatalf("voice listing failed: %v", err)
	}

	voiceID := ""
	if len(ids) > 0 {
		fmt.Println("\nAvailable voices:")
		for i, id := range ids {
			fmt.Printf("  %d. %s\n", i+1, id)
		}
		fmt.Println("  0. All voices")
		fmt.Print("\nSelect voice number (or press Enter for default): ")

		choice := readLine(stdin)
		if n, err := strconv.Atoi(choice); err == nil {
			switch {
			case n == 0:
				var outs []string
				for _, id := range ids {
					logg.Infow("rendering", "voice", id)
					out, err := assembler.RenderSingle(ctx, text, id, id)
					if err != nil {
						log.Fatalf("render failed for %s: %v", id, err)
					}
					outs = append(outs, out)
				}
				return outs
			case n >= 1 && n <= len(ids):
				voiceID = ids[n-1]
			}
		}
	}

	out, err := assembler.RenderSingle(ctx, text, voiceID, "output")
	if err != nil {
		log.Fatalf("render failed: %v", err)
	}
	return []string{out}
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
