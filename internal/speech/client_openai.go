package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient synthesizes with the OpenAI speech API. The API has no
// voice cloning, so the reference sample's base name is mapped onto one
// of the built-in voices; anything unknown falls back to the default.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		panic("OPENAI_API_KEY not set")
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
	}
}

var openaiVoices = map[string]openai.SpeechVoice{
	"alloy":   openai.VoiceAlloy,
	"echo":    openai.VoiceEcho,
	"fable":   openai.VoiceFable,
	"onyx":    openai.VoiceOnyx,
	"nova":    openai.VoiceNova,
	"shimmer": openai.VoiceShimmer,
}

func (c *OpenAIClient) Synthesize(ctx context.Context, text, speakerWAV, outPath string) error {
	voice := openai.VoiceAlloy
	if speakerWAV != "" {
		id := strings.TrimSuffix(filepath.Base(speakerWAV), filepath.Ext(speakerWAV))
		if v, ok := openaiVoices[strings.ToLower(id)]; ok {
			voice = v
		}
	}

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp)
	return err
}
