package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// XTTSClient talks to a local XTTS API server, which does the actual
// voice cloning. The server is the external collaborator here; nothing
// about the model lives in this repo.
type XTTSClient struct {
	baseURL  string
	language string
	httpCli  *http.Client
}

func NewXTTSClient() *XTTSClient {
	baseURL := os.Getenv("XTTS_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8020"
	}

	language := os.Getenv("TTS_LANGUAGE")
	if language == "" {
		language = "en"
	}

	return &XTTSClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		httpCli:  http.DefaultClient,
	}
}

// TEXT → SPEECH
func (c *XTTSClient) Synthesize(ctx context.Context, text, speakerWAV, outPath string) error {
	payload, err := json.Marshal(map[string]string{
		"text":        text,
		"speaker_wav": speakerWAV,
		"language":    c.language,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/tts_to_audio/", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("xtts error: %s", string(b))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
