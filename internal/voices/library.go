package voices

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrVoiceNotFound means a speech segment referenced a voice id with no
// matching sample file on disk.
var ErrVoiceNotFound = errors.New("voice sample not found")

// Library resolves voice ids to reference sample clips stored in a single
// directory under the <voice_id>.wav naming convention. Samples are read
// per run, never cached.
type Library struct {
	dir string
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Resolve maps a voice id to the path of its reference sample.
func (l *Library) Resolve(voiceID string) (string, error) {
	path := filepath.Join(l.dir, voiceID+".wav")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %q (looked for %s)", ErrVoiceNotFound, voiceID, path)
	}
	return path, nil
}

// List returns the ids of all samples in the directory, sorted. A missing
// directory is treated as an empty library.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read voices dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if strings.EqualFold(ext, ".wav") {
			ids = append(ids, strings.TrimSuffix(e.Name(), ext))
		}
	}
	sort.Strings(ids)
	return ids, nil
}
