package speech

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Duration probes the real length of an audio file in seconds via ffprobe.
func Duration(path string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}
