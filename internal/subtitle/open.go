package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/recut/internal/caption"
)

// ReadCaptions loads a SubRip file and extracts its captions. Skipped blocks
// are reported as warnings; only I/O problems and unsupported extensions are
// errors.
func ReadCaptions(path string) ([]caption.Caption, []caption.Warning, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".srt" {
		return nil, nil, fmt.Errorf("unsupported subtitle format: %s (only .srt input is supported)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	captions, warnings := caption.Scan(string(data))
	return captions, warnings, nil
}
