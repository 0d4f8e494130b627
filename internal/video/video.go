package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/recut/internal/caption"
	ffmpegbin "github.com/mgpai22/recut/internal/ffmpeg"
	"github.com/mgpai22/recut/internal/logging"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Size      int64
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video processing operations
type Processor interface {
	// retrieves video file information
	Probe(ctx context.Context, videoPath string) (*Info, error)

	// joins the keep segments of input into output without re-encoding
	Cut(
		ctx context.Context,
		input, output string,
		keep []caption.TimeRange,
		opts CutOptions,
	) error
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	tempDir string
	logger  *logging.Logger
}

// NewProcessor creates a processor that keeps intermediate segments under
// tempDir, or the system temp directory when tempDir is empty.
func NewProcessor(tempDir string, logger *logging.Logger) *DefaultProcessor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &DefaultProcessor{
		tempDir: tempDir,
		logger:  logger,
	}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// retrieves video file information
func (p *DefaultProcessor) Probe(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = videoPath

	p.logger.Debugw("probed video",
		"path", videoPath,
		"duration", info.Duration,
		"codec", info.Codec,
		"has_audio", info.HasAudio,
	)
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration %q: %w", probe.Format.Duration, err)
	}

	info := &Info{Duration: caption.Seconds(seconds)}
	if size, err := strconv.ParseInt(strings.TrimSpace(probe.Format.Size), 10, 64); err == nil {
		info.Size = size
	}

	videoFound := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if videoFound {
				continue
			}
			videoFound = true
			info.Codec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FrameRate = parseFrameRate(s.AvgFrameRate)
			if info.FrameRate == 0 {
				info.FrameRate = parseFrameRate(s.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if !videoFound {
		return nil, fmt.Errorf("no video stream found")
	}

	return info, nil
}

// parses ffprobe rates such as "30000/1001" or "25"
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(rate), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
		".ts":   true,
	}
	return videoExts[ext]
}
