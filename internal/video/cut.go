package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/recut/internal/caption"
	ffmpegbin "github.com/mgpai22/recut/internal/ffmpeg"
)

// settings for Cut
type CutOptions struct {
	// parallel ffmpeg segment jobs, 4 when zero or negative
	Concurrency int
}

func DefaultCutOptions() CutOptions {
	return CutOptions{Concurrency: 4}
}

// segmentJob is one keep segment to be copied out of the input
type segmentJob struct {
	index int
	span  caption.TimeRange
	path  string
}

// cuts each keep segment with stream copy into a scratch directory, then joins
// the segments with the concat demuxer
func (p *DefaultProcessor) Cut(
	ctx context.Context,
	input, output string,
	keep []caption.TimeRange,
	opts CutOptions,
) error {
	if len(keep) == 0 {
		return errors.New("no segments to keep")
	}
	for i, r := range keep {
		if !r.Valid() || r.Duration() == 0 {
			return fmt.Errorf("invalid keep segment %d: %s", i, r)
		}
	}
	if _, err := os.Stat(input); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", input)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultCutOptions().Concurrency
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	baseDir := p.tempDir
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	workDir := filepath.Join(baseDir, "recut-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			p.logger.Warnw("failed to remove work directory", "dir", workDir, "error", err)
		}
	}()

	ext := filepath.Ext(input)
	jobs := make([]segmentJob, len(keep))
	for i, r := range keep {
		jobs[i] = segmentJob{
			index: i,
			span:  r,
			path:  filepath.Join(workDir, fmt.Sprintf("segment_%03d%s", i, ext)),
		}
	}

	p.logger.Infow("cutting video",
		"input", input,
		"segments", len(jobs),
		"concurrency", concurrency,
	)

	if err := runSegmentJobs(ctx, ffmpegPath, input, jobs, concurrency); err != nil {
		return err
	}

	listPath := filepath.Join(workDir, "segments.txt")
	if err := writeConcatList(listPath, jobs); err != nil {
		return err
	}

	if err := runStream(ctx, ffmpegPath, concatStream(listPath, output)); err != nil {
		return fmt.Errorf("concat segments: %w", err)
	}

	p.logger.Infow("video cut complete", "output", output)
	return nil
}

func runSegmentJobs(
	ctx context.Context,
	ffmpegPath, input string,
	jobs []segmentJob,
	concurrency int,
) error {
	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)

	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	sem := make(chan struct{}, concurrency)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return err
		}
		if failed() {
			break
		}

		wg.Add(1)
		go func(j segmentJob) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil || failed() {
				return
			}

			err := runStream(ctx, ffmpegPath, segmentStream(input, j))

			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("cut segment %d: %w", j.index, err)
			}
		}(job)
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// -i input -ss start -t duration -c copy segment
func segmentStream(input string, j segmentJob) *ffmpeg.Stream {
	return ffmpeg.Input(input).
		Output(j.path, ffmpeg.KwArgs{
			"ss": formatSeconds(j.span.Start.Seconds()),
			"t":  formatSeconds(j.span.Duration().Seconds()),
			"c":  "copy",
		}).
		OverWriteOutput()
}

// -f concat -safe 0 -i list -c copy output
func concatStream(listPath, output string) *ffmpeg.Stream {
	return ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(output, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput()
}

// runStream executes a compiled ffmpeg-go graph under ctx and folds the tail
// of stderr into the returned error.
func runStream(ctx context.Context, ffmpegPath string, stream *ffmpeg.Stream) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath, stream.GetArgs()...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if tail := lastLine(stderr.String()); tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}
		return err
	}
	return nil
}

func writeConcatList(path string, jobs []segmentJob) error {
	var b strings.Builder
	for _, j := range jobs {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(j.path))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// concat demuxer quoting: close the quote, escaped quote, reopen
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), "'", `'\''`)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
