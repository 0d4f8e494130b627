package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	ffmpegReleaseVersion = "6.1"
	ffmpegReleaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	envFFmpegPath  = "RECUT_FFMPEG_PATH"
	envFFprobePath = "RECUT_FFPROBE_PATH"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

func (p BinaryPaths) complete() bool {
	return p.FFmpeg != "" && p.FFprobe != ""
}

var (
	mu       sync.Mutex
	explicit BinaryPaths
	resolved *BinaryPaths
)

// Configure sets binary locations that take precedence over the environment
// and PATH. Empty fields fall through to the next source.
func Configure(paths BinaryPaths) {
	mu.Lock()
	defer mu.Unlock()
	explicit = paths
	resolved = nil
}

// Ensure resolves both binaries, downloading a release bundle into the user
// cache when neither configuration, environment nor PATH provides them. A
// successful resolution is remembered for the life of the process.
func Ensure() (BinaryPaths, error) {
	mu.Lock()
	defer mu.Unlock()
	if resolved != nil {
		return *resolved, nil
	}

	paths := lookupLocal(explicit, os.Getenv, exec.LookPath)
	if !paths.complete() {
		installed, err := ensureCached(paths)
		if err != nil {
			return BinaryPaths{}, err
		}
		paths = installed
	}

	resolved = &paths
	return paths, nil
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// lookupLocal fills each binary from configuration, then the environment, then
// PATH. The result may be partial.
func lookupLocal(
	configured BinaryPaths,
	getenv func(string) string,
	lookPath func(string) (string, error),
) BinaryPaths {
	pick := func(configuredPath, envKey, name string) string {
		if configuredPath != "" {
			return configuredPath
		}
		if p := getenv(envKey); p != "" {
			return p
		}
		if found, err := lookPath(name); err == nil {
			return found
		}
		return ""
	}
	return BinaryPaths{
		FFmpeg:  pick(configured.FFmpeg, envFFmpegPath, "ffmpeg"),
		FFprobe: pick(configured.FFprobe, envFFprobePath, "ffprobe"),
	}
}

func installDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	return filepath.Join(
		cacheDir,
		"recut",
		"ffmpeg",
		ffmpegReleaseVersion,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// ensureCached completes partial with binaries from the cache directory,
// downloading the bundle first when the cache is empty.
func ensureCached(partial BinaryPaths) (BinaryPaths, error) {
	assetName, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}

	dir := installDir()
	exeSuffix := executableSuffix()
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(dir, "ffmpeg"+exeSuffix),
		FFprobe: filepath.Join(dir, "ffprobe"+exeSuffix),
	}
	merge := func() BinaryPaths {
		out := partial
		if out.FFmpeg == "" {
			out.FFmpeg = cached.FFmpeg
		}
		if out.FFprobe == "" {
			out.FFprobe = cached.FFprobe
		}
		return out
	}

	if binariesExist(cached.FFmpeg, cached.FFprobe) {
		return merge(), nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, ".download.lock"))
	if err := lock.Lock(); err != nil {
		return BinaryPaths{}, fmt.Errorf("lock ffmpeg cache dir: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	// another process may have finished the download while we waited
	if !binariesExist(cached.FFmpeg, cached.FFprobe) {
		if err := downloadAndExtract(assetName, dir); err != nil {
			return BinaryPaths{}, err
		}
		if !binariesExist(cached.FFmpeg, cached.FFprobe) {
			return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
		}
	}

	return merge(), nil
}

func assetForPlatform(goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-linux-64.zip", nil
	case goos == "linux" && goarch == "arm64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-linux-arm-64.zip", nil
	case goos == "darwin" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-macos-64.zip", nil
	case goos == "windows" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-win-64.zip", nil
	default:
		return "", fmt.Errorf(
			"unsupported platform for bundled ffmpeg: %s/%s (set %s and %s)",
			goos, goarch, envFFmpegPath, envFFprobePath,
		)
	}
}

func downloadAndExtract(assetName, dir string) error {
	url := fmt.Sprintf("%s/v%s/%s", ffmpegReleaseBaseURL, ffmpegReleaseVersion, assetName)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	return extractArchiveFromReader(assetName, resp.Body, dir)
}

func extractArchiveFromReader(assetName string, reader io.Reader, dir string) error {
	tmpFile, err := os.CreateTemp("", "recut-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmpFile.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmpFile, reader); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, dir); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

func extractArchive(archivePath, dir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zipReader.Close() }()

	ffmpegFound := false
	ffprobeFound := false
	for _, file := range zipReader.File {
		name := filepath.Base(file.Name)
		switch {
		case isBinary(name, "ffmpeg"):
			if err := extractZipFile(file, filepath.Join(dir, "ffmpeg"+executableSuffix())); err != nil {
				return err
			}
			ffmpegFound = true
		case isBinary(name, "ffprobe"):
			if err := extractZipFile(file, filepath.Join(dir, "ffprobe"+executableSuffix())); err != nil {
				return err
			}
			ffprobeFound = true
		}
	}

	if !ffmpegFound || !ffprobeFound {
		return errors.New("ffmpeg archive missing required binaries")
	}
	return nil
}

// extractZipFile writes the entry beside dest and renames it into place once
// complete and executable, so the unlocked fast path in ensureCached never
// sees a partial binary.
func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	out, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*.partial")
	if err != nil {
		return fmt.Errorf("create ffmpeg binary: %w", err)
	}
	tmp := out.Name()
	committed := false
	defer func() {
		if !committed {
			_ = out.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmp, 0o755); err != nil {
			return fmt.Errorf("chmod %s: %w", filepath.Base(dest), err)
		}
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("install ffmpeg binary: %w", err)
	}
	committed = true
	return nil
}

func binariesExist(ffmpegPath, ffprobePath string) bool {
	return fileExists(ffmpegPath) && fileExists(ffprobePath)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func isBinary(name, base string) bool {
	name = strings.ToLower(name)
	return name == base || name == base+".exe"
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
