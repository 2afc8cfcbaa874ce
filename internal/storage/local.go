package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelsort/internal/logging"
	"reelsort/internal/media"
	"reelsort/internal/services"
)

var videoExtensions = map[string]bool{
	"mkv": true, "mp4": true, "avi": true, "mov": true,
	"wmv": true, "flv": true, "webm": true, "m4v": true,
	"mpg": true, "mpeg": true, "ts": true, "m2ts": true,
	"rmvb": true, "iso": true,
}

// IsVideo reports whether the file name carries a recognized video
// extension.
func IsVideo(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return videoExtensions[ext]
}

// Local serves a library rooted in a directory on the local filesystem.
type Local struct {
	root   string
	logger *slog.Logger
}

// NewLocal builds a local adapter rooted at the library directory.
func NewLocal(root string, logger *slog.Logger) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("local adapter requires a library root")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Local{root: root, logger: logging.NewComponentLogger(logger, "storage")}, nil
}

func (l *Local) Type() media.StorageType { return media.StorageLocal }

// Browse lists directories and video files directly under dir.
func (l *Local) Browse(ctx context.Context, dir string) ([]media.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "storage", "browse", "read directory", err)
	}

	var files []media.FileInfo
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			files = append(files, media.NewFileInfo(full, 0, true))
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), "."))
		if !videoExtensions[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, media.NewFileInfo(full, info.Size(), false))
	}
	return files, nil
}

// Move relocates src to relTarget under the library root. Rename first;
// when that fails (typically a cross-device move) fall back to a verified
// copy and delete the source only after the copy checks out.
func (l *Local) Move(ctx context.Context, src, relTarget string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst, err := l.resolveTarget(relTarget)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", services.Wrap(services.ErrStorage, "storage", "move", "create target directory", err)
	}
	dst, err = deconflict(dst)
	if err != nil {
		return "", err
	}

	if err := os.Rename(src, dst); err == nil {
		l.logger.Debug("renamed into library", logging.String("target", dst))
		return dst, nil
	}

	if err := copyVerified(src, dst); err != nil {
		return "", services.Wrap(services.ErrStorage, "storage", "move", "copy into library", err)
	}
	if err := os.Remove(src); err != nil {
		// The library copy is intact; a stale source is recoverable.
		l.logger.Warn("copied but could not remove source",
			logging.String("source", src), logging.Error(err))
	}
	l.logger.Debug("copied into library", logging.String("target", dst))
	return dst, nil
}

func (l *Local) resolveTarget(relTarget string) (string, error) {
	relTarget = strings.TrimSpace(relTarget)
	if relTarget == "" {
		return "", services.Wrap(services.ErrValidation, "storage", "move", "empty target path", nil)
	}
	dst := filepath.Join(l.root, filepath.FromSlash(relTarget))
	rel, err := filepath.Rel(l.root, dst)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", services.Wrap(services.ErrValidation, "storage", "move",
			"target escapes the library root: "+relTarget, nil)
	}
	return dst, nil
}

// deconflict returns the first non-existing variant of dst, appending a
// numbered suffix before the extension when needed.
func deconflict(dst string) (string, error) {
	if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
		return dst, nil
	}
	ext := filepath.Ext(dst)
	stem := strings.TrimSuffix(dst, ext)
	for i := 1; i <= 100; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", services.Wrap(services.ErrStorage, "storage", "move",
		"no collision-free name available for "+dst, nil)
}

// copyVerified copies src to dst and refuses to keep a destination whose
// size or hash disagrees with the source. The destination hash comes from a
// fresh read of the written file, not the in-memory stream, so it checks
// what actually reached disk.
func copyVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}
	dstSum, err := hashFile(dst)
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("hash destination: %w", err)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstSum) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return nil, err
	}
	return hasher.Sum(nil), nil
}
