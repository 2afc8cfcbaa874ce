package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reelsort/internal/media"
	"reelsort/internal/storage"
)

// collectFiles expands command arguments into the video files to process.
// Directory arguments are scanned recursively through the storage adapter;
// explicit file arguments are taken as-is so odd extensions can still be
// forced through.
func collectFiles(ctx context.Context, adapter storage.Adapter, args []string) ([]media.FileInfo, error) {
	var files []media.FileInfo
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, media.NewFileInfo(abs, info.Size(), false))
			continue
		}

		found, err := browseTree(ctx, adapter, abs)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", arg, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no video files found in the given paths")
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func browseTree(ctx context.Context, adapter storage.Adapter, dir string) ([]media.FileInfo, error) {
	entries, err := adapter.Browse(ctx, dir)
	if err != nil {
		return nil, err
	}
	var files []media.FileInfo
	for _, entry := range entries {
		if entry.IsDir {
			sub, err := browseTree(ctx, adapter, entry.Path)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		files = append(files, entry)
	}
	return files, nil
}

func parseMediaTypeFlag(value string) (media.Type, error) {
	if strings.TrimSpace(value) == "" {
		return media.TypeUnknown, nil
	}
	parsed := media.ParseType(value)
	if parsed == media.TypeUnknown {
		return "", fmt.Errorf("unknown media type %q (use movie or tv)", value)
	}
	return parsed, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
