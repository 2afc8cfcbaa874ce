package media

import (
	"path/filepath"
	"strings"
)

// Type identifies the kind of media an item represents.
type Type string

const (
	TypeMovie   Type = "movie"
	TypeTV      Type = "tv"
	TypeUnknown Type = "unknown"
)

// ParseType normalizes a user-supplied media type string.
func ParseType(value string) Type {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie":
		return TypeMovie
	case "tv", "series", "show":
		return TypeTV
	default:
		return TypeUnknown
	}
}

// StorageType identifies which storage backend a file lives on.
type StorageType string

const (
	StorageLocal  StorageType = "local"
	StorageP115   StorageType = "p115"
	StorageWebDAV StorageType = "webdav"
)

// ParseStorageType normalizes a user-supplied storage type string.
func ParseStorageType(value string) (StorageType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "local":
		return StorageLocal, true
	case "p115", "115":
		return StorageP115, true
	case "webdav":
		return StorageWebDAV, true
	default:
		return "", false
	}
}

// Confidence is the discrete classification of recognition certainty.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FileInfo describes a file observed on a storage backend. Path is the
// identity key; two FileInfo values with the same path describe the same file.
type FileInfo struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	IsDir     bool   `json:"is_dir"`
	Extension string `json:"extension,omitempty"`
}

// NewFileInfo builds a FileInfo from a path and size, deriving name and
// extension.
func NewFileInfo(path string, size int64, isDir bool) FileInfo {
	name := filepath.Base(path)
	ext := ""
	if !isDir {
		ext = strings.TrimPrefix(filepath.Ext(name), ".")
	}
	return FileInfo{Path: path, Name: name, Size: size, IsDir: isDir, Extension: ext}
}

// MediaCandidate is a single ranked result from the metadata-search
// collaborator. Immutable once returned.
type MediaCandidate struct {
	TMDBID        int64    `json:"tmdb_id"`
	MediaType     Type     `json:"media_type"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title,omitempty"`
	Year          int      `json:"year,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Countries     []string `json:"countries,omitempty"`
	Language      string   `json:"language,omitempty"`
	Networks      []string `json:"networks,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	Popularity    float64  `json:"popularity,omitempty"`
	VoteAverage   float64  `json:"vote_average,omitempty"`
	VoteCount     int64    `json:"vote_count,omitempty"`
}

// ParsedName holds everything the filename grammar could read out of a file
// name before any collaborator is consulted.
type ParsedName struct {
	Title        string `json:"title,omitempty"`
	Year         int    `json:"year,omitempty"`
	Season       int    `json:"season,omitempty"`
	Episode      int    `json:"episode,omitempty"`
	EndEpisode   int    `json:"end_episode,omitempty"`
	Quality      string `json:"quality,omitempty"`
	Source       string `json:"source,omitempty"`
	Codec        string `json:"codec,omitempty"`
	Audio        string `json:"audio,omitempty"`
	ReleaseGroup string `json:"release_group,omitempty"`
	Version      string `json:"version,omitempty"`
}

// HasEpisode reports whether the parse produced an episode number.
func (p ParsedName) HasEpisode() bool { return p.Episode > 0 }

// MediaInfo is the fused identification for a file: the chosen candidate
// plus season/episode and quality tags merged from the parse and the LLM
// guess.
type MediaInfo struct {
	MediaType     Type   `json:"media_type"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title,omitempty"`
	Year          int    `json:"year,omitempty"`
	TMDBID        int64  `json:"tmdb_id,omitempty"`

	Season     int `json:"season,omitempty"`
	Episode    int `json:"episode,omitempty"`
	EndEpisode int `json:"end_episode,omitempty"`

	Quality      string `json:"quality,omitempty"`
	Source       string `json:"source,omitempty"`
	Codec        string `json:"codec,omitempty"`
	Audio        string `json:"audio,omitempty"`
	ReleaseGroup string `json:"release_group,omitempty"`
	Version      string `json:"version,omitempty"`

	Candidate *MediaCandidate `json:"candidate,omitempty"`
}

// RecognitionResult is the per-file outcome of a recognition pass. Exactly
// one exists per input file; failures carry a reason instead of media info.
type RecognitionResult struct {
	File       FileInfo   `json:"file_info"`
	Media      *MediaInfo `json:"media_info,omitempty"`
	Confidence Confidence `json:"confidence"`

	MatchedRuleID   string `json:"matched_rule_id,omitempty"`
	MatchedRuleName string `json:"matched_rule_name,omitempty"`
	TargetPath      string `json:"target_path,omitempty"`

	FailureReason string `json:"failure_reason,omitempty"`
	UserOverride  bool   `json:"user_override,omitempty"`
}

// Recognized reports whether the pass attached media info to the file.
func (r RecognitionResult) Recognized() bool { return r.Media != nil }
