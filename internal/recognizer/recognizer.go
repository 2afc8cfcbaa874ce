package recognizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelsort/internal/logging"
	"reelsort/internal/media"
	"reelsort/internal/services"
	"reelsort/internal/services/llm"
	"reelsort/internal/services/tmdb"
)

const (
	defaultConcurrency    = 4
	defaultRetryAttempts  = 4
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 8 * time.Second
)

// Recognizer turns batches of observed files into per-file recognition
// results by combining the filename grammar, the optional LLM collaborator,
// and the metadata search service.
type Recognizer struct {
	searcher tmdb.Searcher
	inferrer llm.Inferrer
	logger   *slog.Logger

	concurrency   int
	retryAttempts int
	retryBase     time.Duration
	retryMax      time.Duration
	sleep         func(context.Context, time.Duration) error
}

// Option customizes a Recognizer.
type Option func(*Recognizer)

// WithInferrer attaches the LLM collaborator. Without it ambiguous filenames
// go straight to search with whatever the grammar produced.
func WithInferrer(inferrer llm.Inferrer) Option {
	return func(r *Recognizer) { r.inferrer = inferrer }
}

// WithConcurrency bounds how many files are recognized at once.
func WithConcurrency(n int) Option {
	return func(r *Recognizer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRetryPolicy sets the retry budget applied to rate-limited searches.
func WithRetryPolicy(attempts int, base, max time.Duration) Option {
	return func(r *Recognizer) {
		if attempts > 0 {
			r.retryAttempts = attempts
		}
		if base > 0 {
			r.retryBase = base
		}
		if max > 0 {
			r.retryMax = max
		}
	}
}

// WithSleeper replaces the delay function used between retries. Tests use
// this to avoid real waits.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(r *Recognizer) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// New builds a Recognizer around the given search service.
func New(searcher tmdb.Searcher, logger *slog.Logger, opts ...Option) (*Recognizer, error) {
	if searcher == nil {
		return nil, errors.New("recognizer requires a searcher")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Recognizer{
		searcher:      searcher,
		logger:        logger,
		concurrency:   defaultConcurrency,
		retryAttempts: defaultRetryAttempts,
		retryBase:     defaultRetryBaseDelay,
		retryMax:      defaultRetryMaxDelay,
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Recognize processes the batch and returns exactly one result per input
// file, in input order. Per-file failures degrade that file to low
// confidence with a reason; only a cancelled context makes the batch itself
// incomplete, and even then every file still gets a result.
func (r *Recognizer) Recognize(ctx context.Context, files []media.FileInfo, hint media.Type) ([]media.RecognitionResult, error) {
	results := make([]media.RecognitionResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	batchID := uuid.NewString()
	ctx = services.WithBatchID(ctx, batchID)
	log := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "recognizer"))
	log.Info("recognition batch started", logging.Int("files", len(files)), logging.Int("concurrency", r.concurrency))

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	cancelled := false
	for i := range files {
		if err := ctx.Err(); err != nil {
			cancelled = true
			results[i] = media.RecognitionResult{
				File:          files[i],
				Confidence:    media.ConfidenceLow,
				FailureReason: "cancelled before recognition",
			}
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = r.recognizeOne(ctx, files[idx], hint)
		}(i)
	}
	wg.Wait()
	if ctx.Err() != nil {
		// Cancellation after dispatch still leaves in-flight lookups
		// degraded, so the batch is incomplete either way.
		cancelled = true
	}

	recognized := 0
	for _, res := range results {
		if res.Recognized() {
			recognized++
		}
	}
	log.Info("recognition batch finished",
		logging.Int("recognized", recognized),
		logging.Int("failed", len(files)-recognized))

	if cancelled {
		return results, services.Wrap(services.ErrTransient, "recognizer", "recognize", "batch cancelled before completion", ctx.Err())
	}
	return results, nil
}

func (r *Recognizer) recognizeOne(ctx context.Context, file media.FileInfo, hint media.Type) media.RecognitionResult {
	ctx = services.WithFile(ctx, file.Name)
	log := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "recognizer"))

	parsed := Parse(file.Name)
	mediaType := hint
	if mediaType == media.TypeUnknown || mediaType == "" {
		if parsed.HasEpisode() || parsed.Season > 0 {
			mediaType = media.TypeTV
		} else {
			mediaType = media.TypeMovie
		}
	}

	guess, inferErr := r.consultInferrer(ctx, log, file, parsed, mediaType)
	query, year := searchTerms(file, parsed, guess)
	if query == "" {
		return failResult(file, "no usable title could be extracted")
	}

	candidates, err := r.searchWithRetry(ctx, query, year, mediaType)
	if err == nil && len(candidates) == 0 && year != 0 {
		// A wrong or off-by-release-date year hides valid matches.
		candidates, err = r.searchWithRetry(ctx, query, 0, mediaType)
	}
	if err != nil {
		log.Warn("search failed", logging.Error(err))
		return failResult(file, fmt.Sprintf("search failed: %v", err))
	}

	best, score := selectBestCandidate(parsed, candidates)
	if best == nil {
		return failResult(file, "no candidates returned for query "+query)
	}

	confidence := Classify(score)
	log.Debug("candidate selected",
		logging.String("title", best.Title),
		logging.Int("tmdb_id", int(best.TMDBID)),
		logging.String("confidence", string(confidence)))

	result := media.RecognitionResult{
		File:       file,
		Media:      fuse(parsed, guess, best, mediaType),
		Confidence: confidence,
	}
	if inferErr != nil {
		// The identification came from the parse alone, so it cannot be
		// trusted past manual review.
		result.Confidence = media.ConfidenceLow
		result.FailureReason = fmt.Sprintf("llm inference failed: %v", inferErr)
	}
	return result
}

// consultInferrer asks the LLM only when the grammar alone is too weak to
// search with. On inference failure recognition continues on the parsed
// name, but the returned error caps that file at low confidence.
func (r *Recognizer) consultInferrer(ctx context.Context, log *slog.Logger, file media.FileInfo, parsed media.ParsedName, mediaType media.Type) (*llm.Guess, error) {
	if r.inferrer == nil || !Ambiguous(parsed, mediaType) {
		return nil, nil
	}
	guess, err := r.inferrer.Infer(ctx, file.Name, mediaType)
	if err != nil {
		log.Warn("llm inference failed, falling back to parsed name", logging.Error(err))
		return nil, err
	}
	return guess, nil
}

func (r *Recognizer) searchWithRetry(ctx context.Context, query string, year int, mediaType media.Type) ([]media.MediaCandidate, error) {
	var lastErr error
	for attempt := 1; attempt <= r.retryAttempts; attempt++ {
		candidates, err := r.searcher.Search(ctx, query, year, mediaType)
		if err == nil {
			return candidates, nil
		}
		lastErr = err
		if !services.Retryable(err) || attempt == r.retryAttempts {
			break
		}
		if sleepErr := r.sleep(ctx, r.backoffDelay(attempt)); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, lastErr
}

func (r *Recognizer) backoffDelay(attempt int) time.Duration {
	delay := r.retryBase << (attempt - 1)
	if delay > r.retryMax {
		delay = r.retryMax
	}
	return delay
}

// ReIdentify replaces a result's media info from a manual correction, either
// an explicit TMDB ID or a fresh search term. The returned result always
// carries UserOverride, and a successful ID lookup is high confidence.
func (r *Recognizer) ReIdentify(ctx context.Context, file media.FileInfo, tmdbID int64, searchTerm string, mediaType media.Type) (media.RecognitionResult, error) {
	ctx = services.WithFile(ctx, file.Name)
	parsed := Parse(file.Name)
	if mediaType == media.TypeUnknown || mediaType == "" {
		if parsed.HasEpisode() || parsed.Season > 0 {
			mediaType = media.TypeTV
		} else {
			mediaType = media.TypeMovie
		}
	}

	if tmdbID > 0 {
		candidate, err := r.searcher.Details(ctx, tmdbID, mediaType)
		if err != nil {
			return media.RecognitionResult{}, services.Wrap(services.ErrExternalTool, "recognizer", "reidentify", "details lookup failed", err)
		}
		result := media.RecognitionResult{
			File:         file,
			Media:        fuse(parsed, nil, candidate, mediaType),
			Confidence:   media.ConfidenceHigh,
			UserOverride: true,
		}
		return result, nil
	}

	searchTerm = strings.TrimSpace(searchTerm)
	if searchTerm == "" {
		return media.RecognitionResult{}, services.Wrap(services.ErrValidation, "recognizer", "reidentify", "tmdb id or search term required", nil)
	}
	candidates, err := r.searchWithRetry(ctx, searchTerm, 0, mediaType)
	if err != nil {
		return media.RecognitionResult{}, services.Wrap(services.ErrExternalTool, "recognizer", "reidentify", "search failed", err)
	}
	best, score := selectBestCandidate(media.ParsedName{Title: searchTerm}, candidates)
	if best == nil {
		result := media.RecognitionResult{
			File:          file,
			Confidence:    media.ConfidenceLow,
			FailureReason: "no candidates for search term " + searchTerm,
			UserOverride:  true,
		}
		return result, nil
	}
	result := media.RecognitionResult{
		File:         file,
		Media:        fuse(parsed, nil, best, mediaType),
		Confidence:   Classify(score),
		UserOverride: true,
	}
	return result, nil
}

// searchTerms decides what to send to search: the LLM guess wins when
// present, then the parsed title, then a cleaned form of the raw filename.
func searchTerms(file media.FileInfo, parsed media.ParsedName, guess *llm.Guess) (string, int) {
	if guess != nil && strings.TrimSpace(guess.Title) != "" {
		year := guess.Year
		if year == 0 {
			year = parsed.Year
		}
		return strings.TrimSpace(guess.Title), year
	}
	if strings.TrimSpace(parsed.Title) != "" {
		return parsed.Title, parsed.Year
	}
	return CleanQuery(file.Name), parsed.Year
}

// fuse merges the chosen candidate with whatever the parse and the guess
// produced. Candidate metadata wins for identity; the parse wins for
// season/episode and technical tags.
func fuse(parsed media.ParsedName, guess *llm.Guess, candidate *media.MediaCandidate, mediaType media.Type) *media.MediaInfo {
	info := &media.MediaInfo{
		MediaType:     candidate.MediaType,
		Title:         candidate.Title,
		OriginalTitle: candidate.OriginalTitle,
		Year:          candidate.Year,
		TMDBID:        candidate.TMDBID,

		Season:     parsed.Season,
		Episode:    parsed.Episode,
		EndEpisode: parsed.EndEpisode,

		Quality:      parsed.Quality,
		Source:       parsed.Source,
		Codec:        parsed.Codec,
		Audio:        parsed.Audio,
		ReleaseGroup: parsed.ReleaseGroup,
		Version:      parsed.Version,

		Candidate: candidate,
	}
	if info.MediaType == "" {
		info.MediaType = mediaType
	}
	if guess != nil {
		if info.Season == 0 && guess.Season > 0 {
			info.Season = guess.Season
		}
		if info.Episode == 0 && guess.Episode > 0 {
			info.Episode = guess.Episode
			info.EndEpisode = guess.EndEpisode
		}
	}
	if info.MediaType == media.TypeTV && info.Season == 0 && info.Episode > 0 {
		info.Season = 1
	}
	return info
}

func failResult(file media.FileInfo, reason string) media.RecognitionResult {
	return media.RecognitionResult{
		File:          file,
		Confidence:    media.ConfidenceLow,
		FailureReason: reason,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
