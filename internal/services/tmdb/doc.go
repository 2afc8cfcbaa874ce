// Package tmdb implements the metadata-search collaborator against The Movie
// Database API.
//
// The Client satisfies the Searcher interface the recognizer consumes:
// ranked candidate search by (query, year, media type) and authoritative
// details lookups by TMDB ID for manual re-identification. Rate limiting
// (HTTP 429) surfaces as services.ErrRateLimited so callers can retry with
// backoff; other failures surface as services.ErrExternalTool and degrade
// the affected file rather than the batch.
package tmdb
