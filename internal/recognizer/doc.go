// Package recognizer identifies media files from their names.
//
// A recognition pass runs in three stages per file: the filename grammar
// extracts a title, year, episode markers, and technical tags; when the
// grammar alone is too weak the optional LLM collaborator proposes a title;
// the metadata search service then ranks candidates and the best one is
// scored against the parse and classified as high, medium, or low
// confidence. Batches run on a bounded worker pool and always produce
// exactly one result per input file, in input order, even under
// cancellation or per-file failure.
package recognizer
