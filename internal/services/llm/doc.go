// Package llm implements the filename-inference collaborator against any
// OpenAI-compatible chat completions endpoint.
//
// The Client asks the model for a structured title/year/season/episode guess
// when the filename grammar alone is ambiguous. Responses are requested as
// JSON objects and decoded tolerantly (code fences and surrounding prose are
// stripped). Throttling and 5xx responses retry with exponential backoff and
// honor Retry-After; exhausted retries surface as classified service errors
// so the recognizer can degrade the file instead of failing the batch.
package llm
