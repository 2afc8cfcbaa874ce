// Package services holds cross-cutting helpers shared by collaborator
// clients and pipeline components: sentinel error markers with a Wrap helper
// for classification, and context annotations used by structured logging.
//
// Subpackages implement the external collaborator clients (llm, tmdb).
package services
