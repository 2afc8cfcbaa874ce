// Package media defines the shared vocabulary for the recognition and
// transfer pipeline: file descriptors, metadata candidates, recognition
// results, and the confidence/media/storage enumerations.
//
// Types here are plain data. A RecognitionResult is created once per
// recognition pass and replaced wholesale on re-identify; nothing mutates it
// field by field. Keep behaviour out of this package so every other component
// can depend on it without cycles.
package media
