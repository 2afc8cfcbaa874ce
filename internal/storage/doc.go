// Package storage abstracts the backends a library can live on. The local
// adapter is the only built-in; remote backends plug in behind the same
// Adapter interface.
package storage
