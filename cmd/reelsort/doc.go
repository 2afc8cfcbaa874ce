// Command reelsort recognizes media files and sorts them into a library.
//
// The CLI wraps three operations: recognize (identify files and preview the
// result), transfer (match recognized files against transfer rules and move
// them, with a --dry-run preview), and rule management for the routing
// rules themselves.
package main
