// Package transfer plans and executes library moves.
//
// Planning matches recognized items against a rule snapshot and renders
// their target paths without touching storage; BuildReport turns a plan
// into a dry-run preview. The Executor re-reads the rules and re-renders
// targets at execution time, moves items one at a time, and reports one
// outcome per item no matter how many of them fail.
package transfer
