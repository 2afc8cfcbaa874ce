// Package rules stores and evaluates transfer rules.
//
// A transfer rule pairs a condition set with a naming template. Rules are
// evaluated in ascending priority order (rule ID breaks ties) against the
// fused recognition metadata of each file; the first rule whose media and
// storage filters and every condition accept the item wins. Unmatched is a
// normal outcome, not an error. Evaluation always runs against an immutable
// Snapshot so a batch sees one consistent rule set. Persistence is SQLite
// behind a file lock.
package rules
