// Package naming renders target paths from naming templates.
//
// Templates use brace tokens ({title}, {year}, {season:02d}, {ext});
// numeric tokens accept zero-pad specifiers. Required tokens with no value
// fail the render, optional tokens fold away cleanly, and token values are
// sanitized with full-width replacements so titles keep their punctuation
// without producing unsafe path characters. Rendering is pure and
// deterministic, which is what lets dry-run previews promise the exact
// paths a transfer will produce.
package naming
