// Package model implements the persistent document tree edited by the
// markup editor.
//
// A document is a tree of immutable Node values. Every node has a NodeType
// drawn from a fixed Schema, an attribute map, an ordered child Fragment and,
// for inline nodes, a set of Marks. Edits never mutate a node; they build a
// new tree that shares every untouched subtree with the previous version, so
// older documents stay valid for as long as something (usually the undo
// history) references them.
//
// # Positions
//
// Positions are integer offsets into a document's token stream. Entering or
// leaving a non-leaf node counts as one token, every character of text counts
// as one token and every leaf node (image, hard break) counts as one token:
//
//	doc( p( "ab" ) p( ) )
//	    0  1 2  3 4  5  6
//
// A position is only meaningful for the document it was computed against.
// Resolve turns a position into a ResolvedPos that exposes the ancestor
// chain, child indices and offsets at every depth.
//
// # Content rules
//
// Each NodeType carries a ContentSpec listing the node types and groups it may
// contain and the minimum number of children. Replace validates every node it
// rebuilds against these rules and fails with ErrInvalidContent rather than
// producing a tree the schema does not allow.
//
// # HTML
//
// ParseHTML and Serialize convert between documents and HTML fragments using
// golang.org/x/net/html. Host-injected scaffolding (editable region divs,
// buttons, image resize handles) is recognised and either stripped or mapped
// onto schema nodes depending on ParseOptions.
package model
