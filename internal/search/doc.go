// Package search finds text in a document and steps through the matches.
//
// A Searcher keeps a match index for one query, case mode and document
// version. The index is rebuilt when any of the three changes, so matches
// never point into a stale document. Matches never cross textblock
// boundaries, and inline leaves such as images count as one position that
// no query text can match.
//
// The searcher moves through three states:
//
//	inactive  no query
//	indexed   query indexed, matches available for highlighting
//	active    indexed, and Enter/Shift-Enter step through matches
//
// SearchFor indexes and takes one step; Deactivate drops back to indexed;
// Cancel forgets the query.
package search
