// Package feed builds the public FPL snapshot for one manager.
//
// The subpackages split the work:
// - config loads the settings file and environment overrides
// - fetch performs JSON GETs and folds failures into results
// - fpl, optional and odds collect the individual sections
// - snapshot assembles, writes and summarizes the document
// - validate checks a written document
// - metrics records fetch outcomes of a run
package feed
