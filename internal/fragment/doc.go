// Package fragment implements the bidirectional mapping between the
// application state and the URL fragment (the part of the location after
// the '#'). The encoding keeps '/', ',' and ':' readable, folds the
// discrete zoom/lat/lon keys into a composite `map=zoom/lat/lon`
// parameter, and carries an optional leading path segment.
//
// Per-parameter formatters can be registered on a Codec to override how
// individual keys are rendered and re-parsed.
package fragment
