// Package logging provides a unified logging interface for the π estimator.
// It abstracts the underlying logging implementation (zerolog or the standard
// library logger) so components log consistently.
package logging
