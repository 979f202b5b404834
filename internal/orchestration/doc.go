// Package orchestration runs the selected estimators, streams their progress
// to a ProgressReporter and turns the outcomes into a comparison report and
// an exit code. Presentation stays behind the ProgressReporter and
// ResultPresenter interfaces.
package orchestration
