// Package pipeline sequences the phases of a crawl run: the frontier
// loop, combined-artifact generation, and history persistence. Each phase
// is a Step that folds its results into a shared report, giving the
// phases consistent logging, error handling, and cancellation.
package pipeline
