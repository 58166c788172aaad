// Package pipeline drives the resumable card crawl.
//
// The Orchestrator reads the checkpoint, walks listing pages from the next
// one up to a fixed bound, resolves every discovered card through a single
// renderer session, appends each card to the dataset and advances the
// checkpoint after each page.
//
// Design decision: The sweep is strictly sequential. One browser session
// serves every page, which keeps memory bounded and the checkpoint
// meaningful: everything before it is done, nothing after it was claimed.
// Detail failures are skipped, but listing and persistence failures stop
// the run so the next run resumes at the failed page.
package pipeline
