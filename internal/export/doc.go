// Package export drives asynchronous quicktime export jobs to completion.
//
// # State Machine
//
// One export run is: submit the render request, poll the resulting chain at
// a fixed interval until it reaches a terminal status, then resolve the
// rendered movie's media object from the chain's output asset.
//
//	submit ──> poll ──┬─ in progress / unknown ──> progress callback, sleep, poll again
//	                  ├─ errored / timed out ────> JobFailedError
//	                  └─ completed ──────────────> resolve output media object
//
// Chains only move forward; the loop never resets a job.
//
// # Failure Taxonomy
//
//   - ErrSubmission: the export request was rejected outright
//   - ErrPoll: transport failure while polling; distinct from job failure,
//     since the render may still be running server-side
//   - JobFailedError: the chain itself errored or timed out
//   - ErrResultUnresolvable: completed, but the output asset or its artwork
//     rendition could not be fetched
//
// # Bounding the Loop
//
// The loop deliberately has no retry cap: an in-progress status reflects
// genuine job state, not failure. Deadlines belong to the caller's context.
// Cooperative abort is available to callers that cannot cancel the context:
// the progress callback returning an error stops the loop on the next poll.
package export
