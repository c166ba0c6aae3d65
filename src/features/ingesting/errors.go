package ingesting

import "fmt"

// RejectionReason classifies why a staged file was refused.
type RejectionReason string

const (
	ReasonUnreadable      RejectionReason = "unreadable"
	ReasonForbiddenFormat RejectionReason = "forbidden-format"
	ReasonMissingTags     RejectionReason = "missing-tags"
	ReasonExternalCover   RejectionReason = "external-cover"
	ReasonCueRip          RejectionReason = "cue-rip"
	ReasonCollision       RejectionReason = "collision"
)

// Rejection is the terminal failure state of an ingestion attempt. It is
// surfaced to the operator and never crashes ingestion of other files.
type Rejection struct {
	Reason RejectionReason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("rejected: %s", r.Reason)
	}
	return fmt.Sprintf("rejected: %s: %s", r.Reason, r.Detail)
}

// ConsistencyError reports a file and its catalog row going out of sync
// (moved but not committed, or committed but missing). The next
// reconciliation pass repairs it.
type ConsistencyError struct {
	Path   string
	Detail string
	Err    error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation for %s: %s: %v", e.Path, e.Detail, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
