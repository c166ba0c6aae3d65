package ingesting

// State tracks a discovered file through the ingestion pipeline. Rejected
// is terminal and reachable from any state.
type State string

const (
	StateDiscovered    State = "discovered"
	StateExtracted     State = "extracted"
	StateValidated     State = "validated"
	StateFingerprinted State = "fingerprinted"
	StateCanonicalized State = "canonicalized"
	StateMoved         State = "moved"
	StateCommitted     State = "committed"
	StateRejected      State = "rejected"
)
