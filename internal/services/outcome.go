package services

// VoteOutcome is the closed set of business results a vote-engine call can
// produce. Expected, recoverable states travel here; only validation and
// infrastructure problems are returned as errors. Callers switch on the
// concrete type instead of probing optional fields.
type VoteOutcome interface {
	voteOutcome()
}

// Granted means the action was applied; RewardCount is the record's value
// after this call (1 for the free daily action, 2..5 for share rewards).
type Granted struct {
	RewardCount int
}

// NeedsShare means today's free action in this direction is spent; the client
// may offer the share-unlock flow. No aggregate was touched.
type NeedsShare struct {
	RewardCount int
}

// NotYetVoted means a reward was requested before the base daily action.
type NotYetVoted struct{}

// RewardLimitReached is terminal for the day in this direction.
type RewardLimitReached struct{}

func (Granted) voteOutcome()            {}
func (NeedsShare) voteOutcome()         {}
func (NotYetVoted) voteOutcome()        {}
func (RewardLimitReached) voteOutcome() {}
