// Package voteflow drives the client side of the daily-vote flow: one state
// machine per visible entry, transitioned only through named events. The
// server is the source of truth; everything here is display state that gets
// reconciled from server answers, never the other way around.
package voteflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Direction mirrors the server's vote polarity.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MaxRewards is the server's per-day share-reward cap. Kept here so the UI
// can short-circuit the share prompt without a round trip.
const MaxRewards = 5

// State of the controller. Idle, Voted, RewardGranted, ShareAbandoned and
// Failed all accept a new Tap; the share states only advance through the
// share events.
type State int

const (
	Idle State = iota
	Voting
	Voted
	NeedsShareUnlock
	PromptingShare
	SharePending
	RewardGranted
	ShareAbandoned
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Voting:
		return "voting"
	case Voted:
		return "voted"
	case NeedsShareUnlock:
		return "needs-share-unlock"
	case PromptingShare:
		return "prompting-share"
	case SharePending:
		return "share-pending"
	case RewardGranted:
		return "reward-granted"
	case ShareAbandoned:
		return "share-abandoned"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrBusy        = errors.New("vote request already in flight")
	ErrBadState    = errors.New("event not valid in current state")
	ErrRewardLimit = errors.New("daily reward limit reached")
)

// Result is the server's answer to a vote or redeem call.
type Result struct {
	Granted      bool
	NeedShare    bool
	LimitReached bool
	RewardCount  int
}

// API is the server boundary: the two engine calls the controller makes.
type API interface {
	CastVote(ctx context.Context, entryID string, direction Direction) (Result, error)
	RedeemShareReward(ctx context.Context, entryID string, direction Direction) (Result, error)
}

// Refresher refreshes the cached ranking board after a granted action. Called
// on its own goroutine; implementations own their timeout.
type Refresher interface {
	RefreshRanking(ctx context.Context)
}

// Controller is the per-entry, per-session state machine. Safe for use from
// concurrent UI callbacks.
type Controller struct {
	api       API
	refresher Refresher

	mu          sync.Mutex
	state       State
	entryID     string
	direction   Direction
	rewardCount int
	votes       int

	// pendingShareReward arms exactly one redemption per prompt cycle. It is
	// cleared before the redeem call goes out, so a duplicate completion
	// signal finds it already spent.
	pendingShareReward bool
}

func NewController(api API, refresher Refresher, entryID string, displayedVotes int) *Controller {
	return &Controller{
		api:       api,
		refresher: refresher,
		state:     Idle,
		entryID:   entryID,
		votes:     displayedVotes,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RewardCount is the last server-reported reward count.
func (c *Controller) RewardCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rewardCount
}

// DisplayedVotes is the optimistic vote total shown next to the entry.
func (c *Controller) DisplayedVotes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.votes
}

// SyncVotes overwrites the displayed total with a server-fetched value.
func (c *Controller) SyncVotes(serverVotes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.votes = serverVotes
}

// Tap is the user pressing the vote control. Blocks for the single round
// trip; the UI should disable the control while it runs.
func (c *Controller) Tap(ctx context.Context, direction Direction) error {
	c.mu.Lock()
	switch c.state {
	case Idle, Voted, RewardGranted, ShareAbandoned, Failed:
	case Voting:
		c.mu.Unlock()
		return ErrBusy
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: tap in %s", ErrBadState, c.state)
	}
	c.state = Voting
	c.direction = direction
	c.mu.Unlock()

	result, err := c.api.CastVote(ctx, c.entryID, direction)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Failed
		return err
	}

	switch {
	case result.Granted:
		c.state = Voted
		c.rewardCount = result.RewardCount
		c.applyOptimisticDelta(direction)
		c.refreshRankingAsync()
	case result.NeedShare:
		c.state = NeedsShareUnlock
		c.rewardCount = result.RewardCount
	default:
		c.state = Failed
		return fmt.Errorf("unexpected vote result: %+v", result)
	}
	return nil
}

// PromptShare moves to the share prompt. At the cap it refuses: the UI shows
// the terminal limit message instead of a useless share sheet.
func (c *Controller) PromptShare() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != NeedsShareUnlock {
		return fmt.Errorf("%w: prompt-share in %s", ErrBadState, c.state)
	}
	if c.rewardCount >= MaxRewards {
		return ErrRewardLimit
	}
	c.state = PromptingShare
	return nil
}

// ConfirmShare is the user opening the native share surface. Whether they
// complete it is unknown until the completion signal fires.
func (c *Controller) ConfirmShare() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != PromptingShare {
		return fmt.Errorf("%w: confirm-share in %s", ErrBadState, c.state)
	}
	c.state = SharePending
	c.pendingShareReward = true
	return nil
}

// CancelShare abandons the prompt cycle without a redemption.
func (c *Controller) CancelShare() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != PromptingShare && c.state != SharePending {
		return fmt.Errorf("%w: cancel-share in %s", ErrBadState, c.state)
	}
	c.state = ShareAbandoned
	c.pendingShareReward = false
	return nil
}

// ShareCompleted is the platform's outbound-share completion signal. Redeems
// at most once per prompt cycle; a duplicate signal is a no-op.
func (c *Controller) ShareCompleted(ctx context.Context) error {
	c.mu.Lock()
	if c.state != SharePending || !c.pendingShareReward {
		c.mu.Unlock()
		return nil
	}
	c.pendingShareReward = false
	direction := c.direction
	c.mu.Unlock()

	result, err := c.api.RedeemShareReward(ctx, c.entryID, direction)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Failed
		return err
	}

	switch {
	case result.Granted:
		c.state = RewardGranted
		// Reconcile from the server's count, never by local increment: a
		// concurrent session may already have advanced it.
		c.rewardCount = result.RewardCount
		c.applyOptimisticDelta(direction)
		c.refreshRankingAsync()
		return nil
	case result.LimitReached:
		c.state = ShareAbandoned
		c.rewardCount = MaxRewards
		return ErrRewardLimit
	default:
		c.state = Failed
		return fmt.Errorf("unexpected redeem result: %+v", result)
	}
}

func (c *Controller) applyOptimisticDelta(direction Direction) {
	if direction == Down {
		c.votes--
		return
	}
	c.votes++
}

// refreshRankingAsync kicks the board refresh off the interaction path.
// Caller holds the lock; the goroutine takes none.
func (c *Controller) refreshRankingAsync() {
	if c.refresher == nil {
		return
	}
	go c.refresher.RefreshRanking(context.Background())
}
