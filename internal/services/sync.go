package services

import (
	"context"
	"time"
)

// Data-source status vocabulary reflected by SyncStatus and consumed by the
// upload workflow's polling loop.
const (
	IngestStatusCreating  = "CREATING"
	IngestStatusUpdating  = "UPDATING"
	IngestStatusAvailable = "AVAILABLE"
	IngestStatusFailed    = "FAILED"
)

// Sleeper lets tests drive the polling loop without wall-clock sleeps.
type Sleeper interface {
	Sleep(d time.Duration)
}

type SystemSleeper struct{}

func (SystemSleeper) Sleep(d time.Duration) { time.Sleep(d) }

type PollOutcome int

const (
	PollAvailable PollOutcome = iota
	PollFailed
	PollTimeout
)

type PollConfig struct {
	MaxAttempts int
	// SettleDelay runs after every probe, RetryDelay additionally after a
	// non-terminal status.
	SettleDelay time.Duration
	RetryDelay  time.Duration
	Sleeper     Sleeper
}

type PollResult struct {
	Outcome    PollOutcome
	LastStatus string
	Attempts   int
}

// PollStatus probes fetch until a terminal status (AVAILABLE or FAILED) or
// the attempt budget runs out. Statuses it does not recognize count as still
// in progress. There is no cancellation: once started, the loop runs to a
// terminal status or exhaustion.
func PollStatus(ctx context.Context, cfg PollConfig, fetch func(context.Context) string) PollResult {
	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = SystemSleeper{}
	}

	attempt := 0
	lastStatus := ""

	for attempt < cfg.MaxAttempts {
		status := fetch(ctx)
		lastStatus = status
		sleeper.Sleep(cfg.SettleDelay)

		switch status {
		case IngestStatusAvailable:
			return PollResult{Outcome: PollAvailable, LastStatus: lastStatus, Attempts: attempt + 1}
		case IngestStatusFailed:
			return PollResult{Outcome: PollFailed, LastStatus: lastStatus, Attempts: attempt + 1}
		default:
			sleeper.Sleep(cfg.RetryDelay)
			attempt++
		}
	}

	return PollResult{Outcome: PollTimeout, LastStatus: lastStatus, Attempts: attempt}
}
