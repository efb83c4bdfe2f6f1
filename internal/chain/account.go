package chain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"mintwatch/internal/domain"
)

var ErrInvalidAccount = errors.New("invalid account")

// maxLotterySeconds is the longest lottery a time.Duration can hold.
const maxLotterySeconds = math.MaxInt64 / int64(time.Second)

// FairLaunchAccount is the decoded fair-launch account as the indexer
// serves it: unix-second timestamps, null for unset, duration in seconds.
type FairLaunchAccount struct {
	PhaseOneStart     *int64 `json:"phase_one_start"`
	PhaseOneEnd       *int64 `json:"phase_one_end"`
	PhaseTwoEnd       *int64 `json:"phase_two_end"`
	LotteryDuration   int64  `json:"lottery_duration"`
	PhaseThreeStarted bool   `json:"phase_three_started"`
}

func (a FairLaunchAccount) State() (*domain.FairLaunchState, error) {
	if a.LotteryDuration < 0 || a.LotteryDuration > maxLotterySeconds {
		return nil, fmt.Errorf("%w: lottery_duration %d out of range", ErrInvalidAccount, a.LotteryDuration)
	}
	return &domain.FairLaunchState{
		PhaseOneStart:     unixTime(a.PhaseOneStart),
		PhaseOneEnd:       unixTime(a.PhaseOneEnd),
		PhaseTwoEnd:       unixTime(a.PhaseTwoEnd),
		LotteryDuration:   time.Duration(a.LotteryDuration) * time.Second,
		PhaseThreeStarted: a.PhaseThreeStarted,
	}, nil
}

type CandyMachineAccount struct {
	GoLiveDate *int64 `json:"go_live_date"`
}

func (a CandyMachineAccount) State() *domain.CandyMachineState {
	return &domain.CandyMachineState{GoLiveDate: unixTime(a.GoLiveDate)}
}

func unixTime(secs *int64) *time.Time {
	if secs == nil {
		return nil
	}
	t := time.Unix(*secs, 0).UTC()
	return &t
}
