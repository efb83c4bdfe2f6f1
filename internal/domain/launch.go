package domain

import "time"

// Launch identifies the pair of on-chain accounts watched together.
// Either ID may be empty, in which case that account is treated as absent.
type Launch struct {
	Name           string `json:"name"`
	FairLaunchID   string `json:"fair_launch_id,omitempty"`
	CandyMachineID string `json:"candy_machine_id,omitempty"`
}

type FairLaunchState struct {
	PhaseOneStart     *time.Time    `json:"phase_one_start,omitempty"`
	PhaseOneEnd       *time.Time    `json:"phase_one_end,omitempty"`
	PhaseTwoEnd       *time.Time    `json:"phase_two_end,omitempty"`
	LotteryDuration   time.Duration `json:"lottery_duration"`
	PhaseThreeStarted bool          `json:"phase_three_started"`
}

// LotteryEnd is PhaseTwoEnd plus LotteryDuration, or nil when PhaseTwoEnd is unset.
func (s *FairLaunchState) LotteryEnd() *time.Time {
	if s == nil || s.PhaseTwoEnd == nil {
		return nil
	}
	end := s.PhaseTwoEnd.Add(s.LotteryDuration)
	return &end
}

type CandyMachineState struct {
	GoLiveDate *time.Time `json:"go_live_date,omitempty"`
}

// Snapshot is one read of a launch's accounts.
type Snapshot struct {
	Launch       string             `json:"launch"`
	FairLaunch   *FairLaunchState   `json:"fair_launch,omitempty"`
	CandyMachine *CandyMachineState `json:"candy_machine,omitempty"`
	FetchedAt    time.Time          `json:"fetched_at"`
}
