// Package classifier maps fair-launch and candy-machine account state to the
// mint phase shown to users.
package classifier

import (
	"time"

	"mintwatch/internal/domain"
)

type input struct {
	fairLaunch   *domain.FairLaunchState
	candyMachine *domain.CandyMachineState
	now          time.Time
}

func (in input) phaseOneStart() *time.Time {
	if in.fairLaunch == nil {
		return nil
	}
	return in.fairLaunch.PhaseOneStart
}

func (in input) phaseOneEnd() *time.Time {
	if in.fairLaunch == nil {
		return nil
	}
	return in.fairLaunch.PhaseOneEnd
}

func (in input) phaseTwoEnd() *time.Time {
	if in.fairLaunch == nil {
		return nil
	}
	return in.fairLaunch.PhaseTwoEnd
}

func (in input) phaseThreeStarted() bool {
	return in.fairLaunch != nil && in.fairLaunch.PhaseThreeStarted
}

func (in input) goLiveDate() *time.Time {
	if in.candyMachine == nil {
		return nil
	}
	return in.candyMachine.GoLiveDate
}

type rule struct {
	phase domain.Phase
	match func(in input) bool
}

// Order is priority: near boundaries several guards hold at once and the
// earliest lifecycle stage wins.
var rules = []rule{
	{domain.PhaseAnticipation, func(in input) bool {
		start := in.phaseOneStart()
		return start != nil && in.now.Before(*start)
	}},
	{domain.PhaseSetPrice, func(in input) bool {
		end := in.phaseOneEnd()
		return end != nil && !in.now.After(*end)
	}},
	{domain.PhaseGracePeriod, func(in input) bool {
		end := in.phaseTwoEnd()
		return end != nil && !in.now.After(*end)
	}},
	{domain.PhaseLottery, func(in input) bool {
		end := in.phaseTwoEnd()
		return !in.phaseThreeStarted() && end != nil && in.now.After(*end)
	}},
	{domain.Phase4, func(in input) bool {
		live := in.goLiveDate()
		return (in.fairLaunch == nil || in.phaseThreeStarted()) && live != nil && in.now.After(*live)
	}},
	{domain.PhaseRaffleFinished, func(in input) bool {
		return in.phaseThreeStarted() && in.candyMachine == nil
	}},
	{domain.PhaseWaitForCM, func(in input) bool {
		return in.phaseThreeStarted()
	}},
}

// Classify returns the phase that now falls into. Unset fields fail their
// guard and fall through; anything unmatched is PhaseUnknown. It reads only
// its arguments and is safe for concurrent use.
func Classify(fl *domain.FairLaunchState, cm *domain.CandyMachineState, now time.Time) domain.Phase {
	in := input{fairLaunch: fl, candyMachine: cm, now: now}
	for _, r := range rules {
		if r.match(in) {
			return r.phase
		}
	}
	return domain.PhaseUnknown
}

// ClassifySnapshot classifies a snapshot; a nil snapshot is PhaseUnknown.
func ClassifySnapshot(s *domain.Snapshot, now time.Time) domain.Phase {
	if s == nil {
		return domain.PhaseUnknown
	}
	return Classify(s.FairLaunch, s.CandyMachine, now)
}
