package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintwatch/internal/domain"
)

var base = time.Date(2021, 11, 1, 12, 0, 0, 0, time.UTC)

const tick = time.Millisecond

func at(d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

// fullLaunch has phase one from base to +1h, phase two to +2h.
func fullLaunch() *domain.FairLaunchState {
	return &domain.FairLaunchState{
		PhaseOneStart:   at(0),
		PhaseOneEnd:     at(time.Hour),
		PhaseTwoEnd:     at(2 * time.Hour),
		LotteryDuration: 30 * time.Minute,
	}
}

func TestClassify_Lifecycle(t *testing.T) {
	cm := &domain.CandyMachineState{GoLiveDate: at(4 * time.Hour)}

	tests := []struct {
		name     string
		now      time.Time
		finished bool
		want     domain.Phase
	}{
		{"before phase one", base.Add(-time.Minute), false, domain.PhaseAnticipation},
		{"phase one", base.Add(30 * time.Minute), false, domain.PhaseSetPrice},
		{"phase two", base.Add(90 * time.Minute), false, domain.PhaseGracePeriod},
		{"lottery", base.Add(3 * time.Hour), false, domain.PhaseLottery},
		{"raffle done, waiting for mint", base.Add(3 * time.Hour), true, domain.PhaseWaitForCM},
		{"minting", base.Add(5 * time.Hour), true, domain.Phase4},
		{"minting blocked by unfinished raffle", base.Add(5 * time.Hour), false, domain.PhaseLottery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := fullLaunch()
			fl.PhaseThreeStarted = tt.finished
			assert.Equal(t, tt.want, Classify(fl, cm, tt.now))
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	fl := fullLaunch()

	t.Run("phase one start is strict", func(t *testing.T) {
		assert.Equal(t, domain.PhaseAnticipation, Classify(fl, nil, base.Add(-tick)))
		assert.NotEqual(t, domain.PhaseAnticipation, Classify(fl, nil, base))
		assert.Equal(t, domain.PhaseSetPrice, Classify(fl, nil, base))
	})

	t.Run("phase one end is inclusive", func(t *testing.T) {
		assert.Equal(t, domain.PhaseSetPrice, Classify(fl, nil, base.Add(time.Hour)))
		assert.Equal(t, domain.PhaseGracePeriod, Classify(fl, nil, base.Add(time.Hour+tick)))
	})

	t.Run("phase two end is inclusive", func(t *testing.T) {
		assert.Equal(t, domain.PhaseGracePeriod, Classify(fl, nil, base.Add(2*time.Hour)))
		assert.Equal(t, domain.PhaseLottery, Classify(fl, nil, base.Add(2*time.Hour+tick)))
	})

	t.Run("go live is strict", func(t *testing.T) {
		cm := &domain.CandyMachineState{GoLiveDate: at(0)}
		assert.Equal(t, domain.PhaseUnknown, Classify(nil, cm, base))
		assert.Equal(t, domain.Phase4, Classify(nil, cm, base.Add(tick)))
	})
}

func TestClassify_LotteryGating(t *testing.T) {
	fl := &domain.FairLaunchState{PhaseTwoEnd: at(0)}
	now := base.Add(tick)

	assert.Equal(t, domain.PhaseLottery, Classify(fl, nil, now))

	fl.PhaseThreeStarted = true
	assert.Equal(t, domain.PhaseRaffleFinished, Classify(fl, nil, now))

	cm := &domain.CandyMachineState{GoLiveDate: at(-time.Hour)}
	assert.Equal(t, domain.Phase4, Classify(fl, cm, now))
}

func TestClassify_RaffleFinishedVersusWaitForCM(t *testing.T) {
	fl := &domain.FairLaunchState{PhaseThreeStarted: true}

	assert.Equal(t, domain.PhaseRaffleFinished, Classify(fl, nil, base))
	assert.Equal(t, domain.PhaseWaitForCM, Classify(fl, &domain.CandyMachineState{}, base))
	assert.Equal(t, domain.PhaseWaitForCM, Classify(fl, &domain.CandyMachineState{GoLiveDate: at(time.Hour)}, base))
}

func TestClassify_AbsentFairLaunch(t *testing.T) {
	assert.Equal(t, domain.PhaseUnknown, Classify(nil, nil, base))
	assert.Equal(t, domain.PhaseUnknown, Classify(nil, &domain.CandyMachineState{}, base))
	assert.Equal(t, domain.PhaseUnknown, Classify(nil, &domain.CandyMachineState{GoLiveDate: at(time.Hour)}, base))
	assert.Equal(t, domain.Phase4, Classify(nil, &domain.CandyMachineState{GoLiveDate: at(-time.Hour)}, base))
}

func TestClassify_EmptyFairLaunch(t *testing.T) {
	// A present account with nothing set never blocks and never unlocks Phase4.
	fl := &domain.FairLaunchState{}
	cm := &domain.CandyMachineState{GoLiveDate: at(-time.Hour)}

	assert.Equal(t, domain.PhaseUnknown, Classify(fl, nil, base))
	assert.Equal(t, domain.PhaseUnknown, Classify(fl, cm, base))
}

func TestClassify_PhaseThreeWithoutPhaseTwoEnd(t *testing.T) {
	fl := &domain.FairLaunchState{PhaseThreeStarted: true}
	cm := &domain.CandyMachineState{GoLiveDate: at(-time.Minute)}

	assert.Equal(t, domain.Phase4, Classify(fl, cm, base))
}

func TestClassify_MalformedOrderingFollowsCascade(t *testing.T) {
	// phaseOneEnd set without phaseOneStart; windows overlap.
	fl := &domain.FairLaunchState{
		PhaseOneEnd: at(time.Hour),
		PhaseTwoEnd: at(-time.Hour),
	}

	assert.Equal(t, domain.PhaseSetPrice, Classify(fl, nil, base))
	assert.Equal(t, domain.PhaseLottery, Classify(fl, nil, base.Add(2*time.Hour)))
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	stamps := []*time.Time{nil, at(-time.Hour), at(0), at(time.Hour)}
	nows := []time.Time{base.Add(-2 * time.Hour), base.Add(-tick), base, base.Add(tick), base.Add(2 * time.Hour)}
	valid := make(map[domain.Phase]bool)
	for _, p := range domain.Phases() {
		valid[p] = true
	}

	for _, start := range stamps {
		for _, oneEnd := range stamps {
			for _, twoEnd := range stamps {
				for _, finished := range []bool{false, true} {
					for _, withFL := range []bool{false, true} {
						for _, live := range stamps {
							for _, withCM := range []bool{false, true} {
								var fl *domain.FairLaunchState
								if withFL {
									fl = &domain.FairLaunchState{
										PhaseOneStart:     start,
										PhaseOneEnd:       oneEnd,
										PhaseTwoEnd:       twoEnd,
										PhaseThreeStarted: finished,
									}
								}
								var cm *domain.CandyMachineState
								if withCM {
									cm = &domain.CandyMachineState{GoLiveDate: live}
								}
								for _, now := range nows {
									got := Classify(fl, cm, now)
									require.True(t, valid[got], "invalid phase %d", got)
									require.Equal(t, got, Classify(fl, cm, now))
								}
							}
						}
					}
				}
			}
		}
	}
}

func TestClassifySnapshot(t *testing.T) {
	assert.Equal(t, domain.PhaseUnknown, ClassifySnapshot(nil, base))

	s := &domain.Snapshot{Launch: "apes", FairLaunch: fullLaunch()}
	assert.Equal(t, domain.PhaseSetPrice, ClassifySnapshot(s, base.Add(time.Minute)))
}
