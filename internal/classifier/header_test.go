package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintwatch/internal/domain"
)

func TestHeaderFor(t *testing.T) {
	fl := fullLaunch()
	cm := &domain.CandyMachineState{GoLiveDate: at(4 * time.Hour)}
	display := Display{CollectionName: "Frakt Ape", CollectionDescription: "(incl. Neuralism Pass)"}

	tests := []struct {
		phase  domain.Phase
		name   string
		desc   string
		date   *time.Time
		status string
	}{
		{domain.PhaseAnticipation, "Phase 0", "Anticipation Phase", fl.PhaseOneStart, StatusComplete},
		{domain.PhaseSetPrice, "Phase 1", "Set price phase", fl.PhaseOneEnd, StatusComplete},
		{domain.PhaseGracePeriod, "Phase 2", "Grace period", fl.PhaseTwoEnd, StatusComplete},
		{domain.PhaseLottery, "Phase 3", "Raffle in progress", at(150 * time.Minute), StatusComplete},
		{domain.PhaseRaffleFinished, "Phase 3", "Raffle finished!", fl.PhaseTwoEnd, StatusComplete},
		{domain.PhaseWaitForCM, "Phase 3", "Minting starts in...", cm.GoLiveDate, StatusComplete},
		{domain.Phase4, "Frakt Ape", "(incl. Neuralism Pass)", cm.GoLiveDate, StatusLive},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			h, ok := HeaderFor(tt.phase, fl, cm, display)
			require.True(t, ok)
			assert.Equal(t, tt.name, h.Name)
			assert.Equal(t, tt.desc, h.Description)
			assert.Equal(t, tt.status, h.Status)
			require.NotNil(t, h.Date)
			assert.True(t, tt.date.Equal(*h.Date))
		})
	}
}

func TestHeaderFor_Unknown(t *testing.T) {
	h, ok := HeaderFor(domain.PhaseUnknown, nil, nil, Display{})
	require.True(t, ok)
	assert.Equal(t, "Loading...", h.Name)
	assert.Equal(t, "Please connect your wallet.", h.Description)
	assert.Nil(t, h.Date)

	_, ok = HeaderFor(domain.PhaseUnknown, nil, &domain.CandyMachineState{}, Display{})
	assert.False(t, ok)
}

func TestHeaderFor_MissingAccounts(t *testing.T) {
	h, ok := HeaderFor(domain.PhaseLottery, nil, nil, Display{})
	require.True(t, ok)
	assert.Nil(t, h.Date)

	h, ok = HeaderFor(domain.PhaseWaitForCM, &domain.FairLaunchState{}, nil, Display{})
	require.True(t, ok)
	assert.Nil(t, h.Date)
}
