package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhase(t *testing.T) {
	for _, p := range Phases() {
		got, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePhase("Phase5")
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestPhase_StringOutOfRange(t *testing.T) {
	assert.Equal(t, "Unknown", Phase(42).String())
	assert.Equal(t, "Unknown", Phase(-1).String())
}

func TestTransition_JSONUsesPhaseNames(t *testing.T) {
	data, err := json.Marshal(Transition{Launch: "apes", From: PhaseGracePeriod, To: PhaseLottery})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"from":"GracePeriod"`)
	assert.Contains(t, string(data), `"to":"Lottery"`)

	var back Transition
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, PhaseLottery, back.To)
}
