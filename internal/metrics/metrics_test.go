package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"mintwatch/internal/domain"
)

func TestSetPhase(t *testing.T) {
	SetPhase("apes", domain.PhaseGracePeriod)
	assert.Equal(t, 1.0, testutil.ToFloat64(CurrentPhase.WithLabelValues("apes", "GracePeriod")))

	SetPhase("apes", domain.PhaseLottery)
	assert.Equal(t, 0.0, testutil.ToFloat64(CurrentPhase.WithLabelValues("apes", "GracePeriod")))
	assert.Equal(t, 1.0, testutil.ToFloat64(CurrentPhase.WithLabelValues("apes", "Lottery")))

	ForgetLaunch("apes")
	assert.Equal(t, 0, testutil.CollectAndCount(CurrentPhase))
}

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(TransitionsTotal.WithLabelValues("Lottery", "WaitForCM"))
	RecordTransition(domain.Transition{From: domain.PhaseLottery, To: domain.PhaseWaitForCM})
	assert.Equal(t, before+1, testutil.ToFloat64(TransitionsTotal.WithLabelValues("Lottery", "WaitForCM")))
}
