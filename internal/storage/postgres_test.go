package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintwatch/internal/domain"
)

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func row(id, launch, from, to string, at time.Time) rowFunc {
	return func(dest ...any) error {
		*dest[0].(*string) = id
		*dest[1].(*string) = launch
		*dest[2].(*string) = from
		*dest[3].(*string) = to
		*dest[4].(*time.Time) = at
		return nil
	}
}

func TestScanTransition(t *testing.T) {
	at := time.Date(2021, 11, 1, 14, 0, 1, 0, time.UTC)

	got, err := scanTransition(row("t1", "apes", "GracePeriod", "Lottery", at))
	require.NoError(t, err)
	assert.Equal(t, &domain.Transition{
		ID:     "t1",
		Launch: "apes",
		From:   domain.PhaseGracePeriod,
		To:     domain.PhaseLottery,
		At:     at,
	}, got)
}

func TestScanTransition_BadPhase(t *testing.T) {
	_, err := scanTransition(row("t1", "apes", "GracePeriod", "Phase9", time.Now()))
	assert.ErrorIs(t, err, domain.ErrUnknownPhase)
}

func TestScanTransition_ScanError(t *testing.T) {
	boom := errors.New("boom")
	_, err := scanTransition(rowFunc(func(...any) error { return boom }))
	assert.ErrorIs(t, err, boom)
}
