package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

func TestTransitionTable(t *testing.T) {
	all := []model.ReservationStatus{model.StatusPending, model.StatusConfirmed, model.StatusRejected, model.StatusCancelled}
	legal := map[[2]model.ReservationStatus]bool{
		{model.StatusPending, model.StatusConfirmed}:   true,
		{model.StatusPending, model.StatusRejected}:    true,
		{model.StatusPending, model.StatusCancelled}:   true,
		{model.StatusConfirmed, model.StatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			want := legal[[2]model.ReservationStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
			err := CheckTransition(from, to)
			if want {
				assert.NoError(t, err)
				continue
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Contains(t, err.Error(), string(from))
			assert.Contains(t, err.Error(), string(to))
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminal(model.StatusRejected))
	assert.True(t, IsTerminal(model.StatusCancelled))
	assert.False(t, IsTerminal(model.StatusPending))
	assert.False(t, IsTerminal(model.StatusConfirmed))
}
