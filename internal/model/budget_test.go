package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

func TestBudget_ReserveUpToCap(t *testing.T) {
	b := model.NewBudget(2, 0)
	assert.True(t, b.Reserve())
	assert.True(t, b.Reserve())
	assert.False(t, b.Reserve())
	assert.Equal(t, 2, b.CallsUsed())
}

func TestBudget_Unlimited(t *testing.T) {
	b := model.NewBudget(0, 0)
	for i := 0; i < 50; i++ {
		assert.True(t, b.Reserve())
	}
}

func TestBudget_ExhaustedByTokens(t *testing.T) {
	b := model.NewBudget(0, 100)
	b.RecordTokens(150)
	assert.True(t, b.Exhausted())
}

func TestBudget_CloseStopsReservations(t *testing.T) {
	b := model.NewBudget(10, 0)
	b.Close()
	assert.False(t, b.Reserve())
}
