package processor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/processor"
)

func TestRouteDecision(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       model.RoutingDecision
	}{
		{"above auto-approve", 95, model.RoutingAutoApprove},
		{"exactly auto-approve", 70, model.RoutingAutoApprove},
		{"between thresholds", 50, model.RoutingSecondPass},
		{"exactly skip-parse", 40, model.RoutingSecondPass},
		{"below skip-parse", 10, model.RoutingNoParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := processor.RouteDecision(tt.confidence, 70, 40)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteDecision_Monotone(t *testing.T) {
	low := processor.RouteDecision(20, 70, 40)
	mid := processor.RouteDecision(50, 70, 40)
	high := processor.RouteDecision(90, 70, 40)

	assert.True(t, mid.AtLeastAsAutonomousAs(low))
	assert.True(t, high.AtLeastAsAutonomousAs(mid))
}
