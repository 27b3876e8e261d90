package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
)

func TestNewSession_Defaults(t *testing.T) {
	s := model.NewSession(uuid.New(), "score.pdf", 1024, "application/pdf", "smart-upload/x/original.pdf", "user-1")
	require.NotNil(t, s)
	assert.Equal(t, model.ParseStatusNotParsed, s.ParseStatus)
	assert.Equal(t, model.SecondPassNotNeeded, s.SecondPassStatus)
	assert.False(t, s.AutoApproved)
}

func TestSession_Validate_ParsedRequiresParts(t *testing.T) {
	s := model.NewSession(uuid.New(), "score.pdf", 1024, "application/pdf", "key", "user-1")
	s.ParseStatus = model.ParseStatusParsed
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsedParts")
}

func TestSession_Validate_AutoApproveRequiresNotNeeded(t *testing.T) {
	s := model.NewSession(uuid.New(), "score.pdf", 1024, "application/pdf", "key", "user-1")
	s.ParseStatus = model.ParseStatusParsed
	s.ParsedParts = []model.ParsedPart{{Instrument: "Flute"}}
	s.RoutingDecision = model.RoutingAutoApprove
	s.SecondPassStatus = model.SecondPassQueued
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secondPassStatus")
}

func TestSession_Validate_AutoApprovedExcludesHumanReview(t *testing.T) {
	s := model.NewSession(uuid.New(), "score.pdf", 1024, "application/pdf", "key", "user-1")
	s.ParseStatus = model.ParseStatusParsed
	s.ParsedParts = []model.ParsedPart{{Instrument: "Flute"}}
	s.AutoApproved = true
	s.RequiresHumanReview = true
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requiresHumanReview")
}

func TestSession_Validate_Valid(t *testing.T) {
	s := model.NewSession(uuid.New(), "score.pdf", 1024, "application/pdf", "key", "user-1")
	s.ParseStatus = model.ParseStatusParsed
	s.ParsedParts = []model.ParsedPart{{Instrument: "Flute"}}
	assert.NoError(t, s.Validate())
}

func TestSecondPassStatus_UnmarshalJSON_AcceptsNullAndString(t *testing.T) {
	var a, b model.SecondPassStatus
	require.NoError(t, json.Unmarshal([]byte("null"), &a))
	require.NoError(t, json.Unmarshal([]byte(`"QUEUED"`), &b))
	assert.Equal(t, model.SecondPassNotNeeded, a)
	assert.Equal(t, model.SecondPassQueued, b)
}

func TestRoutingDecision_Monotonicity(t *testing.T) {
	assert.True(t, model.RoutingAutoApprove.AtLeastAsAutonomousAs(model.RoutingSecondPass))
	assert.True(t, model.RoutingSecondPass.AtLeastAsAutonomousAs(model.RoutingNoParse))
	assert.False(t, model.RoutingNoParse.AtLeastAsAutonomousAs(model.RoutingSecondPass))
	assert.True(t, model.RoutingAutoApprove.AtLeastAsAutonomousAs(model.RoutingAutoApprove))
}

func TestTruncateRawContent(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, model.TruncateRawContent(short))

	long := strings.Repeat("a", model.RawContentMaxBytes+100)
	truncated := model.TruncateRawContent(long)
	assert.Len(t, truncated, model.RawContentMaxBytes)
}

func TestIsForbiddenLabel(t *testing.T) {
	for _, label := range []string{"", "unknown", "Unknown", "NONE", "n/a", "-", "  unknown  "} {
		assert.True(t, model.IsForbiddenLabel(label), "expected %q to be forbidden", label)
	}
	assert.False(t, model.IsForbiddenLabel("Flute"))
}

func TestPageRange_PageCountAndOverlap(t *testing.T) {
	r := model.PageRange{Start: 2, End: 5}
	assert.Equal(t, 4, r.PageCount())
	assert.True(t, r.Overlaps(model.PageRange{Start: 5, End: 8}))
	assert.False(t, r.Overlaps(model.PageRange{Start: 6, End: 8}))
}
