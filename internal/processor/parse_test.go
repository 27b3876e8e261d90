package processor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/processor"
)

func TestExtractJSON_FencedCodeBlock(t *testing.T) {
	response := "Here you go:\n```json\n{\"title\":\"Overture\"}\n```\nDone."
	assert.Equal(t, `{"title":"Overture"}`, processor.ExtractJSON(response))
}

func TestExtractJSON_GenericFence(t *testing.T) {
	response := "```\n{\"title\":\"Overture\"}\n```"
	assert.Equal(t, `{"title":"Overture"}`, processor.ExtractJSON(response))
}

func TestExtractJSON_RawObject(t *testing.T) {
	response := `{"title":"Overture"}`
	assert.Equal(t, response, processor.ExtractJSON(response))
}

func TestParseMetadata_ValidResponse(t *testing.T) {
	response := `{"title":"Overture","isMultiPart":true,"confidenceScore":0.8,"cuttingInstructions":[{"partName":"Flute","instrument":"Flute","section":"Woodwinds","transposition":"C","partNumber":1,"pageRange":{"start":0,"end":2}}]}`

	metadata, instructions := processor.ParseMetadata(response, 3)

	assert.Equal(t, "Overture", metadata.Title)
	assert.True(t, metadata.IsMultiPart)
	assert.Equal(t, 0.8, metadata.ConfidenceScore)
	require.Len(t, instructions, 1)
	assert.Equal(t, "Flute", instructions[0].Instrument)
}

func TestParseMetadata_MalformedFallsBackToFullScore(t *testing.T) {
	metadata, instructions := processor.ParseMetadata("not json at all", 10)

	assert.Equal(t, 0.0, metadata.ConfidenceScore)
	require.Len(t, instructions, 1)
	assert.Equal(t, "Full Score", instructions[0].PartName)
	assert.Equal(t, 0, instructions[0].PageRange.Start)
	assert.Equal(t, 9, instructions[0].PageRange.End)
}

func TestParseMetadata_ClampsConfidenceScore(t *testing.T) {
	metadata, _ := processor.ParseMetadata(`{"title":"x","confidenceScore":5.0}`, 1)
	assert.Equal(t, 1.0, metadata.ConfidenceScore)
}

func TestHeaderLabels_Valid(t *testing.T) {
	labels, ok := processor.HeaderLabels(`{"labels":["Flute 1","","Bb Clarinet"]}`)
	require.True(t, ok)
	assert.Equal(t, []string{"Flute 1", "", "Bb Clarinet"}, labels)
}

func TestHeaderLabels_Malformed(t *testing.T) {
	_, ok := processor.HeaderLabels("not json")
	assert.False(t, ok)
}
