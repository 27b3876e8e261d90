package uploadlib_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ArtisanClarinets/smart-upload-pipeline/pkg/uploadlib"
)

func TestReexportedSessionType(t *testing.T) {
	session := &uploadlib.Session{
		ID:         uuid.New(),
		Filename:   "score.pdf",
		ParseStatus: uploadlib.ParseStatus("NOT_PARSED"),
	}
	assert.Equal(t, "score.pdf", session.Filename)
}

func TestReexportedRoutingConstants(t *testing.T) {
	assert.Equal(t, uploadlib.RoutingDecision("auto_parse_auto_approve"), uploadlib.RoutingAutoApprove)
	assert.Equal(t, uploadlib.RoutingDecision("auto_parse_second_pass"), uploadlib.RoutingSecondPass)
	assert.Equal(t, uploadlib.RoutingDecision("no_parse_second_pass"), uploadlib.RoutingNoParse)
}

func TestReexportedJobKinds(t *testing.T) {
	job := uploadlib.Job{Kind: uploadlib.KindSmartUpload, SessionID: "s1"}
	assert.Equal(t, uploadlib.JobKind("smartupload.process"), job.Kind)
}

func TestNewPipelineBuildsWithoutCollaborators(t *testing.T) {
	pipeline := uploadlib.NewPipeline()
	assert.NotNil(t, pipeline)
}
