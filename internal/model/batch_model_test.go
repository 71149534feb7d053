package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twbeatles/hwpmaster-api/internal/model"
)

func TestBatchRunToDTO(t *testing.T) {
	t.Run("FinishedWithoutFailuresIsSuccess", func(t *testing.T) {
		run := model.BatchRun{State: model.StateFinished, TotalCount: 2, SuccessCount: 2}
		assert.True(t, run.ToDTO(nil).Success)
	})

	t.Run("FinishedWithFailuresIsNotSuccess", func(t *testing.T) {
		run := model.BatchRun{State: model.StateFinished, TotalCount: 2, SuccessCount: 1, FailCount: 1}
		assert.False(t, run.ToDTO(nil).Success)
	})

	t.Run("CancelledIsNotSuccess", func(t *testing.T) {
		run := model.BatchRun{State: model.StateCancelled, SuccessCount: 2, Cancelled: true}
		assert.False(t, run.ToDTO(nil).Success)
	})

	t.Run("SetupErrorIsNotSuccess", func(t *testing.T) {
		run := model.BatchRun{State: model.StateError, ErrorMessage: "bridge down"}
		dto := run.ToDTO(nil)
		assert.False(t, dto.Success)
		assert.Equal(t, "bridge down", dto.ErrorMessage)
	})

	t.Run("CarriesItemResults", func(t *testing.T) {
		run := model.BatchRun{JobID: "job-1", State: model.StateFinished}
		dto := run.ToDTO([]model.JobResultDTO{{SourceRef: "a.hwp", Success: true}})
		assert.Len(t, dto.Results, 1)
	})
}

func TestKnownOperation(t *testing.T) {
	for _, op := range []string{
		model.OpConvert, model.OpWatermark, model.OpStripMetadata,
		model.OpHeaderFooter, model.OpMask, model.OpSplit, model.OpMerge, model.OpInject,
	} {
		assert.True(t, model.KnownOperation(op), op)
	}
	assert.False(t, model.KnownOperation("rotate"))
	assert.False(t, model.KnownOperation(""))
}

func TestLinkStatusTallies(t *testing.T) {
	healthy := []model.LinkStatus{model.LinkValid, model.LinkLocalOK}
	unhealthy := []model.LinkStatus{model.LinkBroken, model.LinkLocalMissing, model.LinkTimeout}
	neutral := []model.LinkStatus{model.LinkSkipped, model.LinkUnknown}

	for _, s := range healthy {
		assert.True(t, s.Healthy(), s)
		assert.False(t, s.Unhealthy(), s)
	}
	for _, s := range unhealthy {
		assert.True(t, s.Unhealthy(), s)
		assert.False(t, s.Healthy(), s)
	}
	for _, s := range neutral {
		assert.False(t, s.Healthy(), s)
		assert.False(t, s.Unhealthy(), s)
	}
}
