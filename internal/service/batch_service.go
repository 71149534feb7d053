package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/twbeatles/hwpmaster-api/internal/batch"
	"github.com/twbeatles/hwpmaster-api/internal/hwp"
	"github.com/twbeatles/hwpmaster-api/internal/logger"
	"github.com/twbeatles/hwpmaster-api/internal/model"
	"github.com/twbeatles/hwpmaster-api/internal/repository"
)

// HandlerFactory creates a fresh automation handler for one session.
type HandlerFactory func() hwp.Handler

// ErrNotRunning is returned when cancelling a run that already reached a
// terminal state.
var ErrNotRunning = errors.New("batch run is not running")

// BatchService owns batch run lifecycles: submission, background execution,
// cancellation, and stored results.
type BatchService interface {
	Submit(input *model.SubmitBatchInput) (string, error)
	Get(jobID string) (*model.BatchRunDTO, error)
	Cancel(jobID string) error
	List(p repository.Pagination) ([]*model.BatchRunDTO, error)
}

type batchService struct {
	repo       repository.BatchRepository
	newHandler HandlerFactory
	outputDir  string
	log        *logger.Logger

	// Only one batch may hold the automation handle; the gate serializes
	// runs instead of letting two sessions race for the application.
	gate chan struct{}

	mu     sync.Mutex
	active map[string]*batch.Runner
}

// NewBatchService constructs a BatchService. outputDir is the fallback when
// a submission names no output directory.
func NewBatchService(repo repository.BatchRepository, factory HandlerFactory, outputDir string) BatchService {
	return &batchService{
		repo:       repo,
		newHandler: factory,
		outputDir:  outputDir,
		log:        logger.New("batch"),
		gate:       make(chan struct{}, 1),
		active:     make(map[string]*batch.Runner),
	}
}

func (s *batchService) Submit(input *model.SubmitBatchInput) (string, error) {
	items, err := buildItems(input)
	if err != nil {
		return "", err
	}

	outDir := input.OutputDir
	if outDir == "" {
		outDir = s.outputDir
	}

	run := &model.BatchRun{
		JobID:      uuid.NewString(),
		Operation:  input.Operation,
		State:      model.StateRunning,
		TotalCount: len(items),
		OutputDir:  outDir,
	}
	if err := s.repo.Create(run); err != nil {
		return "", fmt.Errorf("create batch run: %w", err)
	}

	runner := batch.New(func(ctx context.Context) (batch.Operation, func(), error) {
		sess, err := hwp.Open(ctx, s.newHandler())
		if err != nil {
			return nil, nil, err
		}
		op, err := buildOperation(sess, input, outDir)
		if err != nil {
			sess.Close()
			return nil, nil, err
		}
		return op, sess.Close, nil
	})
	runner.OnProgress(func(current, total int, label string) {
		s.log.Debugf("job %s: %d/%d %s", run.JobID, current, total, label)
	})

	// Registered before the gate is acquired, so a run still queued behind
	// another batch can be cancelled.
	s.mu.Lock()
	s.active[run.JobID] = runner
	s.mu.Unlock()

	go s.execute(run, runner, items)
	return run.JobID, nil
}

// execute runs one batch on a background goroutine, acquiring the exclusive
// automation session in the runner's prepare step.
func (s *batchService) execute(run *model.BatchRun, runner *batch.Runner, items []batch.WorkItem) {
	defer func() {
		s.mu.Lock()
		delete(s.active, run.JobID)
		s.mu.Unlock()
	}()

	s.gate <- struct{}{}
	defer func() { <-s.gate }()

	summary, err := runner.Run(context.Background(), items)
	if err != nil {
		run.State = model.StateError
		run.ErrorMessage = err.Error()
		if updateErr := s.repo.Update(run); updateErr != nil {
			s.log.Errorf(updateErr, "job %s: persist setup failure", run.JobID)
		}
		s.log.Errorf(err, "job %s: aborted", run.JobID)
		return
	}

	rows := make([]model.BatchItem, len(summary.Results))
	for i, res := range summary.Results {
		rows[i] = model.BatchItem{
			SourceRef:    res.SourceRef,
			OutputRef:    res.OutputRef,
			Success:      res.Success,
			ErrorMessage: res.ErrorMessage,
		}
	}
	if err := s.repo.SaveItems(run.ID, rows); err != nil {
		s.log.Errorf(err, "job %s: persist item results", run.JobID)
	}

	run.SuccessCount = summary.SuccessCount
	run.FailCount = summary.FailCount
	run.Cancelled = summary.Cancelled
	if summary.Cancelled {
		run.State = model.StateCancelled
	} else {
		run.State = model.StateFinished
	}
	if err := s.repo.Update(run); err != nil {
		s.log.Errorf(err, "job %s: persist summary", run.JobID)
	}
	s.log.Infof("job %s: %s (ok=%d fail=%d)", run.JobID, run.State, run.SuccessCount, run.FailCount)
}

func (s *batchService) Get(jobID string) (*model.BatchRunDTO, error) {
	run, err := s.repo.FindByJobID(jobID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(run.ID)
	if err != nil {
		return nil, err
	}
	results := make([]model.JobResultDTO, len(items))
	for i := range items {
		results[i] = items[i].ToDTO()
	}
	return run.ToDTO(results), nil
}

func (s *batchService) Cancel(jobID string) error {
	s.mu.Lock()
	runner, ok := s.active[jobID]
	s.mu.Unlock()
	if !ok {
		// Not in flight; distinguish unknown job from already-terminal run.
		if _, err := s.repo.FindByJobID(jobID); err != nil {
			return err
		}
		return ErrNotRunning
	}
	runner.Cancel()
	return nil
}

func (s *batchService) List(p repository.Pagination) ([]*model.BatchRunDTO, error) {
	runs, err := s.repo.List(p)
	if err != nil {
		return nil, err
	}
	dtos := make([]*model.BatchRunDTO, len(runs))
	for i := range runs {
		dtos[i] = runs[i].ToDTO(nil)
	}
	return dtos, nil
}

// buildItems validates the submission and derives the ordered work items.
func buildItems(input *model.SubmitBatchInput) ([]batch.WorkItem, error) {
	if !model.KnownOperation(input.Operation) {
		return nil, fmt.Errorf("unknown operation %q", input.Operation)
	}

	if input.Operation == model.OpInject {
		if input.TemplatePath == "" {
			return nil, errors.New("inject requires template_path")
		}
		if len(input.Rows) == 0 {
			return nil, errors.New("inject requires at least one data row")
		}
		items := make([]batch.WorkItem, len(input.Rows))
		for i, row := range input.Rows {
			label := fmt.Sprintf("row_%d", i+1)
			if input.FilenameField != "" && row[input.FilenameField] != "" {
				label = row[input.FilenameField]
			}
			items[i] = batch.WorkItem{Ref: input.TemplatePath, Label: label, Fields: row}
		}
		return items, nil
	}

	if len(input.Files) == 0 {
		return nil, errors.New("no input files")
	}
	if input.Operation == model.OpMerge {
		if len(input.Files) < 2 {
			return nil, errors.New("merge requires at least two input files")
		}
		// One combined output, so the runner sees a single item.
		return []batch.WorkItem{{Ref: input.Files[0]}}, nil
	}
	if input.Operation == model.OpConvert && !hwp.KnownFormat(hwp.Format(input.TargetFormat)) {
		return nil, fmt.Errorf("unknown target format %q", input.TargetFormat)
	}
	if input.Operation == model.OpWatermark && input.Watermark == nil {
		return nil, errors.New("watermark requires watermark spec")
	}
	if input.Operation == model.OpMask && input.Pattern == "" {
		return nil, errors.New("mask requires pattern")
	}

	items := make([]batch.WorkItem, len(input.Files))
	for i, f := range input.Files {
		items[i] = batch.WorkItem{Ref: f}
	}
	return items, nil
}

// buildOperation maps the submission to its per-item operation. Inputs were
// validated at submit time.
func buildOperation(sess *hwp.Session, input *model.SubmitBatchInput, outDir string) (batch.Operation, error) {
	switch input.Operation {
	case model.OpConvert:
		return hwp.ConvertOp(sess, hwp.Format(input.TargetFormat), outDir), nil
	case model.OpWatermark:
		spec := hwp.WatermarkSpec{
			Text:     input.Watermark.Text,
			FontSize: input.Watermark.FontSize,
			Opacity:  input.Watermark.Opacity,
			Angle:    input.Watermark.Angle,
		}
		return hwp.WatermarkOp(sess, spec, outDir), nil
	case model.OpStripMetadata:
		return hwp.StripMetadataOp(sess, outDir), nil
	case model.OpHeaderFooter:
		spec := hwp.HeaderFooterSpec{}
		if input.HeaderFooter != nil {
			spec = hwp.HeaderFooterSpec{
				HeaderText:  input.HeaderFooter.HeaderText,
				FooterText:  input.HeaderFooter.FooterText,
				PageNumbers: input.HeaderFooter.PageNumbers,
			}
		}
		return hwp.HeaderFooterOp(sess, spec, outDir), nil
	case model.OpMask:
		return hwp.MaskOp(sess, input.Pattern, input.Replacement, outDir), nil
	case model.OpSplit:
		return hwp.SplitOp(sess, outDir), nil
	case model.OpMerge:
		return hwp.MergeOp(sess, input.Files, outDir, input.OutputName), nil
	case model.OpInject:
		return hwp.InjectOp(sess, input.TemplatePath, outDir), nil
	default:
		return nil, fmt.Errorf("unknown operation %q", input.Operation)
	}
}
