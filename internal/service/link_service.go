package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/twbeatles/hwpmaster-api/internal/hwp"
	"github.com/twbeatles/hwpmaster-api/internal/linkcheck"
	"github.com/twbeatles/hwpmaster-api/internal/logger"
	"github.com/twbeatles/hwpmaster-api/internal/model"
	"github.com/twbeatles/hwpmaster-api/internal/repository"
)

// CheckDefaults are the server-wide link-check settings; a request may
// override concurrency, timeout, cache, and allowlist per run.
type CheckDefaults struct {
	MaxConcurrency   int
	Timeout          time.Duration
	CacheEnabled     bool
	Allowlist        []string
	ExternalRequests bool
	UserAgent        string
}

// LinkCheckService runs document link checks and serves stored runs.
type LinkCheckService interface {
	Check(ctx context.Context, input *model.CheckRequestInput) (*model.CheckRunDTO, error)
	Get(jobID string) (*model.CheckRunDTO, error)
	List(p repository.Pagination) ([]*model.CheckRunDTO, error)
	Report(jobID string) ([]byte, error)
}

type linkCheckService struct {
	repo       repository.CheckRepository
	newHandler HandlerFactory
	defaults   CheckDefaults
	log        *logger.Logger
}

// NewLinkCheckService constructs a LinkCheckService.
func NewLinkCheckService(repo repository.CheckRepository, factory HandlerFactory, defaults CheckDefaults) LinkCheckService {
	return &linkCheckService{
		repo:       repo,
		newHandler: factory,
		defaults:   defaults,
		log:        logger.New("linkcheck"),
	}
}

// Check extracts links (from the document via the bridge, or from an
// explicit URL list), validates them through the bounded pool, and persists
// the run. Extraction failures fail the call; individual link failures are
// statuses on the records.
func (s *linkCheckService) Check(ctx context.Context, input *model.CheckRequestInput) (*model.CheckRunDTO, error) {
	records, source, err := s.collectRecords(ctx, input)
	if err != nil {
		return nil, err
	}

	cfg := linkcheck.CheckerConfig{
		Timeout:          s.defaults.Timeout,
		ExternalRequests: s.defaults.ExternalRequests,
		Allowlist:        s.defaults.Allowlist,
		UserAgent:        s.defaults.UserAgent,
	}
	if input.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	if len(input.Allowlist) > 0 {
		cfg.Allowlist = input.Allowlist
	}
	conc := s.defaults.MaxConcurrency
	if input.MaxConcurrency > 0 {
		conc = input.MaxConcurrency
	}
	cacheEnabled := s.defaults.CacheEnabled
	if input.CacheEnabled != nil {
		cacheEnabled = *input.CacheEnabled
	}

	pool := linkcheck.NewPool(linkcheck.NewChecker(cfg), conc, cacheEnabled)
	pool.OnProgress(func(current, total int, label string) {
		s.log.Debugf("checking %d/%d %s", current, total, label)
	})

	start := time.Now()
	records = pool.Run(ctx, records)
	valid, broken := linkcheck.Tally(records)
	s.log.Infof("checked %d links in %s (valid=%d broken=%d)",
		len(records), time.Since(start).Truncate(time.Millisecond), valid, broken)

	run := &model.CheckRun{
		JobID:       uuid.NewString(),
		SourcePath:  source,
		TotalCount:  len(records),
		ValidCount:  valid,
		BrokenCount: broken,
		Success:     true,
	}
	if err := s.repo.Create(run); err != nil {
		return nil, fmt.Errorf("create check run: %w", err)
	}
	rows := make([]model.CheckLink, len(records))
	for i, rec := range records {
		rows[i] = *model.CheckLinkFromRecord(run.ID, i, rec)
	}
	if err := s.repo.SaveLinks(run.ID, rows); err != nil {
		return nil, fmt.Errorf("persist link results: %w", err)
	}

	return run.ToDTO(records), nil
}

// collectRecords resolves the check's input into ordered unknown-status
// records plus a display source.
func (s *linkCheckService) collectRecords(ctx context.Context, input *model.CheckRequestInput) ([]model.LinkRecord, string, error) {
	if len(input.URLs) > 0 {
		return linkcheck.RecordsFromURLs(input.URLs), "url-list", nil
	}
	if input.SourcePath == "" {
		return nil, "", errors.New("either source_path or urls is required")
	}

	sess, err := hwp.Open(ctx, s.newHandler())
	if err != nil {
		return nil, "", err
	}
	defer sess.Close()

	var records []model.LinkRecord
	err = sess.Do(ctx, func(h hwp.Handler) error {
		if err := h.Open(ctx, input.SourcePath); err != nil {
			return err
		}
		defer h.Close(ctx)

		// Hyperlink controls are authoritative; the HTML export is the
		// fallback for documents whose links only exist as anchors.
		items, err := h.ExtractLinks(ctx)
		if err == nil && len(items) > 0 {
			for _, it := range items {
				text := it.Text
				if text == "" {
					text = it.URL
				}
				records = append(records, model.NewLinkRecord(it.URL, text))
			}
			return nil
		}

		html, err := h.ExportHTML(ctx)
		if err != nil {
			return err
		}
		records, err = linkcheck.ExtractLinks(bytes.NewReader(html))
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("extract links from %s: %w", input.SourcePath, err)
	}
	return records, input.SourcePath, nil
}

func (s *linkCheckService) Get(jobID string) (*model.CheckRunDTO, error) {
	run, links, err := s.load(jobID)
	if err != nil {
		return nil, err
	}
	return run.ToDTO(links), nil
}

// List returns stored check runs without their link rows, newest first.
func (s *linkCheckService) List(p repository.Pagination) ([]*model.CheckRunDTO, error) {
	runs, err := s.repo.List(p)
	if err != nil {
		return nil, err
	}
	dtos := make([]*model.CheckRunDTO, len(runs))
	for i := range runs {
		dtos[i] = runs[i].ToDTO(nil)
	}
	return dtos, nil
}

// Report renders the stored run as a standalone HTML page.
func (s *linkCheckService) Report(jobID string) ([]byte, error) {
	run, links, err := s.load(jobID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = linkcheck.WriteReport(&buf, linkcheck.ReportData{
		SourceName:  filepath.Base(run.SourcePath),
		Links:       links,
		ValidCount:  run.ValidCount,
		BrokenCount: run.BrokenCount,
		GeneratedAt: run.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *linkCheckService) load(jobID string) (*model.CheckRun, []model.LinkRecord, error) {
	run, err := s.repo.FindByJobID(jobID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.repo.ListLinks(run.ID)
	if err != nil {
		return nil, nil, err
	}
	links := make([]model.LinkRecord, len(rows))
	for i := range rows {
		links[i] = rows[i].ToRecord()
	}
	return run, links, nil
}
