package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
	"github.com/noah-isme/policy-digest-api/pkg/jobs"
)

// ScanState is the lifecycle state of a scan task.
type ScanState string

const (
	ScanScanning  ScanState = "scanning"
	ScanComplete  ScanState = "complete"
	ScanCancelled ScanState = "cancelled"
	ScanTimedOut  ScanState = "timed_out"
)

const scanJobType = "extension_scan"

type pageResolver interface {
	Resolve(ctx context.Context, pageURL string) (*models.PolicyDocument, error)
}

// ScanServiceConfig tunes the simulated scan.
type ScanServiceConfig struct {
	Delay      time.Duration
	Timeout    time.Duration
	Retention  time.Duration
	Workers    int
	BufferSize int
}

type scanTask struct {
	id         string
	url        string
	doc        models.PolicyDocument
	state      ScanState
	startedAt  time.Time
	finishedAt *time.Time
	result     *dto.ScanResult
	prepared   *dto.ScanResult

	delay   *time.Timer
	timeout *time.Timer
	done    chan struct{}
}

// ScanService runs simulated page scans as cancellable background tasks.
// A task starts in scanning and ends in exactly one of complete, cancelled
// or timed_out. Every task owns its delay and timeout timers; the worker
// queue only prepares results.
type ScanService struct {
	resolver pageResolver
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ScanServiceConfig
	queue    *jobs.Queue
	now      func() time.Time

	mu    sync.Mutex
	tasks map[string]*scanTask
}

// NewScanService constructs the scan service. Call Run before Start.
func NewScanService(resolver pageResolver, metrics *MetricsService, logger *zap.Logger, cfg ScanServiceConfig) *ScanService {
	if cfg.Delay <= 0 {
		cfg.Delay = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ScanService{
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		tasks:    make(map[string]*scanTask),
	}
	s.queue = jobs.NewQueue("scans", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Run starts the scan workers.
func (s *ScanService) Run(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop cancels every running scan and waits for the workers to exit.
func (s *ScanService) Stop() {
	s.mu.Lock()
	running := make([]*scanTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		running = append(running, task)
	}
	s.mu.Unlock()
	for _, task := range running {
		s.finish(task, ScanCancelled, nil)
	}
	s.queue.Stop()
}

// Start accepts a scan of pageURL. The page must carry a known policy.
func (s *ScanService) Start(ctx context.Context, pageURL string) (*dto.ScanResponse, error) {
	doc, err := s.resolver.Resolve(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	task := &scanTask{
		id:        uuid.NewString(),
		url:       doc.URL,
		doc:       *doc,
		state:     ScanScanning,
		startedAt: s.now().UTC(),
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.evictLocked()
	s.tasks[task.id] = task
	s.mu.Unlock()

	if err := s.queue.Enqueue(ctx, jobs.Job{ID: task.id, Type: scanJobType, Payload: task.id}); err != nil {
		s.mu.Lock()
		delete(s.tasks, task.id)
		s.mu.Unlock()
		s.logger.Warn("scan rejected", zap.String("url", task.url), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "scan workers unavailable")
	}

	s.mu.Lock()
	if task.state == ScanScanning {
		task.delay = time.AfterFunc(s.cfg.Delay, func() { s.complete(task) })
		task.timeout = time.AfterFunc(s.cfg.Timeout, func() { s.finish(task, ScanTimedOut, nil) })
	}
	s.mu.Unlock()

	s.metrics.ScanStarted()
	s.logger.Info("scan started", zap.String("scan_id", task.id), zap.String("url", task.url))

	return s.snapshot(task), nil
}

// Get returns the current state of a scan.
func (s *ScanService) Get(_ context.Context, id string) (*dto.ScanResponse, error) {
	task, err := s.task(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(task), nil
}

// Cancel stops a running scan. Cancelling a finished scan returns its
// final state unchanged.
func (s *ScanService) Cancel(_ context.Context, id string) (*dto.ScanResponse, error) {
	task, err := s.task(id)
	if err != nil {
		return nil, err
	}
	if s.finish(task, ScanCancelled, nil) {
		s.logger.Info("scan cancelled", zap.String("scan_id", id))
	}
	return s.snapshot(task), nil
}

// Wait blocks until the scan finishes or ctx is done. It returns the result
// of a completed scan, or ErrScanCancelled / ErrScanTimeout.
func (s *ScanService) Wait(ctx context.Context, id string) (*dto.ScanResult, error) {
	task, err := s.task(id)
	if err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-task.done:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch task.state {
	case ScanComplete:
		result := *task.result
		return &result, nil
	case ScanTimedOut:
		return nil, appErrors.ErrScanTimeout
	default:
		return nil, appErrors.ErrScanCancelled
	}
}

// handle builds the result of a queued scan ahead of its delay.
func (s *ScanService) handle(_ context.Context, job jobs.Job) error {
	id, _ := job.Payload.(string)
	task, err := s.task(id)
	if err != nil {
		return nil
	}
	result := scanResult(task.doc)

	s.mu.Lock()
	if task.state == ScanScanning {
		task.prepared = result
	}
	s.mu.Unlock()
	return nil
}

// complete finishes a task once its delay has elapsed.
func (s *ScanService) complete(task *scanTask) {
	s.mu.Lock()
	result := task.prepared
	s.mu.Unlock()
	if result == nil {
		result = scanResult(task.doc)
	}
	s.finish(task, ScanComplete, result)
}

// finish moves a scanning task into a terminal state. It reports whether the
// transition happened.
func (s *ScanService) finish(task *scanTask, state ScanState, result *dto.ScanResult) bool {
	s.mu.Lock()
	if task.state != ScanScanning {
		s.mu.Unlock()
		return false
	}
	finished := s.now().UTC()
	task.state = state
	task.finishedAt = &finished
	task.result = result
	if task.delay != nil {
		task.delay.Stop()
	}
	if task.timeout != nil {
		task.timeout.Stop()
	}
	task.prepared = nil
	close(task.done)
	s.mu.Unlock()

	s.metrics.ScanFinished(string(state), finished.Sub(task.startedAt))
	if state == ScanTimedOut {
		s.logger.Warn("scan timed out", zap.String("scan_id", task.id), zap.Duration("timeout", s.cfg.Timeout))
	}
	return true
}

func (s *ScanService) task(id string) (*scanTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scan not found")
	}
	return task, nil
}

func (s *ScanService) snapshot(task *scanTask) *dto.ScanResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := &dto.ScanResponse{
		ID:         task.id,
		URL:        task.url,
		State:      string(task.state),
		StartedAt:  task.startedAt,
		FinishedAt: task.finishedAt,
	}
	if task.result != nil {
		result := *task.result
		resp.Result = &result
	}
	return resp
}

// evictLocked drops finished tasks older than the retention window.
func (s *ScanService) evictLocked() {
	cutoff := s.now().Add(-s.cfg.Retention)
	for id, task := range s.tasks {
		if task.finishedAt != nil && task.finishedAt.Before(cutoff) {
			delete(s.tasks, id)
		}
	}
}

func scanResult(doc models.PolicyDocument) *dto.ScanResult {
	concerning := len(TopConcerningClauses(doc.Clauses, popupClauseLimit))
	return &dto.ScanResult{
		DocumentID:        doc.ID,
		RiskScore:         doc.RiskScore,
		ConcerningClauses: concerning,
		Summary:           ScoreSummary(doc.RiskScore),
		Message:           fmt.Sprintf("Found %d concerning clauses", concerning),
	}
}
