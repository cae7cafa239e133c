// Package service provides the recommendation service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	jobqueue "github.com/okian/staffwise/internal/adapters/mq/queue"
	workerpool "github.com/okian/staffwise/internal/adapters/mq/worker"
	"github.com/okian/staffwise/internal/adapters/repository"
	"github.com/okian/staffwise/internal/domain/allocation"
	"github.com/okian/staffwise/internal/domain/eligibility"
	"github.com/okian/staffwise/internal/domain/model"
	"github.com/okian/staffwise/internal/domain/scoring"
	"github.com/okian/staffwise/internal/domain/skills"
	"github.com/okian/staffwise/internal/domain/types"
	"github.com/okian/staffwise/pkg/logger"
	"github.com/okian/staffwise/pkg/metrics"
)

// Outcome labels recorded per Recommend call.
const (
	OutcomeOK             = "ok"
	OutcomeNoRequirements = "no_requirements"
	OutcomeNoEmployees    = "no_employees"
	OutcomeFetchError     = "fetch_error"
	OutcomeCancelled      = "cancelled"
)

const (
	defaultQueueSize    = 1024
	defaultMaxBatchSize = 100
	stopTimeout         = 10 * time.Second
)

// Service ranks employees for project requirements.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     repository.Source
	normalizer *skills.Normalizer
	scorer     scoring.Scorer
	jobQueue   jobqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	maxBatchSize    int
	concurrentFetch bool

	// State
	started  bool
	cancel   context.CancelFunc
	served   atomic.Int64
	empty    atomic.Int64
	failures atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the data collaborator. Fetches are instrumented.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = repository.Instrument(src)
		}
	}
}

// WithNormalizer sets the skill and role normalizer.
func WithNormalizer(n *skills.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithScorer sets the candidate scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued batch jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxBatchSize caps the number of projects per batch call.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithConcurrentFetch toggles parallel reads of requirements and employees.
func WithConcurrentFetch(enabled bool) Option {
	return func(s *Service) {
		s.concurrentFetch = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithSource it serves an empty in-memory
// snapshot. The caller owns the source and closes it.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       defaultQueueSize,
		maxBatchSize:    defaultMaxBatchSize,
		concurrentFetch: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.source == nil {
		s.source = repository.Instrument(repository.NewMemorySource(nil))
	}
	if s.normalizer == nil {
		s.normalizer = skills.New()
	}
	if s.scorer == nil {
		s.scorer = scoring.NewTierScorer()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start creates the batch queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.jobQueue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s)
	s.workerPool.Start(runCtx)
	s.cancel = cancel
	go s.watch(runCtx, s.workerPool)

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxBatchSize", s.maxBatchSize),
		logger.Bool("concurrentFetch", s.concurrentFetch),
	)
	return nil
}

// Stop drains the batch queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked("stopping recommendation service...")
}

// watch stops the service when the context given to Start ends, so batches
// are rejected instead of queued for workers that are gone.
func (s *Service) watch(ctx context.Context, pool *workerpool.Pool) {
	<-ctx.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workerPool != pool {
		return
	}
	s.stopLocked("start context done, stopping recommendation service...")
}

func (s *Service) stopLocked(reason string) {
	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, reason)
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "recommendation service stopped")
}

// Recommend returns the staffing recommendations of a project. Missing data
// and fetch failures yield an empty list; the error is non-nil only when ctx
// ends before the work is done.
func (s *Service) Recommend(ctx context.Context, projectID int64) (types.Response, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecommendLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()
	s.served.Add(1)

	log := s.logger.With(logger.Int64("project_id", projectID))

	reqs, emps, err := s.fetch(ctx, projectID)
	switch {
	case ctx.Err() != nil:
		metrics.RecordRecommendation(OutcomeCancelled)
		return types.Empty(), fmt.Errorf("recommend project %d: %w", projectID, ctx.Err())
	case err != nil:
		s.failures.Add(1)
		s.empty.Add(1)
		metrics.RecordRecommendation(OutcomeFetchError)
		log.Error(ctx, "fetch failed, returning no recommendations", logger.Error(err))
		return types.Empty(), nil
	case len(reqs) == 0:
		s.empty.Add(1)
		metrics.RecordRecommendation(OutcomeNoRequirements)
		log.Info(ctx, "no project requirements found")
		return types.Empty(), nil
	case len(emps) == 0:
		s.empty.Add(1)
		metrics.RecordRecommendation(OutcomeNoEmployees)
		log.Info(ctx, "no employees found")
		return types.Empty(), nil
	}

	pool := make([]model.Employee, len(emps))
	for i, e := range emps {
		e.Skills = s.normalizer.Skills(e.Skills)
		e.Role = s.normalizer.Role(e.JobTitle)
		pool[i] = e
	}
	eligible, step := eligibility.Filter(pool)
	metrics.UpdateEligibleEmployees(step.Left)
	log.Info(ctx, "eligible employees after filtering managers and availability",
		logger.Int("initial", step.Initial),
		logger.Int("dropped", step.Dropped),
		logger.Int("left", step.Left),
	)

	out := types.Response{Recommendations: make([]types.Recommendation, 0, len(reqs))}
	for _, req := range reqs {
		rec, err := s.recommendRequirement(ctx, log, req, eligible)
		if err != nil {
			metrics.RecordRecommendation(OutcomeCancelled)
			return types.Empty(), fmt.Errorf("recommend project %d: %w", projectID, err)
		}
		out.Recommendations = append(out.Recommendations, rec)
	}

	metrics.RecordRecommendation(OutcomeOK)
	return out, nil
}

func (s *Service) recommendRequirement(ctx context.Context, log logger.Logger, req model.Requirement, eligible []model.Employee) (types.Recommendation, error) {
	normalized := req
	normalized.RequiredSkills = s.normalizer.Skills(req.RequiredSkills)

	candidates, err := s.scorer.Rank(ctx, normalized, eligible)
	if err != nil {
		return types.Recommendation{}, err
	}
	metrics.RecordRequirementEvaluated()
	metrics.RecordCandidatesConsidered(len(eligible))

	employees := make([]types.RecommendedEmployee, 0, len(candidates))
	for _, c := range candidates {
		a := allocation.Compute(req.PreferredAssignmentType, c.Employee.TotalAvailableHours)
		log.Debug(ctx, "employee assigned",
			logger.String("employee_id", c.Employee.ID),
			logger.Int("score", c.Score),
			logger.Int("assigned_hours", a.AssignedHours),
			logger.String("assignment_type", a.Type),
			logger.Float64("allocation_percent", a.AllocationPercent),
		)
		employees = append(employees, types.RecommendedEmployee{
			EmployeeID:          c.Employee.ID,
			UserID:              c.Employee.UserID,
			AssignmentType:      a.Type,
			AssignedHours:       a.AssignedHours,
			AllocationPercent:   types.Percent(a.AllocationPercent),
			TotalAvailableHours: c.Employee.TotalAvailableHours,
		})
	}
	metrics.RecordEmployeesRecommended(len(employees))
	log.Info(ctx, "recommended employees for requirement",
		logger.Strings("required_skills", normalized.RequiredSkills),
		logger.String("experience_level", string(req.ExperienceLevel)),
		logger.Int("recommended", len(employees)),
	)

	skillsOut := make([]string, len(req.RequiredSkills))
	copy(skillsOut, req.RequiredSkills)
	return types.Recommendation{
		ExperienceLevel:         string(req.ExperienceLevel),
		RequiredSkills:          skillsOut,
		PreferredAssignmentType: req.PreferredAssignmentType,
		RecommendedEmployees:    employees,
	}, nil
}

// fetch reads requirements and the employee snapshot. Sequential mode skips
// the employee read when the project has no requirements.
func (s *Service) fetch(ctx context.Context, projectID int64) ([]model.Requirement, []model.Employee, error) {
	if !s.concurrentFetch {
		reqs, err := s.source.FetchProjectRequirements(ctx, projectID)
		if err != nil || len(reqs) == 0 {
			return reqs, nil, err
		}
		emps, err := s.source.FetchAllEmployees(ctx)
		return reqs, emps, err
	}

	var (
		reqs []model.Requirement
		emps []model.Employee
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reqs, err = s.source.FetchProjectRequirements(gctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		emps, err = s.source.FetchAllEmployees(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return reqs, emps, nil
}

// RecommendBatch runs Recommend for several projects on the worker pool.
// Results follow the order of projectIDs.
func (s *Service) RecommendBatch(ctx context.Context, projectIDs []int64) ([]types.ProjectResponse, error) {
	s.mu.RLock()
	started, q := s.started, s.jobQueue
	s.mu.RUnlock()

	switch {
	case !started:
		return nil, ErrNotStarted
	case len(projectIDs) == 0:
		return nil, ErrEmptyBatch
	case len(projectIDs) > s.maxBatchSize:
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(projectIDs), s.maxBatchSize)
	}

	batchID := uuid.NewString()
	reply := make(chan jobqueue.Result, len(projectIDs))
	for i, id := range projectIDs {
		job := jobqueue.Job{
			ID:        fmt.Sprintf("%s-%d", batchID, i),
			Index:     i,
			ProjectID: id,
			Reply:     reply,
			Ctx:       ctx,
		}
		if err := q.Enqueue(ctx, job); err != nil {
			switch {
			case errors.Is(err, jobqueue.ErrFull):
				return nil, fmt.Errorf("%w: %v", ErrBackpressure, err)
			case errors.Is(err, jobqueue.ErrClosed):
				return nil, fmt.Errorf("%w: %v", ErrNotStarted, err)
			}
			return nil, fmt.Errorf("enqueue batch %s: %w", batchID, err)
		}
	}

	results := make([]types.ProjectResponse, len(projectIDs))
	for range projectIDs {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("batch %s: %w", batchID, ctx.Err())
		case res := <-reply:
			if res.Err != nil {
				return nil, fmt.Errorf("batch %s: %w", batchID, res.Err)
			}
			results[res.Index] = types.ProjectResponse{
				ProjectID:       res.ProjectID,
				Recommendations: res.Response.Recommendations,
			}
		}
	}
	return results, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"maxBatchSize":    s.maxBatchSize,
		"concurrentFetch": s.concurrentFetch,
		"vocabulary":      s.normalizer.Vocabulary(),
		"served":          s.served.Load(),
		"emptyResults":    s.empty.Load(),
		"fetchFailures":   s.failures.Load(),
	}

	if s.started {
		queueLen := s.jobQueue.Len()
		stats["queueLength"] = queueLen
		stats["jobsProcessed"] = s.workerPool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}

	return stats
}
