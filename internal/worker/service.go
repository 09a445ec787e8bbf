package worker

import (
	"context"
	"errors"
	"time"

	"github.com/confirmador/internal/config"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/queue"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"
)

// Service runs the asynq consumer and the periodic confirmation sweep. The
// consumer is optional; with the queue disabled only the sweep schedule runs.
type Service struct {
	name      string
	server    *asynq.Server
	mux       *asynq.ServeMux
	consumer  *Consumer
	cron      *cron.Cron
	sweepSpec string
	sweepSF   singleflight.Group
}

// NewService creates the worker service.
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	s := &Service{
		name:      "worker",
		consumer:  consumer,
		sweepSpec: cfg.Confirmation.SweepCron,
	}
	if cfg.Queue.Enabled {
		opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
		s.server = asynq.NewServer(opt, serverCfg)
		s.mux = asynq.NewServeMux()
		consumer.Register(s.mux)
	}
	return s, nil
}

// Name is the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the sweep schedule and, when configured, the asynq consumer.
// Blocks until the consumer stops, or until ctx is done in sweep-only mode.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if err := s.startSweepSchedule(); err != nil {
		return err
	}
	if s.server == nil || s.mux == nil {
		logger.Infow("worker_queue_disabled_sweep_only")
		<-ctx.Done()
		return nil
	}
	return s.server.Run(s.mux)
}

// Stop shuts the consumer and the schedule down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}
	if s.server != nil {
		s.server.Shutdown()
	}
	return nil
}

func (s *Service) startSweepSchedule() error {
	spec := s.sweepSpec
	if spec == "" {
		spec = "*/15 * * * *"
	}
	s.cron = cron.New()
	_, err := s.cron.AddFunc(spec, s.runSweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	logger.Infow("sweep_schedule_started", "spec", spec)
	return nil
}

// runSweep executes one sweep pass. singleflight collapses overlapping runs
// so a slow pass is never stacked on by the next tick.
func (s *Service) runSweep() {
	_, _, _ = s.sweepSF.Do("sweep", func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.consumer.SchedulerService.Sweep(ctx, time.Now()); err != nil {
			logger.Errorw("sweep_failed", "error", err)
		}
		return nil, nil
	})
}
