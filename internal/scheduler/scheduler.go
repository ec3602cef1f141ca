// Package scheduler runs the periodic background jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go-quickstart/config"
	"go-quickstart/internal/helpers"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 5 * time.Minute

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// OTPPurger clears expired one-time passwords.
type OTPPurger interface {
	PurgeExpiredOTPs(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// cronLogger routes robfig/cron's own messages into zap.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.s.Errorw(msg, append(kv, "error", err)...)
}

// New builds a scheduler whose specs accept an optional leading seconds field.
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler")
	clog := cronLogger{s: log.Sugar()}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(clog),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		),
		log: log,
	}
}

// Add schedules job under name.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	s.log.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PurgeOTPs clears expired OTPs and logs how many were removed.
func PurgeOTPs(users OTPPurger, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		n, err := users.PurgeExpiredOTPs(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("expired OTPs cleared", zap.Int64("count", n))
		}
		return nil
	}
}

func Heartbeat(log *zap.Logger) Job {
	return func(context.Context) error {
		log.Info("cron job executed", zap.String("at", helpers.CurrentDateTime()))
		return nil
	}
}

// RegisterDefaults adds the built-in jobs. Empty specs are skipped.
func (s *Scheduler) RegisterDefaults(cfg config.CronConfig, users OTPPurger) error {
	if cfg.OTPPurgeSpec != "" && users != nil {
		if err := s.Add("otp-purge", cfg.OTPPurgeSpec, PurgeOTPs(users, s.log)); err != nil {
			return err
		}
	}
	if cfg.HeartbeatSpec != "" {
		if err := s.Add("heartbeat", cfg.HeartbeatSpec, Heartbeat(s.log)); err != nil {
			return err
		}
	}
	return nil
}
