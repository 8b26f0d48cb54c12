// Package worker содержит фоновые задачи сервиса.
package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StreakResetter обнуляет серии детей, пропустивших день.
type StreakResetter interface {
	ResetStreaks(ctx context.Context) (int64, error)
}

// StreakReset периодически запускает сброс серий по cron-расписанию.
type StreakReset struct {
	svc      StreakResetter
	schedule string
	logger   *zap.Logger
	opts     []gocron.SchedulerOption
}

// NewStreakReset создаёт задачу сброса серий с расписанием в формате cron.
// Выражение из шести полей трактуется как расписание с секундами.
func NewStreakReset(svc StreakResetter, schedule string, logger *zap.Logger, opts ...gocron.SchedulerOption) *StreakReset {
	return &StreakReset{
		svc:      svc,
		schedule: schedule,
		logger:   logger,
		opts:     opts,
	}
}

// Run запускает планировщик и блокируется до отмены контекста.
func (w *StreakReset) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler(w.opts...)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.CronJob(w.schedule, len(strings.Fields(w.schedule)) == 6),
		gocron.NewTask(func() { w.runOnce(ctx) }),
		gocron.WithName("streak-reset"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule streak reset %q: %w", w.schedule, err)
	}

	sched.Start()
	w.logger.Info("streak reset scheduled", zap.String("cron", w.schedule))

	<-ctx.Done()

	if err := sched.Shutdown(); err != nil {
		w.logger.Warn("scheduler shutdown failed", zap.Error(err))
	}
	return nil
}

func (w *StreakReset) runOnce(ctx context.Context) {
	n, err := w.svc.ResetStreaks(ctx)
	if err != nil {
		w.logger.Error("streak reset failed", zap.Error(err))
		return
	}
	w.logger.Info("streaks reset", zap.Int64("kids", n))
}
