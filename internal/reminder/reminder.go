// Package reminder runs the weekly debt digest: every user with unpaid items
// gets one email summarising their outstanding total.
package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"github.com/splitter-app/splitter/internal/debt"
	"github.com/splitter-app/splitter/internal/mailer"
)

// Scheduler owns the cron job for the weekly digest.
type Scheduler struct {
	scheduler gocron.Scheduler
	debts     *debt.Service
	mailer    *mailer.Mailer
	cron      string
}

// New creates the reminder scheduler. cron is a standard five-field
// expression, e.g. "0 9 * * 1" for Monday 9:00.
func New(debts *debt.Service, m *mailer.Mailer, cron string) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		debts:     debts,
		mailer:    m,
		cron:      cron,
	}, nil
}

// Start registers the weekly digest job and starts the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(s.cron, false),
		gocron.NewTask(s.runWeeklyDigest),
		gocron.WithName("weekly_debt_digest"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register weekly digest job: %w", err)
	}

	s.scheduler.Start()
	slog.Info("reminder scheduler started", "cron", s.cron)
	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		slog.Error("failed to shut down reminder scheduler", "error", err)
	}
}

// runWeeklyDigest mails every debtor their outstanding total. Per-recipient
// failures are logged and do not stop the run.
func (s *Scheduler) runWeeklyDigest() {
	ctx := context.Background()

	summaries, err := s.debts.OutstandingByDebtor(ctx)
	if err != nil {
		slog.Error("weekly digest: failed to load outstanding debts", "error", err)
		return
	}

	sent := 0
	for _, summary := range summaries {
		if summary.Email == "" {
			continue
		}

		err := s.mailer.SendWeeklyDigest(ctx, summary.Email, mailer.WeeklyDigestData{
			Name:        summary.Name,
			TotalAmount: summary.TotalAmount,
			ItemCount:   summary.ItemCount,
		})
		if err != nil {
			slog.Error("weekly digest: failed to send",
				"user_id", summary.UserID,
				"error", err,
			)
			continue
		}
		sent++
	}

	slog.Info("weekly digest run finished", "debtors", len(summaries), "sent", sent)
}
