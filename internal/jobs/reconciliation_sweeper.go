package jobs

import (
	"context"
	"log"
	"time"

	"shopmart/internal/common"
	"shopmart/internal/models"
	"shopmart/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

const (
	sweepInterval = 15 * time.Minute

	// abandonAfter is how long a payment intent may sit PENDING before the
	// customer is assumed to have walked away from the checkout modal.
	abandonAfter = time.Hour
)

// ReconciliationSweeper periodically closes out stale payment intents and
// surfaces captured-but-unreconciled payments for operators. It never
// mutates UPDATE_FAILED rows; those carry real money and wait for a human.
type ReconciliationSweeper struct {
	scheduler   gocron.Scheduler
	attemptRepo repositories.PaymentAttemptRepository
}

func NewReconciliationSweeper(attemptRepo repositories.PaymentAttemptRepository) (*ReconciliationSweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &ReconciliationSweeper{
		scheduler:   scheduler,
		attemptRepo: attemptRepo,
	}, nil
}

// Start registers the sweep job and begins the schedule.
func (s *ReconciliationSweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(s.sweep, context.Background()),
		gocron.WithName("payment-reconciliation-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *ReconciliationSweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *ReconciliationSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-abandonAfter)
	abandoned, err := s.attemptRepo.MarkAbandonedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("reconciliation sweep: failed to mark abandoned attempts: %v", err)
	} else if abandoned > 0 {
		log.Printf("reconciliation sweep: marked %d stale payment attempts abandoned", abandoned)
	}

	failed, err := s.attemptRepo.ListByStatus(ctx, models.PaymentStatusUpdateFailed, 100, 0)
	if err != nil {
		log.Printf("reconciliation sweep: failed to list UPDATE_FAILED attempts: %v", err)
		return
	}
	for _, attempt := range failed {
		log.Printf("ALERT: payment %q for order %s captured but not reconciled since %s; manual action required",
			common.SafeString(attempt.RazorpayPaymentID), attempt.OrderID, attempt.UpdatedAt.Format(time.RFC3339))
	}
}
