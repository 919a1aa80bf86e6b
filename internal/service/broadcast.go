package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	errs "github.com/codedrop-dev/codedrop/internal/errors"
	"github.com/codedrop-dev/codedrop/internal/logger"
	"github.com/codedrop-dev/codedrop/internal/metrics"
	"github.com/codedrop-dev/codedrop/internal/retry"
	"github.com/google/uuid"
)

const (
	// pause after every 25 sends to stay under provider throughput limits
	broadcastPauseEvery = 25
	// refresh the progress indicator after every 10th recipient
	broadcastProgressEvery = 10
)

type RecipientStorage interface {
	Recipients(ctx context.Context) ([]domain.Recipient, error)
}

// BroadcastCourier sends one message to one recipient. Transient
// failures must be marked via errs.Transient.
type BroadcastCourier interface {
	SendBroadcast(ctx context.Context, dest int64, msg domain.BroadcastMessage) error
}

// ProgressReporter receives running fan-out snapshots, typically edited
// into a single provider-side progress message.
type ProgressReporter interface {
	Progress(p domain.BroadcastProgress)
	Done(r domain.BroadcastReport)
}

// Broadcaster fans a message out to every known recipient. Fan-outs
// above the confirm threshold are staged behind an explicit Confirm so
// an accidental mass-send cannot happen; the staged message is the
// exact originally-selected one.
type Broadcaster struct {
	storage          RecipientStorage
	courier          BroadcastCourier
	retry            retry.Policy
	confirmThreshold int
	pause            time.Duration

	mu      sync.Mutex
	pending map[int64]domain.BroadcastMessage
}

func NewBroadcaster(storage RecipientStorage, courier BroadcastCourier, policy retry.Policy, confirmThreshold int) *Broadcaster {
	return &Broadcaster{
		storage:          storage,
		courier:          courier,
		retry:            policy,
		confirmThreshold: confirmThreshold,
		pause:            time.Second,
		pending:          make(map[int64]domain.BroadcastMessage),
	}
}

// Request starts the fan-out immediately when the recipient set is at
// or under the confirm threshold; otherwise it stages msg for the owner
// and reports started=false. The fan-out runs in the background and
// must not block inbound command handling.
func (b *Broadcaster) Request(ctx context.Context, ownerID int64, msg domain.BroadcastMessage, reporter ProgressReporter) (started bool, total int, err error) {
	recipients, err := b.storage.Recipients(ctx)
	if err != nil {
		return false, 0, err
	}
	if len(recipients) > b.confirmThreshold {
		b.mu.Lock()
		b.pending[ownerID] = msg
		b.mu.Unlock()
		return false, len(recipients), nil
	}

	go b.run(ctx, msg, recipients, reporter)
	return true, len(recipients), nil
}

// Confirm starts the owner's staged fan-out.
// errs.ErrNoPendingBroadcast when nothing is staged.
func (b *Broadcaster) Confirm(ctx context.Context, ownerID int64, reporter ProgressReporter) (int, error) {
	b.mu.Lock()
	msg, ok := b.pending[ownerID]
	if ok {
		delete(b.pending, ownerID)
	}
	b.mu.Unlock()
	if !ok {
		return 0, errs.ErrNoPendingBroadcast
	}

	recipients, err := b.storage.Recipients(ctx)
	if err != nil {
		return 0, err
	}
	go b.run(ctx, msg, recipients, reporter)
	return len(recipients), nil
}

// CancelPending discards the owner's staged fan-out, if any.
func (b *Broadcaster) CancelPending(ownerID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[ownerID]
	delete(b.pending, ownerID)
	return ok
}

func (b *Broadcaster) run(ctx context.Context, msg domain.BroadcastMessage, recipients []domain.Recipient, reporter ProgressReporter) {
	runID := uuid.NewString()
	start := time.Now()
	total := len(recipients)
	succeeded, failed := 0, 0

	logger.Log.Info("broadcast started", "run_id", runID, "recipients", total, "kind", msg.Kind)

	for i, recipient := range recipients {
		if i > 0 && i%broadcastPauseEvery == 0 {
			select {
			case <-time.After(b.pause):
			case <-ctx.Done():
				logger.Log.Warn("broadcast interrupted by shutdown", "run_id", runID, "delivered", i)
				return
			}
		}

		if err := b.send(ctx, recipient.UserID, msg); err != nil {
			failed++
			metrics.BroadcastSends.WithLabelValues("failure").Inc()
			logger.Log.Warn("broadcast send failed", "run_id", runID, "recipient", recipient.UserID, "error", err)
		} else {
			succeeded++
			metrics.BroadcastSends.WithLabelValues("success").Inc()
		}

		if (i+1)%broadcastProgressEvery == 0 || i == total-1 {
			reporter.Progress(domain.BroadcastProgress{
				Delivered: i + 1,
				Total:     total,
				Succeeded: succeeded,
				Failed:    failed,
				Elapsed:   time.Since(start),
			})
		}
	}

	report := domain.BroadcastReport{
		RunID:     runID,
		Total:     total,
		Succeeded: succeeded,
		Failed:    failed,
		Elapsed:   time.Since(start),
	}
	logger.Log.Info("broadcast finished", "run_id", runID, "succeeded", succeeded, "failed", failed, "elapsed", report.Elapsed)
	reporter.Done(report)
}

// send applies the retry policy to one recipient. Unsupported content
// kinds fail immediately without a provider round trip.
func (b *Broadcaster) send(ctx context.Context, dest int64, msg domain.BroadcastMessage) error {
	if !msg.Kind.Broadcastable() {
		return fmt.Errorf("unsupported broadcast kind %q", msg.Kind)
	}
	return b.retry.Do(ctx, func(ctx context.Context) error {
		return b.courier.SendBroadcast(ctx, dest, msg)
	})
}
