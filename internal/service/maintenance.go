package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	q "github.com/journiq/tour-booking-api/internal/queue"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// sweepBatch bounds the number of entries re-published per run.
const sweepBatch = 100

// tokenGrace keeps expired refresh-token rows around briefly so
// support can still see recent sessions.
const tokenGrace = 7 * 24 * time.Hour

// StartMaintenance schedules the background jobs: the outbox sweep
// every minute and a daily purge of long-expired refresh tokens.  It
// returns the scheduler so the caller can stop it on shutdown.
//
// The consumer normally drains the queue within seconds of the
// original publish; the sweep exists for the cases where that publish
// was lost, the broker was down or the worker crashed mid-delivery.
func StartMaintenance(outbox *repository.OutboxRepo, tokens *repository.TokenRepo, pub *Publisher) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@every 1m", func() { sweepOutbox(outbox, pub) }); err != nil {
		log.Printf("maintenance: schedule outbox sweep failed: %v", err)
	}
	if _, err := c.AddFunc("@daily", func() { purgeTokens(tokens) }); err != nil {
		log.Printf("maintenance: schedule token purge failed: %v", err)
	}

	c.Start()
	return c
}

func sweepOutbox(outbox *repository.OutboxRepo, pub *Publisher) {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	entries, err := outbox.ListPending(ctx, sweepBatch)
	if err != nil {
		log.Printf("outbox-sweep: list pending failed: %v", err)
		return
	}
	if len(entries) == 0 {
		return
	}
	log.Printf("outbox-sweep: re-publishing %d pending entries", len(entries))
	for _, e := range entries {
		ev := q.EmailQueuedEvent{
			UUID:      e.UUID,
			Recipient: e.Recipient,
			Subject:   e.Subject,
			Template:  e.Template,
			Payload:   e.Payload,
			QueuedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		}
		_ = pub.PublishEmailQueued(ctx, ev)
	}
}

func purgeTokens(tokens *repository.TokenRepo) {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	n, err := tokens.DeleteExpired(ctx, time.Now().UTC().Add(-tokenGrace))
	if err != nil {
		log.Printf("token-purge: %v", err)
		return
	}
	if n > 0 {
		log.Printf("token-purge: removed %d expired sessions", n)
	}
}
