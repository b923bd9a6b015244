// Package outbox logs every outbound message per establishment and guards
// against re-mailing the same template within a cooldown window.
package outbox

import (
	"context"
	"time"

	"prospect_backend/platform/logger"

	"github.com/google/uuid"
)

// DuplicateWindowDays is the cooldown: the same template is not sent twice to
// one establishment within this many days.
const DuplicateWindowDays = 30

type Store interface {
	RecordSent(ctx context.Context, establishmentID uuid.UUID, recipient, template string) error
	SentSince(ctx context.Context, establishmentID uuid.UUID, template string, since time.Time) (bool, error)
}

type SendFunc func(ctx context.Context) error

type Outbox struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func New(store Store, log *logger.Logger) *Outbox {
	return &Outbox{store: store, log: log, now: time.Now}
}

// WithNow overrides the clock in tests.
func (o *Outbox) WithNow(now func() time.Time) *Outbox {
	o.now = now
	return o
}

// SendGuarded runs send unless the same template already went out to the
// establishment within the duplicate window. A skipped send is not an error.
// Returns whether the message was actually sent.
func (o *Outbox) SendGuarded(ctx context.Context, establishmentID uuid.UUID, recipient, template string, send SendFunc) (bool, error) {
	since := o.now().AddDate(0, 0, -DuplicateWindowDays)
	sent, err := o.store.SentSince(ctx, establishmentID, template, since)
	if err != nil {
		return false, err
	}
	if sent {
		o.log.Info("outbound message suppressed by duplicate window",
			"establishment_id", establishmentID,
			"template", template,
		)
		return false, nil
	}

	if err := send(ctx); err != nil {
		return false, err
	}

	if err := o.store.RecordSent(ctx, establishmentID, recipient, template); err != nil {
		// The mail left the building; a missing log row only weakens the
		// duplicate window.
		o.log.CollaboratorWarning("outbox", "record sent", err)
	}
	return true, nil
}
