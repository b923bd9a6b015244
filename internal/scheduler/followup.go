package scheduler

import (
	"context"
	"errors"

	callbackrepo "prospect_backend/internal/callbacks/repository"
	"prospect_backend/internal/email"
	"prospect_backend/internal/email/outbox"
	"prospect_backend/internal/establishments/domain"
	estrepo "prospect_backend/internal/establishments/repository"
	"prospect_backend/platform/logger"

	"github.com/google/uuid"
)

const followUpTemplate = "follow_up"

// CallbackReader loads a callback by id.
type CallbackReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (callbackrepo.Callback, error)
}

// EstablishmentReader loads an establishment by id.
type EstablishmentReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Establishment, error)
}

// Guard applies the duplicate window around an actual delivery.
type Guard interface {
	SendGuarded(ctx context.Context, establishmentID uuid.UUID, recipient, template string, send outbox.SendFunc) (bool, error)
}

// FollowUpDispatcher decides, at dispatch time, whether a queued follow-up
// mail should still go out. The enqueue happened when the callback was
// scheduled; the callback may have been superseded or the establishment
// blocked since.
type FollowUpDispatcher struct {
	callbacks CallbackReader
	ests      EstablishmentReader
	guard     Guard
	sender    email.Sender
	log       *logger.Logger
}

func NewFollowUpDispatcher(callbacks CallbackReader, ests EstablishmentReader, guard Guard, sender email.Sender, log *logger.Logger) *FollowUpDispatcher {
	return &FollowUpDispatcher{
		callbacks: callbacks,
		ests:      ests,
		guard:     guard,
		sender:    sender,
		log:       log,
	}
}

func (d *FollowUpDispatcher) Dispatch(ctx context.Context, callbackID, establishmentID uuid.UUID) error {
	cb, err := d.callbacks.GetByID(ctx, callbackID)
	if err != nil {
		if errors.Is(err, callbackrepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if cb.Resolved {
		return nil
	}

	est, err := d.ests.GetByID(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, estrepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if est.Email == "" || est.Status == domain.StatusDoNotCall {
		return nil
	}

	sent, err := d.guard.SendGuarded(ctx, est.ID, est.Email, followUpTemplate, func(ctx context.Context) error {
		return d.sender.SendFollowUpEmail(ctx, est.Email, est.Name, cb.ContactName, cb.DueDate.Format("2006-01-02"), cb.DueTime)
	})
	if err != nil {
		return err
	}
	if sent {
		d.log.Info("follow-up email dispatched",
			"establishment_id", est.ID,
			"callback_id", cb.ID,
		)
	}
	return nil
}
