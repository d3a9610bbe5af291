package services

import (
	"context"
	"errors"

	"gatepass-backend/internal/models"
	"gatepass-backend/pkg/events"
)

// Notifiers fans an event out to every sink and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) NotifyPass(ctx context.Context, event models.PassEvent) error {
	var errs []error
	for _, n := range ns {
		if err := n.NotifyPass(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BusNotifier publishes pass events to the message bus under gatepass.<type>.
type BusNotifier struct {
	publisher events.Publisher
}

func NewBusNotifier(p events.Publisher) *BusNotifier {
	return &BusNotifier{publisher: p}
}

func (b *BusNotifier) NotifyPass(ctx context.Context, event models.PassEvent) error {
	return b.publisher.Publish(ctx, events.Subject(string(event.Type)), event)
}
