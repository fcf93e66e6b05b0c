package worker

import (
	"encoding/json"

	"github.com/staylane/bookings/internal/platform/mailer"
	"github.com/staylane/bookings/pkg/events"
	"github.com/staylane/bookings/pkg/logger"
)

// Notifier emails guests when their order materializes. It consumes
// order.created on a queue group so only one instance sends per order.
type Notifier struct {
	bus    events.EventBus
	mailer mailer.Service
}

func NewNotifier(bus events.EventBus, m mailer.Service) *Notifier {
	return &Notifier{bus: bus, mailer: m}
}

func (n *Notifier) Start() error {
	return n.bus.QueueSubscribe(events.OrderCreated, "notify", n.handleOrderCreated)
}

func (n *Notifier) handleOrderCreated(msg *events.Message) {
	var event events.OrderCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode order created event", "error", err)
		return
	}
	if event.GuestEmail == "" {
		return
	}

	if err := n.mailer.SendOrderConfirmation(event.GuestEmail, event.GuestName, event.ListingTitle, event.AmountTotal); err != nil {
		logger.Error("Failed to send order confirmation email",
			"error", err, "order_id", event.OrderID, "to", event.GuestEmail)
		return
	}
	logger.Info("Order confirmation email sent", "order_id", event.OrderID, "to", event.GuestEmail)
}
