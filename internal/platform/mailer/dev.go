package mailer

import (
	"fmt"

	"github.com/staylane/bookings/pkg/logger"
)

// DevMailer logs emails instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("[DEV MAIL]", "to", toEmail, "name", toName, "subject", subject, "text", text)
	return "dev", nil
}

func (d *DevMailer) SendOrderConfirmation(toEmail, toName, listingTitle string, amountTotal int64) error {
	_, err := d.Send(toEmail, toName,
		"Your StayLane booking is confirmed",
		fmt.Sprintf("Booking confirmed for %q, amount %d (minor units)", listingTitle, amountTotal),
		"")
	return err
}

var _ Service = (*DevMailer)(nil)
