package mailer

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendOrderConfirmation(toEmail, toName, listingTitle string, amountTotal int64) error
}
