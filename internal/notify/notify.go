// Package notify delivers transactional emails for booking lifecycle
// events. Delivery is best-effort everywhere: a failed send is logged
// and never blocks or rolls back the transition that triggered it.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/gomail.v2"
)

type Template string

const (
	TemplateInquiryCreated   Template = "inquiry_created"
	TemplateBookingAccepted  Template = "booking_accepted"
	TemplateBookingRejected  Template = "booking_rejected"
	TemplatePaymentCompleted Template = "payment_completed"
	TemplatePaymentReminder  Template = "payment_reminder"
	TemplateBookingExpired   Template = "booking_expired"
)

var subjects = map[Template]string{
	TemplateInquiryCreated:   "We received your booking inquiry",
	TemplateBookingAccepted:  "Your booking has been accepted",
	TemplateBookingRejected:  "Update on your booking inquiry",
	TemplatePaymentCompleted: "Payment received - booking confirmed",
	TemplatePaymentReminder:  "Payment reminder for your booking",
	TemplateBookingExpired:   "Your booking was cancelled",
}

// Notifier sends one templated message to one recipient.
type Notifier interface {
	Send(template Template, recipient string, data map[string]any) error
}

// SMTPNotifier delivers over SMTP via gomail.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (n *SMTPNotifier) Send(template Template, recipient string, data map[string]any) error {
	subject, ok := subjects[template]
	if !ok {
		return fmt.Errorf("unknown notification template: %q", template)
	}

	body := subject + "\n\n"
	for k, v := range data {
		body += fmt.Sprintf("%s: %v\n", k, v)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", template, recipient, err)
	}
	return nil
}

// Dispatcher is the best-effort wrapper the services call: each send
// runs in its own goroutine so a slow SMTP dial never holds up the
// transition that triggered it, and errors are logged and swallowed.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger}
}

func (d *Dispatcher) Dispatch(template Template, recipient string, data map[string]any) {
	if d.notifier == nil || recipient == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.notifier.Send(template, recipient, data); err != nil {
			d.logger.Error("notification send failed",
				"template", string(template),
				"recipient", recipient,
				"error", err,
			)
		}
	}()
}

// Wait blocks until every in-flight send has finished. Shutdown calls
// it so queued notifications are not cut off mid-send.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
