package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"event-ticketing/pkg/utils"

	"github.com/domodwyer/mailyak/v3"
	"go.uber.org/zap"
)

// MailNotifier delivers notifications as plain-text email over SMTP.
type MailNotifier struct {
	addr string
	auth smtp.Auth
	from string
	log  *zap.Logger
}

func NewMailNotifier(config utils.EmailConfig, log *zap.Logger) *MailNotifier {
	var auth smtp.Auth
	if config.User != "" {
		auth = smtp.PlainAuth("", config.User, config.Password, config.Host)
	}
	return &MailNotifier{
		addr: net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		auth: auth,
		from: config.From,
		log:  log.With(zap.String("notifier", "smtp")),
	}
}

func (n *MailNotifier) Send(ctx context.Context, msg Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body := Render(msg)

	mail := mailyak.New(n.addr, n.auth)
	mail.To(msg.Recipient)
	mail.From(n.from)
	mail.Subject(subject)
	mail.Plain().Set(body)

	if err := mail.Send(); err != nil {
		return fmt.Errorf("send %s email: %w", msg.Kind, err)
	}

	n.log.Debug("Email sent", zap.String("kind", string(msg.Kind)), zap.String("recipient", msg.Recipient))
	return nil
}

// Render produces the subject and plain-text body for a notification.
func Render(msg Notification) (string, string) {
	p := msg.Payload
	var b strings.Builder

	switch msg.Kind {
	case KindPurchaseConfirmation:
		fmt.Fprintf(&b, "Thank you for your purchase for %s.\n\n", p["event_title"])
		fmt.Fprintf(&b, "Reference: %s\nTickets: %s\nTotal: %s\n", p["transaction_ref"], p["ticket_count"], p["total"])
		return "Your tickets for " + p["event_title"], b.String()

	case KindTransferRequest:
		fmt.Fprintf(&b, "%s wants to transfer a ticket for %s to you.\n\n", p["from_username"], p["event_title"])
		fmt.Fprintf(&b, "Accept: %s\nReject: %s\n\n", p["accept_url"], p["reject_url"])
		fmt.Fprintf(&b, "These links expire at %s.\n", p["expires_at"])
		return "Ticket transfer request", b.String()

	case KindTransferAccepted:
		fmt.Fprintf(&b, "%s accepted your ticket for %s.\n", p["to_username"], p["event_title"])
		return "Ticket transfer accepted", b.String()

	case KindTransferRejected:
		fmt.Fprintf(&b, "%s declined your ticket for %s. The ticket is still yours.\n", p["to_username"], p["event_title"])
		return "Ticket transfer rejected", b.String()

	case KindTransferCancelled:
		fmt.Fprintf(&b, "%s cancelled the ticket transfer for %s. The links you received no longer work.\n", p["from_username"], p["event_title"])
		return "Ticket transfer cancelled", b.String()

	case KindTransferExpired:
		fmt.Fprintf(&b, "The ticket transfer for %s expired before it was answered.\n", p["event_title"])
		return "Ticket transfer expired", b.String()
	}

	fmt.Fprintf(&b, "%v\n", p)
	return string(msg.Kind), b.String()
}
