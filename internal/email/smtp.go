package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendFollowUpEmail(ctx context.Context, toEmail, establishmentName, contactName, followUpDate, followUpTime string) error {
	subject := fmt.Sprintf(subjectFollowUpFmt, followUpDate)
	content, err := renderEmailTemplate("follow_up.html", followUpEmailData{
		baseEmailData: baseEmailData{
			Title:   "Vervolgafspraak",
			Heading: "Vervolgafspraak",
		},
		EstablishmentName: establishmentName,
		ContactName:       contactName,
		FollowUpDate:      followUpDate,
		FollowUpTime:      followUpTime,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendInterestedAlertEmail(ctx context.Context, toEmail, establishmentName, phone, contactName, urgency string) error {
	subject := fmt.Sprintf(subjectInterestedAlertFmt, establishmentName)
	content, err := renderEmailTemplate("interested_alert.html", interestedAlertEmailData{
		baseEmailData: baseEmailData{
			Title:   "Afspraakverzoek",
			Heading: "Afspraakverzoek",
		},
		EstablishmentName: establishmentName,
		Phone:             phone,
		ContactName:       contactName,
		Urgency:           urgency,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendTransferAlertEmail(ctx context.Context, toEmail, establishmentName, phone, reason, note string) error {
	subject := fmt.Sprintf(subjectTransferAlertFmt, establishmentName)
	content, err := renderEmailTemplate("transfer_alert.html", transferAlertEmailData{
		baseEmailData: baseEmailData{
			Title:   "Overdracht gevraagd",
			Heading: "Overdracht gevraagd",
		},
		EstablishmentName: establishmentName,
		Phone:             phone,
		Reason:            reason,
		Note:              note,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return s.send(ctx, toEmail, subject, htmlContent)
}

var _ Sender = (*SMTPSender)(nil)
