package email

import (
	"context"
	"errors"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/orris-inc/paypoint/internal/application/payment/usecases"
	"github.com/orris-inc/paypoint/internal/shared/config"
	"github.com/orris-inc/paypoint/internal/shared/logger"
	"github.com/orris-inc/paypoint/internal/shared/utils"
)

var ErrEmailServiceNotConfigured = errors.New("email service not configured")

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPEmailService struct {
	config config.EmailConfig
	sender sender
	logger logger.Interface
}

func NewSMTPEmailService(cfg config.EmailConfig, logger logger.Interface) *SMTPEmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)

	return &SMTPEmailService{
		config: cfg,
		sender: dialer,
		logger: logger,
	}
}

// NotifyOrderPaid tells the operators that the gateway confirmed an order.
func (s *SMTPEmailService) NotifyOrderPaid(ctx context.Context, cmd usecases.OrderPaidCommand) error {
	if len(s.config.OperatorEmails) == 0 {
		return ErrEmailServiceNotConfigured
	}

	amount := cmd.Total.StringFixed(2) + " " + cmd.Currency
	subject := fmt.Sprintf("Order #%d paid via PayPoint", cmd.OrderID)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Order #%d has been paid</h2>
			<table>
				<tr><td>Order GUID</td><td>%s</td></tr>
				<tr><td>Amount</td><td>%s</td></tr>
				<tr><td>Customer</td><td>%s</td></tr>
				<tr><td>Gateway</td><td>%s</td></tr>
				<tr><td>Transaction</td><td>%s</td></tr>
				<tr><td>Paid at</td><td>%s</td></tr>
			</table>
		</body>
		</html>
	`, cmd.OrderID,
		html.EscapeString(cmd.OrderGUID),
		html.EscapeString(amount),
		html.EscapeString(utils.MaskEmail(cmd.CustomerEmail)),
		html.EscapeString(cmd.Variant),
		html.EscapeString(cmd.TransactionID),
		cmd.PaidAt.UTC().Format("2006-01-02 15:04:05 UTC"),
	)

	plainBody := fmt.Sprintf(`
Order #%d has been paid

Order GUID:  %s
Amount:      %s
Customer:    %s
Gateway:     %s
Transaction: %s
Paid at:     %s
	`, cmd.OrderID, cmd.OrderGUID, amount, utils.MaskEmail(cmd.CustomerEmail), cmd.Variant, cmd.TransactionID,
		cmd.PaidAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.sendEmail(s.config.OperatorEmails, subject, htmlBody, plainBody); err != nil {
		return err
	}

	s.logger.Infow("paid order notification sent", "order_id", cmd.OrderID, "recipients", len(s.config.OperatorEmails))
	return nil
}

func (s *SMTPEmailService) sendEmail(to []string, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
