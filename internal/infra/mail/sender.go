package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

var dealCreatedTemplate = template.Must(template.New("deal_created").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>New deal: {{.DealTitle}}</h2>
  <p>A qualified lead was converted into a deal.</p>
  <table cellpadding="6">
    <tr><td><strong>Value</strong></td><td>{{.DealValue}}</td></tr>
    <tr><td><strong>Channel</strong></td><td>{{.Channel}}</td></tr>
    <tr><td><strong>Priority</strong></td><td>{{.Priority}}</td></tr>
    <tr><td><strong>Expected close</strong></td><td>{{.CloseDate}}</td></tr>
    <tr><td><strong>Lead</strong></td><td>{{.LeadName}}{{if .CompanyName}} ({{.CompanyName}}){{end}}</td></tr>
    {{if .LeadEmail}}<tr><td><strong>Email</strong></td><td>{{.LeadEmail}}</td></tr>{{end}}
    {{if .LeadPhone}}<tr><td><strong>Phone</strong></td><td>{{.LeadPhone}}</td></tr>{{end}}
    <tr><td><strong>Lead score</strong></td><td>{{.LeadScore}}/100</td></tr>
  </table>
</body>
</html>
`))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers CRM notifications over SMTP.
type EmailSender struct {
	cfg    Config
	dialer dialer
	logger *zap.Logger
}

func NewEmailSender(cfg Config, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		logger: logger,
	}
}

// NotifyDealCreated mails the sales inbox about a freshly converted deal.
// Without an SMTP host or recipient it does nothing.
func (s *EmailSender) NotifyDealCreated(ctx context.Context, deal *entity.Deal, lead *entity.Lead) error {
	if s.cfg.Host == "" || s.cfg.SalesTo == "" {
		s.logger.Debug("smtp not configured, skipping deal notification", zap.String("deal_id", deal.ID))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := DealCreatedEmailData{
		DealTitle:   deal.Title,
		DealValue:   fmt.Sprintf("%.2f", deal.Value),
		Channel:     deal.Channel,
		Priority:    string(deal.Priority),
		LeadName:    lead.Name,
		LeadEmail:   lead.Email,
		LeadPhone:   lead.Phone,
		CompanyName: lead.CompanyName,
		LeadScore:   lead.Score,
		CloseDate:   deal.ExpectedCloseDate.Format("2006-01-02"),
	}

	var body bytes.Buffer
	if err := dealCreatedTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render deal email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.SalesTo)
	m.SetHeader("Subject", "New deal: "+deal.Title)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send deal email: %w", err)
	}

	s.logger.Info("deal notification sent", zap.String("deal_id", deal.ID), zap.String("to", s.cfg.SalesTo))
	return nil
}
