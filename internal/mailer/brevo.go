package mailer

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

//go:embed templates/*.html
var templateFS embed.FS

// BrevoMailer sends transactional emails via the Brevo (Sendinblue) HTTP API v3.
type BrevoMailer struct {
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
	logger      *zap.SugaredLogger
	templates   map[string]*template.Template
	configured  bool
}

// NewBrevoMailer initializes the mailer and pre-parses the embedded templates.
// When the API key or sender is missing the mailer is a logging no-op, so local
// setups work without credentials.
func NewBrevoMailer(apiKey, senderEmail, senderName string, logger *zap.SugaredLogger) *BrevoMailer {
	templates := map[string]*template.Template{
		"verify":        template.Must(template.ParseFS(templateFS, "templates/verify_email.html")),
		"verify_again":  template.Must(template.ParseFS(templateFS, "templates/verify_email_reminder.html")),
		"reset":         template.Must(template.ParseFS(templateFS, "templates/reset_password.html")),
		"reset_confirm": template.Must(template.ParseFS(templateFS, "templates/reset_password_confirm.html")),
	}

	return &BrevoMailer{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
		templates:   templates,
		configured:  apiKey != "" && senderEmail != "",
	}
}

// IsConfigured returns true when the mailer holds usable credentials.
func (m *BrevoMailer) IsConfigured() bool {
	return m.configured
}

type templateData struct {
	Name string
	Link string
}

func (m *BrevoMailer) send(ctx context.Context, to, subject, templateKey string, data templateData) error {
	if !m.configured {
		m.logger.Warnf("mailer not configured, skipping %q email to %s", templateKey, to)
		return nil
	}

	tpl, ok := m.templates[templateKey]
	if !ok {
		return fmt.Errorf("template %q not found", templateKey)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return err
	}

	payload := map[string]any{
		"sender":      map[string]string{"name": m.senderName, "email": m.senderEmail},
		"to":          []map[string]string{{"email": to, "name": data.Name}},
		"subject":     subject,
		"htmlContent": buf.String(),
	}
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		m.logger.Infof("email sent to %s subject=%s", to, subject)
		return nil
	}
	return fmt.Errorf("brevo send failed status=%d", resp.StatusCode)
}

func (m *BrevoMailer) SendVerifyEmail(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, "Verify your email address", "verify", templateData{Name: name, Link: link})
}

func (m *BrevoMailer) SendVerifyEmailReminder(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, "Please verify your email address", "verify_again", templateData{Name: name, Link: link})
}

func (m *BrevoMailer) SendResetPasswordEmail(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, "Reset your password", "reset", templateData{Name: name, Link: link})
}

func (m *BrevoMailer) SendConfirmResetPasswordEmail(ctx context.Context, to, name, link string) error {
	return m.send(ctx, to, "Your password has been reset", "reset_confirm", templateData{Name: name, Link: link})
}
