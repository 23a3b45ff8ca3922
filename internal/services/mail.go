package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"
)

// ResendConfig represents Resend email service configuration
type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string // overrides the Resend API endpoint, used in tests
}

// MailService sends transactional mail via the Resend API. There is no
// queueing or delivery tracking; a failed send surfaces to the caller.
type MailService struct {
	config  ResendConfig
	client  *http.Client
	baseURL string
}

// NewMailService creates a new Resend-backed mail service.
func NewMailService(config ResendConfig) *MailService {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &MailService{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// resendEmailRequest represents the request structure for the Resend API
type resendEmailRequest struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	ReplyTo string      `json:"reply_to,omitempty"`
	Subject string      `json:"subject"`
	HTML    string      `json:"html,omitempty"`
	Text    string      `json:"text,omitempty"`
	Tags    []resendTag `json:"tags,omitempty"`
}

type resendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resendErrorResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (s *MailService) getFromField() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

// SendContactMessage forwards a contact-form submission to the support
// inbox, with the visitor set as reply-to.
func (s *MailService) SendContactMessage(name, email, message string) error {
	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Contact Message</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4F46E5; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .meta { color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Contact Message</h1>
        </div>
        <div class="content">
            <p class="meta">From: %s (%s)</p>
            <p>%s</p>
        </div>
    </div>
</body>
</html>`, html.EscapeString(name), html.EscapeString(email), html.EscapeString(message))

	textContent := fmt.Sprintf("New contact message\n\nFrom: %s (%s)\n\n%s", name, email, message)

	request := resendEmailRequest{
		From:    s.getFromField(),
		To:      []string{s.config.FromEmail},
		ReplyTo: email,
		Subject: fmt.Sprintf("Contact form: message from %s", name),
		HTML:    htmlContent,
		Text:    textContent,
		Tags: []resendTag{
			{Name: "category", Value: "contact"},
		},
	}

	return s.sendEmail(request)
}

// SendSubscribeWelcome greets a new newsletter subscriber.
func (s *MailService) SendSubscribeWelcome(email string) error {
	htmlContent := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Welcome</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #7C3AED; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Welcome to TicketLive!</h1>
        </div>
        <div class="content">
            <p>Thanks for subscribing to our newsletter.</p>
            <p>You'll be the first to hear about new events, presales, and exclusive discount codes.</p>
        </div>
        <div class="footer">
            <p>TicketLive Team</p>
        </div>
    </div>
</body>
</html>`

	textContent := `Welcome to TicketLive!

Thanks for subscribing to our newsletter.

You'll be the first to hear about new events, presales, and exclusive discount codes.

TicketLive Team`

	request := resendEmailRequest{
		From:    s.getFromField(),
		To:      []string{email},
		Subject: "Welcome to the TicketLive newsletter",
		HTML:    htmlContent,
		Text:    textContent,
		Tags: []resendTag{
			{Name: "category", Value: "subscribe_welcome"},
		},
	}

	return s.sendEmail(request)
}

// SendNewsletter delivers a composed newsletter to one recipient. The
// admin handler iterates subscribers; a failure stops at the failing
// recipient and reports it.
func (s *MailService) SendNewsletter(email, subject, htmlBody string) error {
	request := resendEmailRequest{
		From:    s.getFromField(),
		To:      []string{email},
		Subject: subject,
		HTML:    htmlBody,
		Tags: []resendTag{
			{Name: "category", Value: "newsletter"},
		},
	}

	return s.sendEmail(request)
}

// sendEmail sends an email via the Resend API
func (s *MailService) sendEmail(request resendEmailRequest) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL+"/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorResp resendErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
			return fmt.Errorf("failed to send email, status: %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to send email: %s", errorResp.Message)
	}

	return nil
}
