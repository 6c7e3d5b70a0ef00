package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/ZinoM21/any-cv-api/config"
)

// EmailService handles sending transactional emails via SMTP
type EmailService struct {
	host        string
	port        string
	username    string
	password    string
	fromEmail   string
	frontendURL string
}

// NewEmailService creates a new email service with Brevo SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		fromEmail:   cfg.SMTPFromEmail,
		frontendURL: cfg.FrontendURL,
	}
}

// IsConfigured reports whether SMTP credentials are present. Without them
// email sending is skipped instead of failing requests.
func (s *EmailService) IsConfigured() bool {
	return s.username != "" && s.password != ""
}

type linkEmailData struct {
	Name string
	Link string
}

// verificationEmailTemplate is the HTML template for email verification
const verificationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Verify your email</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; padding: 12px 24px; background: #0066cc; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Verify your email</h1>
        </div>
        <div class="content">
            <p>Hi {{.Name}},</p>
            <p>Thanks for signing up. Please confirm your email address to activate your account:</p>
            <p><a class="button" href="{{.Link}}">Verify email</a></p>
            <p>If the button does not work, copy this link into your browser:</p>
            <p>{{.Link}}</p>
        </div>
        <div class="footer">
            <p>If you did not create this account, you can ignore this email.</p>
        </div>
    </div>
</body>
</html>`

// passwordResetEmailTemplate is the HTML template for password reset requests
const passwordResetEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reset your password</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; padding: 12px 24px; background: #0066cc; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Reset your password</h1>
        </div>
        <div class="content">
            <p>Hi {{.Name}},</p>
            <p>We received a request to reset the password of your account. Click the button below to choose a new one:</p>
            <p><a class="button" href="{{.Link}}">Reset password</a></p>
            <p>The link is valid for a limited time. If the button does not work, copy this link into your browser:</p>
            <p>{{.Link}}</p>
        </div>
        <div class="footer">
            <p>If you did not request a password reset, you can ignore this email. Your password stays unchanged.</p>
        </div>
    </div>
</body>
</html>`

// SendVerificationEmail sends the email-verification link to a new user
func (s *EmailService) SendVerificationEmail(toEmail, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, token)
	return s.send(toEmail, "Verify your email address", verificationEmailTemplate, linkEmailData{
		Name: name,
		Link: link,
	})
}

// SendPasswordResetEmail sends the password-reset link
func (s *EmailService) SendPasswordResetEmail(toEmail, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	return s.send(toEmail, "Reset your password", passwordResetEmailTemplate, linkEmailData{
		Name: name,
		Link: link,
	})
}

func (s *EmailService) send(toEmail, subject, tmplText string, data linkEmailData) error {
	tmpl, err := template.New("email").Parse(tmplText)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	// Construct MIME message
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		toEmail,
		subject,
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
