package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	appURL   string
	log      *logger.Logger
}

// NewEmailService creates a new email service instance
func NewEmailService(env *config.EnvironmentVariable, log *logger.Logger) *EmailService {
	return &EmailService{
		host:     env.SMTP_HOST,
		port:     env.SMTP_PORT,
		username: env.SMTP_USERNAME,
		password: env.SMTP_PASSWORD,
		from:     env.SMTP_FROM,
		appURL:   strings.TrimRight(env.APP_URL, "/"),
		log:      log,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

var emailTemplates = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
<h2 style="color: #1f4e79;">{{.Subject}}</h2>
<p>Hi {{.Name}},</p>
{{template "body" .}}
<p style="margin-top: 30px; color: #999; font-size: 13px;">LearnHub</p>
</body>
</html>
{{define "reset"}}
<p>We received a request to reset your password. The link below is valid for one hour.</p>
<p><a href="{{.Link}}" style="background: #1f4e79; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Reset Password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>
{{end}}
{{define "receipt"}}
<p>You are now enrolled in <strong>{{.CourseTitle}}</strong>.</p>
<table cellpadding="6" style="border-collapse: collapse;">
<tr><td>Price</td><td>{{.Price}}</td></tr>
<tr><td>Discount</td><td>{{.Discount}}</td></tr>
<tr><td><strong>Total</strong></td><td><strong>{{.Total}}</strong></td></tr>
</table>
<p><a href="{{.Link}}">Start learning</a></p>
{{end}}`))

type emailData struct {
	Subject     string
	Name        string
	Link        string
	CourseTitle string
	Price       string
	Discount    string
	Total       string
}

// SendPasswordResetEmail sends a password reset email to the user
func (e *EmailService) SendPasswordResetEmail(toEmail, resetToken, userName string) error {
	if !e.IsConfigured() {
		e.log.Warn("smtp not configured, password reset email skipped", "email", toEmail)
		return fmt.Errorf("SMTP not configured")
	}

	data := emailData{
		Subject: "Reset your password",
		Name:    displayName(userName),
		Link:    fmt.Sprintf("%s/reset-password?token=%s", e.appURL, resetToken),
	}
	return e.render(toEmail, "reset", data)
}

// EnrollmentReceipt is the data printed on an enrollment confirmation.
type EnrollmentReceipt struct {
	Email       string
	Name        string
	CourseID    uint
	CourseTitle string
	Currency    string
	Price       int64
	Discount    int64
	Total       int64
}

// SendEnrollmentReceipt confirms a new enrollment to the student
func (e *EmailService) SendEnrollmentReceipt(r EnrollmentReceipt) error {
	if !e.IsConfigured() {
		e.log.Debug("smtp not configured, enrollment receipt skipped", "email", r.Email)
		return nil
	}

	data := emailData{
		Subject:     "Enrollment confirmed: " + r.CourseTitle,
		Name:        displayName(r.Name),
		Link:        fmt.Sprintf("%s/courses/%d", e.appURL, r.CourseID),
		CourseTitle: r.CourseTitle,
		Price:       FormatAmount(r.Price, r.Currency),
		Discount:    FormatAmount(r.Discount, r.Currency),
		Total:       FormatAmount(r.Total, r.Currency),
	}
	return e.render(r.Email, "receipt", data)
}

func (e *EmailService) render(to, body string, data emailData) error {
	tmpl, err := emailTemplates.Clone()
	if err != nil {
		return err
	}
	if _, err := tmpl.New("body").Parse(`{{template "` + body + `" .}}`); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	return e.sendEmail(to, data.Subject, buf.String())
}

// FormatAmount renders minor units as a decimal amount, e.g. 85000 INR -> "INR 850.00".
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, minor/100, minor%100)
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

// sendEmail sends an email using SMTP with TLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	var message strings.Builder
	fmt.Fprintf(&message, "From: LearnHub <%s>\r\n", e.from)
	fmt.Fprintf(&message, "To: %s\r\n", to)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	conn, err := smtp.Dial(fmt.Sprintf("%s:%d", e.host, e.port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(smtp.PlainAuth("", e.username, e.password, e.host)); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	e.log.Info("email sent", "to", to, "subject", subject)
	return conn.Quit()
}
