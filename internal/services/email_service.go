package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookscope/bookscope/internal/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService delivers generated reports through SendGrid.
type EmailService struct {
	apiKey      string
	fromEmail   string
	fromName    string
	frontendURL string
}

func NewEmailService(apiKey, fromEmail, fromName, frontendURL string) *EmailService {
	return &EmailService{
		apiKey:      apiKey,
		fromEmail:   fromEmail,
		fromName:    fromName,
		frontendURL: frontendURL,
	}
}

// SendReport mails the report PDF at pdfPath to the buyer.
func (s *EmailService) SendReport(toEmail, bookTitle, bookAuthor, pdfPath string, plan models.PlanType) error {
	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("reading report pdf: %w", err)
	}

	planLabel := strings.ToUpper(string(plan)[:1]) + string(plan)[1:]

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	subject := fmt.Sprintf("Your %s Report: %s", planLabel, bookTitle)

	plain := fmt.Sprintf("Your %s literary analysis report for %q by %s is attached as a PDF.",
		planLabel, bookTitle, bookAuthor)
	html := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<h1 style="color: #2c3e50;">Your Bookscope Report is Ready!</h1>
<p>Thank you for using Bookscope! Your <strong>%s</strong> literary analysis report for:</p>
<div style="background-color: #ecf0f1; padding: 15px; border-left: 4px solid #3498db;">
<h2 style="margin: 0;">%s</h2>
<p style="margin: 5px 0; color: #7f8c8d;">by %s</p>
</div>
<p>Your comprehensive report is attached to this email as a PDF document.</p>
<p>Need another report? Visit <a href="%s">Bookscope</a> anytime!</p>
</body></html>`, planLabel, bookTitle, bookAuthor, s.frontendURL)

	message := mail.NewSingleEmail(from, subject, to, plain, html)

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(pdfData))
	attachment.SetType("application/pdf")
	attachment.SetFilename(attachmentName(bookTitle))
	attachment.SetDisposition("attachment")
	message.AddAttachment(attachment)

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected report email: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func attachmentName(bookTitle string) string {
	name := strings.ReplaceAll(bookTitle, " ", "_")
	return filepath.Base(name) + "_report.pdf"
}
