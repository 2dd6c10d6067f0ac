// Package notify sends the post-run failure report by email.
package notify

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jose-deblas/dashboardcwv/internal/collector"
)

// EmailNotifier mails a plain-text failure report when a run ends with at
// least one failed URL. A nil notifier is a no-op, so callers can wire it
// unconditionally.
type EmailNotifier struct {
	client      *sendgrid.Client
	to          string
	fromName    string
	fromAddress string
	logger      zerolog.Logger
}

func NewEmailNotifier(apiKey, to, fromName, fromAddress string, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		client:      sendgrid.NewSendClient(apiKey),
		to:          to,
		fromName:    fromName,
		fromAddress: fromAddress,
		logger:      logger,
	}
}

// NotifyFailures sends the report. It does nothing when the notifier is nil
// or the run had no failures.
func (n *EmailNotifier) NotifyFailures(summary *collector.Summary) error {
	if n == nil {
		return nil
	}

	failed := summary.FailedResults()
	if len(failed) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Core Web Vitals collection: %d of %d URLs failed on %s",
		summary.Failed, summary.TotalURLs, summary.ExecutionDate.Format("2006-01-02"))
	body := buildReport(summary, failed)

	from := mail.NewEmail(n.fromName, n.fromAddress)
	to := mail.NewEmail("", n.to)
	email := mail.NewSingleEmail(from, subject, to, body, body)

	response, err := n.client.Send(email)
	if err != nil {
		return fmt.Errorf("failed to send failure report: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}

	n.logger.Info().
		Str("to", n.to).
		Int("failed_urls", len(failed)).
		Msg("failure report sent")

	return nil
}

func buildReport(summary *collector.Summary, failed []collector.URLResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Collection run %s for %s\n\n",
		summary.RunID, summary.ExecutionDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Total: %d  Successful: %d  Failed: %d  Skipped: %d\n\n",
		summary.TotalURLs, summary.Successful, summary.Failed, summary.Skipped)

	sb.WriteString("Failed URLs:\n")
	for _, r := range failed {
		fmt.Fprintf(&sb, "- [%d] %s: %s\n", r.URLID, r.URL, r.Error)
	}

	return sb.String()
}
