/* notify.go
 * Contains the notifiers used to tell administrators that an aggregation run finished
 */

package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fight-records/api/store"
	"fight-records/pkg/logger"

	"github.com/resend/resend-go/v2"
)

// Notifier reports a finished run. Implementations must not retain the summary
type Notifier interface {
	NotifyRun(ctx context.Context, summary store.RunSummary) error
}

// ResendNotifier emails run summaries through the Resend API
type ResendNotifier struct {
	client *resend.Client
	from   string
	to     []string
	log    logger.Logger
}

// NewResendNotifier creates a notifier sending from `from` to every address in `to`
// Preconditions: apiKey is a valid Resend API key and to holds at least one address
// Postconditions: Returns a ready to use notifier
func NewResendNotifier(apiKey, from string, to []string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
		log:    logger.Named("notify"),
	}
}

// NotifyRun emails the summary
// Preconditions: Receives a context and the summary of a completed run
// Postconditions: The email is queued for delivery or an error is returned
func (n *ResendNotifier) NotifyRun(ctx context.Context, summary store.RunSummary) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: Subject(summary),
		Text:    Body(summary),
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	n.log.Info(ctx, "run_summary_sent", logger.String("message_id", sent.Id), logger.String("run_id", summary.RunID))
	return nil
}

// NoopNotifier logs the run instead of delivering it. Used when no mail provider is configured
type NoopNotifier struct{}

func (NoopNotifier) NotifyRun(ctx context.Context, summary store.RunSummary) error {
	logger.Named("notify").Debug(ctx, "run_summary_not_sent",
		logger.String("run_id", summary.RunID),
		logger.String("subject", Subject(summary)),
	)
	return nil
}

// Subject builds the email subject for a run
func Subject(summary store.RunSummary) string {
	status := "completed"
	if summary.FightersFailed > 0 || summary.EventsSkipped > 0 {
		status = "completed with problems"
	}
	return fmt.Sprintf("Fighter records %s %d %s", summary.SanctioningBody, summary.Year, status)
}

// Body renders the plain text email body for a run
func Body(summary store.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s for %s %d\n", summary.RunID, summary.SanctioningBody, summary.Year)
	fmt.Fprintf(&b, "Took %s\n\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&b, "Events: %d read, %d skipped\n", summary.EventsSeen-summary.EventsSkipped, summary.EventsSkipped)
	fmt.Fprintf(&b, "Entries: %d seen, %d counted, %d credits, %d unclassified, %d unattributable\n",
		summary.EntriesSeen, summary.EntriesCounted, summary.Credits, summary.Unclassified, summary.Unattributable)
	fmt.Fprintf(&b, "Fighters: %d processed, %d written, %d failed\n",
		summary.FightersProcessed, summary.FightersWritten, summary.FightersFailed)
	if summary.StaleRecordsKept {
		b.WriteString("Stale records: kept, the run was not clean\n")
	} else {
		fmt.Fprintf(&b, "Stale records: %d removed\n", summary.FightersRemoved)
	}

	if len(summary.SkippedEvents) > 0 {
		b.WriteString("\nSkipped events:\n")
		for _, e := range summary.SkippedEvents {
			fmt.Fprintf(&b, "  %s: %s\n", e.EventID, e.Reason)
		}
	}
	if len(summary.Failures) > 0 {
		b.WriteString("\nFailed writes:\n")
		for _, f := range summary.Failures {
			fmt.Fprintf(&b, "  %s: %s\n", f.FighterKey, f.Reason)
		}
	}
	return b.String()
}
