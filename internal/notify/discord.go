package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ymlin/twscreener/pkg/config"
	"github.com/ymlin/twscreener/pkg/httputil"
	"github.com/ymlin/twscreener/pkg/logger"
)

// Discord delivers reports to a Discord webhook. One attempt per report;
// delivery failure is the caller's to log, the run is already complete
type Discord struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	webhookURL string
}

// NewDiscord creates the webhook sink
func NewDiscord(cfg config.DiscordConfig, httpClient *httputil.Client, log *logger.Logger) *Discord {
	return &Discord{
		httpClient: httpClient.DisableRetry(),
		logger:     log.Component("notify"),
		webhookURL: cfg.WebhookURL,
	}
}

// Send posts the report text as the webhook message content
func (d *Discord) Send(ctx context.Context, text string) error {
	if d.webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	payload := map[string]string{"content": text}
	resp, err := d.httpClient.PostJSON(ctx, d.webhookURL, payload)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	// Discord answers 204 No Content on success
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook rejected report: status %d", resp.StatusCode)
	}

	d.logger.WithField("chars", len(text)).Info("Report delivered")
	return nil
}
