package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"livearchive/internal/config"
)

const userAgent = "livearchive/0.1.0"

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyArchived(ctx context.Context, title, archivePath string) error
	NotifyFailed(ctx context.Context, sourcePath, stage string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		archived: cfg.Notifications.Archived,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	archived bool
	errors   bool
}

func (n *ntfyService) NotifyArchived(ctx context.Context, title, archivePath string) error {
	if !n.archived {
		return nil
	}
	message := fmt.Sprintf("📼 Archived: %s", strings.TrimSpace(title))
	if archivePath = strings.TrimSpace(archivePath); archivePath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, archivePath)
	}
	return n.send(ctx, payload{
		title:   "livearchive - Archived",
		message: message,
		tags:    []string{"livearchive", "archive", "completed"},
	})
}

func (n *ntfyService) NotifyFailed(ctx context.Context, sourcePath, stage string, err error) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Failed to archive ")
	builder.WriteString(filepath.Base(strings.TrimSpace(sourcePath)))
	if stage = strings.TrimSpace(stage); stage != "" {
		builder.WriteString(" during ")
		builder.WriteString(stage)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "livearchive - Error",
		message:  builder.String(),
		tags:     []string{"livearchive", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "livearchive - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"livearchive", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyArchived(context.Context, string, string) error      { return nil }
func (noopService) NotifyFailed(context.Context, string, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
