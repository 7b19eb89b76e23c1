package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ftahirops/xtrend/model"
)

// NotifyConfig defines alert destinations.
type NotifyConfig struct {
	Webhook string
	Command string
	// SustainTicks debounces level changes; see AlertState.
	SustainTicks int
	// AllowPrivate permits webhooks on loopback and private networks.
	AllowPrivate bool
}

// Notification is the body posted to the webhook and passed to the command.
type Notification struct {
	Event     string        `json:"event"`
	Level     string        `json:"level"`
	Previous  string        `json:"previous"`
	ReportID  string        `json:"report_id"`
	LoadScore float64       `json:"load_score"`
	Alerts    []model.Alert `json:"alerts"`
	Time      string        `json:"ts"`
}

// Notifier sends a notification whenever the debounced alert level changes.
type Notifier struct {
	cfg    NotifyConfig
	client *http.Client
	logger *slog.Logger

	mu    sync.Mutex
	state *AlertState
}

// NewNotifier creates a notifier. It fails if the webhook URL is unusable.
func NewNotifier(cfg NotifyConfig, logger *slog.Logger) (*Notifier, error) {
	if cfg.Webhook != "" {
		if err := validateWebhookURL(cfg.Webhook, cfg.AllowPrivate); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
		state:  NewAlertState(cfg.SustainTicks),
	}, nil
}

// Enabled returns true if any alert destination is configured.
func (n *Notifier) Enabled() bool {
	return n.cfg.Webhook != "" || n.cfg.Command != ""
}

func (n *Notifier) Name() string { return "notifier" }

// Publish updates the alert state and notifies on a level change.
func (n *Notifier) Publish(ctx context.Context, rep *model.Report) error {
	n.mu.Lock()
	prev := n.state.Current()
	level, changed := n.state.Update(rep.Level())
	n.mu.Unlock()
	if !changed || !n.Enabled() {
		return nil
	}

	event := "alert_raised"
	switch {
	case level == model.AlertInfo:
		event = "alert_cleared"
	case level < prev:
		event = "alert_lowered"
	}
	note := Notification{
		Event:     event,
		Level:     level.String(),
		Previous:  prev.String(),
		ReportID:  rep.ID,
		LoadScore: rep.Snapshot.LoadScore,
		Alerts:    rep.Alerts,
		Time:      rep.Timestamp.Format(time.RFC3339),
	}
	n.logger.Info("alert level changed", "event", event, "from", prev.String(), "to", level.String())
	return n.send(ctx, note)
}

func (n *Notifier) send(ctx context.Context, note Notification) error {
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	var errs []error
	if n.cfg.Webhook != "" {
		if err := n.post(ctx, data); err != nil {
			errs = append(errs, err)
		}
	}
	if n.cfg.Command != "" {
		cmd := exec.CommandContext(ctx, "sh", "-c", n.cfg.Command)
		cmd.Env = append(os.Environ(), "XTREND_EVENT="+note.Event, "XTREND_PAYLOAD="+string(data))
		if out, err := cmd.CombinedOutput(); err != nil {
			errs = append(errs, fmt.Errorf("notify command: %w (output: %s)", err, strings.TrimSpace(string(out))))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) post(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Webhook, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook post: status %s", resp.Status)
	}
	return nil
}

// validateWebhookURL checks that the webhook URL uses http/https and, unless
// allowPrivate is set, does not target loopback, private, link-local or
// cloud metadata addresses.
func validateWebhookURL(rawURL string, allowPrivate bool) error {
	if rawURL == "" {
		return fmt.Errorf("webhook URL is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("webhook URL must use http or https scheme, got %q", scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("webhook URL has no host")
	}
	if host == "metadata.google.internal" || host == "169.254.169.254" {
		return fmt.Errorf("webhook URL host %q is blocked", host)
	}
	if allowPrivate {
		return nil
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("webhook URL host %q is blocked", host)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("webhook URL host %q is blocked", host)
		}
	}
	return nil
}
