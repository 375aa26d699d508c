package alertsmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tokenstd/nip13d/internal/core/ports"
)

const (
	serviceName = "nip13d"
	severity    = "info"

	maxRetries = 5
)

type Alert struct {
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    time.Time         `json:"startsAt"`
}

type service struct {
	baseUrl    string
	nodeUrl    string
	httpClient *http.Client
}

func NewService(alertManagerURL, nodeURL string) ports.Alerts {
	return &service{
		baseUrl: alertManagerURL,
		nodeUrl: strings.TrimSuffix(nodeURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *service) Publish(ctx context.Context, topic ports.Topic, message any) error {
	labels := map[string]string{
		"alertname": string(topic),
		"service":   serviceName,
		"severity":  severity,
	}

	desc := ""
	annotations := map[string]string{}
	switch topic {
	case ports.ContractAnnounced:
		annotations["firing_title"] = "📜 Contract Announced"
		m, ok := message.(ports.ContractAnnouncedAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatContractAnnouncedAlert(s.nodeUrl, m)
		labels["token_id"] = m.TokenId
		labels["contract_id"] = m.ContractId
	case ports.SnapshotStale:
		annotations["firing_title"] = "⚠️ Snapshot Stale"
		m, ok := message.(ports.SnapshotStaleAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatSnapshotStaleAlert(m)
		labels["token_id"] = m.TokenId
		labels["severity"] = "warning"
	default:
		annotations["firing_title"] = fmt.Sprintf("🔔 %s", topic)
		desc = formatGenericAlert(map[string]any{"event": message})
	}

	annotations["description"] = desc
	alert := Alert{
		Labels:      labels,
		Annotations: annotations,
		StartsAt:    time.Now(),
	}

	if err := s.sendAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to send alert to AlertManager: %w", err)
	}

	return nil
}

func (s *service) sendAlert(ctx context.Context, alerts Alert) error {
	payload, err := json.Marshal([]Alert{alerts})
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	baseDelay := 100 * time.Millisecond

	for attempt := range maxRetries {
		req, err := http.NewRequestWithContext(ctx, "POST", s.baseUrl, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			// Network error - retry with backoff
			if attempt < maxRetries-1 {
				// exponential: 100ms, 200ms, 400ms, 800ms, 1600ms
				delay := baseDelay * time.Duration(1<<uint(attempt))

				select {
				case <-time.After(delay):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return fmt.Errorf("failed to send alert after %d attempts: %w", maxRetries, err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			return nil
		}

		_ = resp.Body.Close()

		// Retry on 5xx (server errors), but not on 4xx (client errors)
		if resp.StatusCode >= 500 {
			if attempt < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<uint(attempt))

				select {
				case <-time.After(delay):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}

		// 4xx error or final 5xx error
		return fmt.Errorf(
			"failed to send alert to AlertManager with status %d after %d attempts",
			resp.StatusCode, attempt+1,
		)
	}

	return fmt.Errorf("failed to send alert after %d attempts", maxRetries)
}

func formatContractAnnouncedAlert(nodeUrl string, data ports.ContractAnnouncedAlert) string {
	lines := make([]string, 0)
	lines = append(lines, fmt.Sprintf("%s/transactionStatus/%s", nodeUrl, data.Hash))
	lines = append(lines, fmt.Sprintf("\n*Contract:* `%s`", data.ContractId))
	lines = append(lines, fmt.Sprintf("*Token:* `%s`", data.TokenId))

	lines = append(lines, "\n*Breakdown:*")
	lines = append(lines, fmt.Sprintf("• Command: %s", data.Command))
	lines = append(lines, fmt.Sprintf("• Inner transactions: %d", data.InnerCount))
	lines = append(lines, fmt.Sprintf("• Pending cosigners: %d", data.Cosigners))
	return strings.Join(lines, "\n")
}

func formatSnapshotStaleAlert(data ports.SnapshotStaleAlert) string {
	lines := make([]string, 0)
	lines = append(lines, fmt.Sprintf("*Token:* `%s`", data.TokenId))
	if data.Name != "" {
		lines = append(lines, fmt.Sprintf("• Name: %s", data.Name))
	}
	lines = append(lines, fmt.Sprintf("• Reason: %s", data.Reason))
	return strings.Join(lines, "\n")
}

func formatGenericAlert(data map[string]any) string {
	lines := make([]string, 0)
	for key, value := range data {
		lines = append(lines, fmt.Sprintf("• %s: %v", key, value))
	}
	return strings.Join(lines, "\n")
}
