// Package discord posts run summaries to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	colorComplete   = 0x2E8B57
	colorIncomplete = 0xFFA500
	colorFailed     = 0xFF0000
)

type WebhookMessage struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       int       `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
	Fields      []Field   `json:"fields,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// RunSummary describes one finished (or failed) timetable run
type RunSummary struct {
	Origin      string
	Destination string
	Date        string
	Itineraries int
	Complete    bool
	Calls       int
	Retries     int
	Dropped     int
	Filtered    int
	Elapsed     time.Duration
	// Failure is the error text of a run that aborted, empty on success
	Failure string
}

type Client struct {
	webhookURL string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// SendMessage posts msg. A client without a webhook URL does nothing.
func (c *Client) SendMessage(ctx context.Context, msg WebhookMessage) error {
	if c.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed with status: %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) SendRunSummary(ctx context.Context, s RunSummary) error {
	return c.SendMessage(ctx, WebhookMessage{
		Embeds: []Embed{summaryEmbed(s, c.now())},
	})
}

func summaryEmbed(s RunSummary, now time.Time) Embed {
	embed := Embed{
		Title:     fmt.Sprintf("%s → %s, %s", s.Origin, s.Destination, s.Date),
		Color:     colorComplete,
		Timestamp: now,
	}

	switch {
	case s.Failure != "":
		embed.Color = colorFailed
		embed.Description = "Run failed: " + s.Failure
	case !s.Complete:
		embed.Color = colorIncomplete
		embed.Description = fmt.Sprintf("%d itineraries, coverage incomplete", s.Itineraries)
	default:
		embed.Description = fmt.Sprintf("%d itineraries", s.Itineraries)
	}

	embed.Fields = []Field{
		{Name: "Calls", Value: strconv.Itoa(s.Calls), Inline: true},
		{Name: "Retries", Value: strconv.Itoa(s.Retries), Inline: true},
		{Name: "Dropped", Value: strconv.Itoa(s.Dropped), Inline: true},
		{Name: "Filtered", Value: strconv.Itoa(s.Filtered), Inline: true},
		{Name: "Elapsed", Value: s.Elapsed.Round(time.Millisecond).String(), Inline: true},
	}
	return embed
}
