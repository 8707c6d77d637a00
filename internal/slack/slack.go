package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL is Slack's chat.postMessage endpoint
const DefaultAPIURL = "https://slack.com/api/chat.postMessage"

// Client posts run notifications to a Slack channel
type Client struct {
	botToken   string
	channel    string
	apiURL     string
	location   *time.Location
	httpClient *http.Client
}

// NewClient creates a new Slack client
func NewClient(botToken, channel string, location *time.Location) *Client {
	if location == nil {
		location = time.UTC
	}
	return &Client{
		botToken: botToken,
		channel:  channel,
		apiURL:   DefaultAPIURL,
		location: location,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithAPIURL points the client at another endpoint
func (c *Client) WithAPIURL(apiURL string) *Client {
	c.apiURL = apiURL
	return c
}

// RunSummary describes a finished run
type RunSummary struct {
	Title     string
	Location  string
	Model     string
	Items     int
	NoUpdates bool
	Stage     string
	Finished  time.Time
}

// ChatPostMessageRequest represents a Slack chat.postMessage request
type ChatPostMessageRequest struct {
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// NotifyPublished announces a newly written report
func (c *Client) NotifyPublished(ctx context.Context, summary RunSummary) error {
	return c.sendMessage(ctx, c.formatPublished(summary))
}

// NotifyFailed reports a run that ended without an artifact
func (c *Client) NotifyFailed(ctx context.Context, summary RunSummary, runErr error) error {
	return c.sendMessage(ctx, c.formatFailed(summary, runErr))
}

func (c *Client) formatPublished(s RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 *%s* 已发布\n", s.Title)
	fmt.Fprintf(&b, "🔗 %s\n", s.Location)
	if s.NoUpdates {
		b.WriteString("ℹ️ 今日无新素材\n")
	} else {
		fmt.Fprintf(&b, "🧾 素材: %d 条\n🤖 模型: %s\n", s.Items, s.Model)
	}
	fmt.Fprintf(&b, "⏰ %s", c.timestamp(s.Finished))
	return b.String()
}

func (c *Client) formatFailed(s RunSummary, runErr error) string {
	msg := "unknown error"
	if runErr != nil {
		msg = runErr.Error()
	}
	return fmt.Sprintf("⚠️ *%s* 生成失败\n阶段: %s\n错误: %s\n⏰ %s",
		s.Title,
		s.Stage,
		msg,
		c.timestamp(s.Finished))
}

func (c *Client) timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.In(c.location).Format("2006-01-02 15:04:05")
}

// sendMessage sends a message to the configured Slack channel
func (c *Client) sendMessage(ctx context.Context, text string) error {
	req := ChatPostMessageRequest{
		Channel:   c.channel,
		Text:      text,
		Username:  "News Briefing",
		IconEmoji: ":newspaper:",
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.botToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&slackResp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if !slackResp.OK {
		return fmt.Errorf("slack API error: %s", slackResp.Error)
	}

	return nil
}
