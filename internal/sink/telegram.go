package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"jirabot/internal/markup"
	"jirabot/internal/poller"
)

const DefaultTelegramURL = "https://api.telegram.org"

type telegramRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

type TelegramSender struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewTelegram(token string) *TelegramSender {
	return &TelegramSender{
		baseURL: DefaultTelegramURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the sender at another Bot API host.
func (t *TelegramSender) WithBaseURL(baseURL string) *TelegramSender {
	t.baseURL = strings.TrimRight(baseURL, "/")
	return t
}

func (t *TelegramSender) Send(ctx context.Context, chatID string, msg poller.Message) error {
	body, err := json.Marshal(telegramRequest{
		ChatID:                chatID,
		Text:                  TelegramHTML(msg.Markup),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := t.baseURL + "/bot" + t.token + "/sendMessage"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		// The request URL embeds the bot token.
		return fmt.Errorf("telegram request: %s", strings.ReplaceAll(err.Error(), t.token, "***"))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var tr telegramResponse
	if err := json.Unmarshal(respBody, &tr); err != nil || !tr.OK {
		if tr.Description != "" {
			return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, tr.Description)
		}
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// TelegramHTML serialises a document to the HTML subset accepted by the
// Bot API. The only newlines in the output come from line breaks and bullets.
func TelegramHTML(doc markup.Document) string {
	var sb strings.Builder
	for _, n := range doc.Nodes() {
		switch n.Kind {
		case markup.Text:
			sb.WriteString(telegramText(n.Value))
		case markup.Bold:
			sb.WriteString("<b>" + telegramText(n.Value) + "</b>")
		case markup.Italic:
			sb.WriteString("<i>" + telegramText(n.Value) + "</i>")
		case markup.LineBreak:
			sb.WriteString("\n")
		case markup.Link:
			href := telegramText(n.Value)
			sb.WriteString(`<a href="` + href + `">` + href + "</a> ")
		case markup.CashTag:
			sb.WriteString("$" + telegramText(n.Value))
		case markup.HashTag:
			sb.WriteString("#" + telegramText(n.Value))
		case markup.BulletList:
			for _, item := range n.Items {
				sb.WriteString("\n• " + telegramText(item))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func telegramText(s string) string {
	return html.EscapeString(markup.StripControl(s))
}
