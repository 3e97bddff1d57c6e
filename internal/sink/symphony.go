package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jirabot/internal/poller"
)

type symphonyPayload struct {
	Format  string `json:"format"`
	Message string `json:"message"`
}

// SymphonySender posts MessageML to Symphony streams with pre-issued
// session and key manager tokens.
type SymphonySender struct {
	baseURL         string
	sessionToken    string
	keyManagerToken string
	http            *http.Client
}

func NewSymphony(baseURL, sessionToken, keyManagerToken string) *SymphonySender {
	return &SymphonySender{
		baseURL:         strings.TrimRight(baseURL, "/"),
		sessionToken:    sessionToken,
		keyManagerToken: keyManagerToken,
		http:            &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SymphonySender) Send(ctx context.Context, streamID string, msg poller.Message) error {
	body, err := json.Marshal(symphonyPayload{Format: "MESSAGEML", Message: msg.Markup.MessageML()})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := s.baseURL + "/agent/v2/stream/" + url.PathEscape(streamID) + "/message/create"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("sessionToken", s.sessionToken)
	req.Header.Set("keyManagerToken", s.keyManagerToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("symphony request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("symphony returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
