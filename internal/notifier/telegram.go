package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"mintwatch/internal/domain"
)

const telegramAPI = "https://api.telegram.org"

type Telegram struct {
	botToken string
	chatIDs  []string
	apiBase  string
	client   *http.Client
}

func NewTelegram(botToken string, chatIDs []string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatIDs:  chatIDs,
		apiBase:  telegramAPI,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Telegram) Notify(ctx context.Context, n Notification) error {
	text := formatMessage(n)

	for _, chatID := range t.chatIDs {
		if err := t.send(ctx, chatID, text); err != nil {
			return fmt.Errorf("chat %s: %w", chatID, err)
		}
	}

	return nil
}

func (t *Telegram) send(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	body, err := json.Marshal(map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %d", resp.StatusCode)
	}

	return nil
}

func formatMessage(n Notification) string {
	icon := "⏳"
	if n.Transition.To == domain.Phase4 {
		icon = "🚀"
	}

	msg := fmt.Sprintf(`%s <b>%s</b> entered <b>%s</b>

<b>Previous:</b> %s
<b>At:</b> %s`,
		icon,
		html.EscapeString(n.Transition.Launch),
		n.Transition.To,
		n.Transition.From,
		n.Transition.At.UTC().Format(time.RFC1123),
	)

	if n.HasHeader {
		msg += fmt.Sprintf("\n\n<b>%s</b>: %s",
			html.EscapeString(n.Header.Name),
			html.EscapeString(n.Header.Description),
		)
		if n.Header.Date != nil {
			msg += fmt.Sprintf("\n<b>Until:</b> %s", n.Header.Date.UTC().Format(time.RFC1123))
		}
	}

	return msg
}
