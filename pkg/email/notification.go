package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrymomot/rqueue/pkg/email/templates"
	"github.com/dmitrymomot/rqueue/pkg/queue"
)

// Notification is the structured shape producers may put in item contents.
type Notification struct {
	Title     string `json:"title"`
	ShortHTML string `json:"short_html"`
	ShortText string `json:"short_text"`
}

// ParseNotification decodes contents as a Notification. It reports false
// for non-JSON contents or JSON without a title.
func ParseNotification(contents string) (Notification, bool) {
	var n Notification
	if err := json.Unmarshal([]byte(contents), &n); err != nil {
		return Notification{}, false
	}
	if strings.TrimSpace(n.Title) == "" {
		return Notification{}, false
	}
	return n, true
}

// BuildMessage renders the email for a dequeued item addressed to sendTo.
func BuildMessage(ctx context.Context, item queue.Dequeued, sendTo string) (SendEmailParams, error) {
	data := templates.NotificationData{
		ItemID:   item.ID.String(),
		Priority: int(item.Priority),
		Elapsed:  item.Elapsed,
	}

	var text string
	if n, ok := ParseNotification(item.Contents); ok {
		data.Title = n.Title
		data.HTML = n.ShortHTML
		data.Text = n.ShortText
		text = n.ShortText
		if data.HTML == "" && data.Text == "" {
			data.Text = n.Title
			text = n.Title
		}
	} else {
		data.Title = fmt.Sprintf("Queued notification %s", item.ID)
		data.Text = item.Contents
		text = item.Contents
	}

	body, err := templates.Render(ctx, templates.Notification(data))
	if err != nil {
		return SendEmailParams{}, fmt.Errorf("render notification: %w", err)
	}

	return SendEmailParams{
		SendTo:   sendTo,
		Subject:  data.Title,
		BodyHTML: body,
		BodyText: text,
		Tag:      "rqueue-fallback",
	}, nil
}
