package gservice

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mohammad-safakhou/daybrief/internal/agent/core"
)

const gmailUserID = "me"

// Mail implements core.MailProvider on top of the Gmail API.
type Mail struct {
	creds  *Credentials
	logger *log.Logger
}

// NewMail creates a Gmail-backed mail provider.
func NewMail(creds *Credentials) *Mail {
	return &Mail{
		creds:  creds,
		logger: log.New(log.Writer(), "[GMAIL] ", log.LstdFlags),
	}
}

// ListUnread returns up to max unread messages with headers and a
// plain-text body. A message whose fetch fails is logged and skipped;
// the rest of the batch survives.
func (m *Mail) ListUnread(ctx context.Context, max int) ([]core.MailMessage, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	list, err := svc.Users.Messages.List(gmailUserID).
		Q("is:unread").
		MaxResults(int64(max)).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	return m.collect(list.Messages, func(id string) (*gmail.Message, error) {
		return svc.Users.Messages.Get(gmailUserID, id).Do()
	}), nil
}

func (m *Mail) collect(refs []*gmail.Message, get func(id string) (*gmail.Message, error)) []core.MailMessage {
	messages := make([]core.MailMessage, 0, len(refs))
	for _, ref := range refs {
		msg, err := get(ref.Id)
		if err != nil {
			m.logger.Printf("skipping message %s: %v", ref.Id, err)
			continue
		}
		messages = append(messages, toMailMessage(msg))
	}
	return messages
}

func (m *Mail) newSvc(ctx context.Context) (*gmail.Service, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(m.creds.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}
	return svc, nil
}

func toMailMessage(msg *gmail.Message) core.MailMessage {
	out := core.MailMessage{ID: msg.Id}
	if msg.Payload == nil {
		return out
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			out.Subject = h.Value
		case "From":
			out.From = h.Value
		}
	}
	out.Body = extractTextBody(msg.Payload)
	return out
}

// extractTextBody returns the first text/plain part anywhere in the
// MIME tree; only when none exists does it fall back to the top-level
// body data.
func extractTextBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if body := findPlainText(payload); body != "" {
		return body
	}
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBase64URL(payload.Body.Data)
	}
	return ""
}

func findPlainText(part *gmail.MessagePart) string {
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		return decodeBase64URL(part.Body.Data)
	}
	for _, child := range part.Parts {
		if body := findPlainText(child); body != "" {
			return body
		}
	}
	return ""
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return data
		}
	}
	return string(decoded)
}
