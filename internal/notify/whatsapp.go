package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// WhatsAppSender posts customer and business messages to a WhatsApp gateway
// that accepts {"phone", "message"} with a bearer token.
type WhatsAppSender struct {
	apiURL string
	token  string
	client http.Client
	log    *logrus.Entry
}

func NewWhatsAppSender(apiURL, token string, log *logrus.Entry) *WhatsAppSender {
	return &WhatsAppSender{
		apiURL: apiURL,
		token:  token,
		client: http.Client{
			Timeout: time.Second * 10,
		},
		log: log,
	}
}

func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	if msg.Phone == "" || msg.Text == "" {
		return nil
	}

	requestBody := struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}{
		Phone:   msg.Phone,
		Message: msg.Text,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("whatsapp: marshal body - %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("whatsapp: create request - %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: request - %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bts, _ := io.ReadAll(resp.Body)
		s.log.Debugf("whatsapp: status %d, body - %s", resp.StatusCode, string(bts))
		return fmt.Errorf("whatsapp: unexpected status %d", resp.StatusCode)
	}

	s.log.Debugf("whatsapp: %s sent to %s", msg.Event, msg.Phone)
	return nil
}
