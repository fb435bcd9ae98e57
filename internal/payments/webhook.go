package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSignature is returned when the webhook signature is missing or
// does not match the HMAC-SHA256 digest of the raw body.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// EventOrderCreated - единственный тип события, который приводит к разблокировке.
const EventOrderCreated = "order_created"

// OrderEvent - распакованное платежное уведомление.
type OrderEvent struct {
	EventName string
	RoastID   string
}

// webhookPayload повторяет структуру уведомления платежного процессора.
// Идентификатор записи передается через custom_data при создании checkout.
type webhookPayload struct {
	Meta struct {
		EventName  string `json:"event_name"`
		CustomData struct {
			RoastID string `json:"roast_id"`
		} `json:"custom_data"`
	} `json:"meta"`
}

// VerifySignature checks the hex-encoded HMAC-SHA256 signature of the raw
// request body against the shared secret. It must be called before the body
// is parsed: nothing may act on an unverified payload.
func VerifySignature(rawBody []byte, signatureHex, secret string) error {
	if secret == "" || signatureHex == "" {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	received, err := hex.DecodeString(signatureHex)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(expected, received) {
		return ErrInvalidSignature
	}
	return nil
}

// ParseOrderEvent decodes a verified payload. Unknown event types are not an
// error: the processor retries failed webhooks indefinitely, so anything
// verified must be acknowledged. RoastID is empty unless the event is an
// order_created carrying a roast id in its custom metadata.
func ParseOrderEvent(rawBody []byte) (OrderEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return OrderEvent{}, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	event := OrderEvent{EventName: payload.Meta.EventName}
	if event.EventName == EventOrderCreated {
		event.RoastID = payload.Meta.CustomData.RoastID
	}
	return event, nil
}
