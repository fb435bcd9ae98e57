package payments_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roast-server/internal/payments"
)

const testSecret = "whsec_test_secret"

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"meta":{"event_name":"order_created"}}`)

	t.Run("valid signature accepted", func(t *testing.T) {
		err := payments.VerifySignature(body, sign(body, testSecret), testSecret)
		assert.NoError(t, err)
	})

	t.Run("altering one byte invalidates signature", func(t *testing.T) {
		signature := sign(body, testSecret)
		tampered := append([]byte{}, body...)
		tampered[0] = '['
		err := payments.VerifySignature(tampered, signature, testSecret)
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		err := payments.VerifySignature(body, sign(body, "other_secret"), testSecret)
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})

	t.Run("missing signature rejected", func(t *testing.T) {
		err := payments.VerifySignature(body, "", testSecret)
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})

	t.Run("missing secret rejected", func(t *testing.T) {
		err := payments.VerifySignature(body, sign(body, testSecret), "")
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})

	t.Run("non-hex signature rejected", func(t *testing.T) {
		err := payments.VerifySignature(body, "not-a-hex-digest", testSecret)
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	})
}

func TestParseOrderEvent(t *testing.T) {
	t.Run("order created with roast id", func(t *testing.T) {
		body := []byte(`{"meta":{"event_name":"order_created","custom_data":{"roast_id":"abc-123"}}}`)
		event, err := payments.ParseOrderEvent(body)
		require.NoError(t, err)
		assert.Equal(t, payments.EventOrderCreated, event.EventName)
		assert.Equal(t, "abc-123", event.RoastID)
	})

	t.Run("unknown event type is acknowledged without roast id", func(t *testing.T) {
		body := []byte(`{"meta":{"event_name":"subscription_cancelled","custom_data":{"roast_id":"abc-123"}}}`)
		event, err := payments.ParseOrderEvent(body)
		require.NoError(t, err)
		assert.Equal(t, "subscription_cancelled", event.EventName)
		assert.Empty(t, event.RoastID, "only order_created may trigger an unlock")
	})

	t.Run("order created without custom data", func(t *testing.T) {
		body := []byte(`{"meta":{"event_name":"order_created"}}`)
		event, err := payments.ParseOrderEvent(body)
		require.NoError(t, err)
		assert.Empty(t, event.RoastID)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := payments.ParseOrderEvent([]byte("{not json"))
		assert.Error(t, err)
	})
}
