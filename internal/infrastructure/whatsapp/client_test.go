package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		APIURL:        server.URL,
		PhoneNumberID: "1234567890",
		AccessToken:   "test-token",
	}, zap.NewNop())
}

func TestSendText(t *testing.T) {
	t.Run("posts text payload with bearer token", func(t *testing.T) {
		var captured map[string]interface{}
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/1234567890/messages", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &captured))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.abc123"}]}`))
		})

		id, err := client.SendText(context.Background(), "+55 (11) 99999-0001", "hello")

		require.NoError(t, err)
		assert.Equal(t, "wamid.abc123", id)
		assert.Equal(t, "whatsapp", captured["messaging_product"])
		assert.Equal(t, "text", captured["type"])
		// Phone reduced to bare digits.
		assert.Equal(t, "5511999990001", captured["to"])
	})

	t.Run("api error surfaces with code and message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid recipient","type":"OAuthException","code":131026}}`))
		})

		_, err := client.SendText(context.Background(), "5511999990001", "hello")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "131026")
		assert.Contains(t, err.Error(), "Invalid recipient")
	})

	t.Run("missing message id is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"messages":[]}`))
		})

		_, err := client.SendText(context.Background(), "5511999990001", "hello")
		assert.Error(t, err)
	})
}

func TestSendTemplate(t *testing.T) {
	t.Run("posts template payload with body parameters", func(t *testing.T) {
		var captured templatePayload
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &captured))
			_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.tpl1"}]}`))
		})

		id, err := client.SendTemplate(context.Background(), "5511999990001", "license_welcome", []string{"Alice", "Start"})

		require.NoError(t, err)
		assert.Equal(t, "wamid.tpl1", id)
		assert.Equal(t, "template", captured.Type)
		assert.Equal(t, "license_welcome", captured.Template.Name)
		assert.Equal(t, "pt_BR", captured.Template.Language.Code)
		require.Len(t, captured.Template.Components, 1)
		require.Len(t, captured.Template.Components[0].Parameters, 2)
		assert.Equal(t, "Alice", captured.Template.Components[0].Parameters[0].Text)
	})

	t.Run("no parameters omits components", func(t *testing.T) {
		var captured templatePayload
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &captured))
			_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.tpl2"}]}`))
		})

		_, err := client.SendTemplate(context.Background(), "5511999990001", "plain_notice", nil)

		require.NoError(t, err)
		assert.Empty(t, captured.Template.Components)
	})
}
