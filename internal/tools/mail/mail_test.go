package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makhatib/mcp-microsoft365/internal/graph"
	"github.com/makhatib/mcp-microsoft365/internal/tools"
)

type staticTokens struct{}

func (staticTokens) Token(ctx context.Context) (string, error) {
	return "test-token", nil
}

// capture records the last request the fake Graph endpoint received.
type capture struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

func newMailRegistry(t *testing.T, handler http.HandlerFunc) (*tools.Registry, *capture) {
	t.Helper()

	cap := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.method = r.Method
		cap.path = r.URL.Path
		cap.query = r.URL.Query()
		cap.body, _ = io.ReadAll(r.Body)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := graph.NewClient(staticTokens{},
		graph.WithHTTPClient(srv.Client()),
		graph.WithBaseURLs(srv.URL+"/v1.0", srv.URL+"/beta"),
	)

	reg := tools.NewRegistry(zerolog.Nop())
	require.NoError(t, Register(reg, client, "alice@contoso.com"))
	return reg, cap
}

func respondJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestRegister_ToolNames(t *testing.T) {
	reg, _ := newMailRegistry(t, respondJSON(`{}`))

	assert.Equal(t, 5, reg.Len())
	names := make([]string, 0, reg.Len())
	for _, def := range reg.Definitions() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{
		"m365_mail_list",
		"m365_mail_get",
		"m365_mail_send",
		"m365_mail_move",
		"m365_mail_delete",
	}, names)
}

func TestListMessages(t *testing.T) {
	reg, cap := newMailRegistry(t, respondJSON(`{
		"value": [{"id": "m1", "subject": "Status"}],
		"@odata.nextLink": "https://graph.microsoft.com/v1.0/next"
	}`))

	res := reg.Invoke(context.Background(), "m365_mail_list", map[string]any{})
	require.False(t, res.IsError, res.Text)

	assert.Equal(t, http.MethodGet, cap.method)
	assert.Equal(t, "/v1.0/users/alice@contoso.com/mailFolders/inbox/messages", cap.path)
	assert.Equal(t, "10", cap.query.Get("$top"))
	assert.Equal(t, "receivedDateTime desc", cap.query.Get("$orderby"))
	assert.NotContains(t, cap.query, "$filter")

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Text), &out))
	assert.Contains(t, out, "value")
	assert.Equal(t, "https://graph.microsoft.com/v1.0/next", out["nextLink"])
}

func TestListMessages_SearchDropsOrderBy(t *testing.T) {
	reg, cap := newMailRegistry(t, respondJSON(`{"value": []}`))

	res := reg.Invoke(context.Background(), "m365_mail_list", map[string]any{
		"search": "quarterly report",
		"folder": "archive",
		"user":   "bob@contoso.com",
	})
	require.False(t, res.IsError, res.Text)

	assert.Equal(t, "/v1.0/users/bob@contoso.com/mailFolders/archive/messages", cap.path)
	assert.Equal(t, "quarterly report", cap.query.Get("$search"))
	assert.NotContains(t, cap.query, "$orderby")
}

func TestGetMessage(t *testing.T) {
	reg, cap := newMailRegistry(t, respondJSON(`{"id": "m1", "subject": "Status", "body": {"content": "hi"}}`))

	res := reg.Invoke(context.Background(), "m365_mail_get", map[string]any{"message_id": "m1"})
	require.False(t, res.IsError, res.Text)

	assert.Equal(t, "/v1.0/users/alice@contoso.com/messages/m1", cap.path)
	assert.Contains(t, cap.query.Get("$select"), "body")
	assert.Contains(t, res.Text, "Status")
}

func TestGetMessage_RequiresMessageID(t *testing.T) {
	reg, _ := newMailRegistry(t, respondJSON(`{}`))

	res := reg.Invoke(context.Background(), "m365_mail_get", map[string]any{})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "message_id")
}

func TestSendMessage(t *testing.T) {
	reg, cap := newMailRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	res := reg.Invoke(context.Background(), "m365_mail_send", map[string]any{
		"to":      "bob@contoso.com",
		"subject": "Status",
		"body":    "All green.",
	})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "Message sent.", res.Text)

	assert.Equal(t, http.MethodPost, cap.method)
	assert.Equal(t, "/v1.0/users/alice@contoso.com/sendMail", cap.path)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(cap.body, &payload))
	msg := payload["message"].(map[string]any)
	assert.Equal(t, "Status", msg["subject"])
	assert.Equal(t, true, payload["saveToSentItems"])
}

func TestMoveMessage(t *testing.T) {
	reg, cap := newMailRegistry(t, respondJSON(`{"id": "m2", "parentFolderId": "archive"}`))

	res := reg.Invoke(context.Background(), "m365_mail_move", map[string]any{
		"message_id":  "m1",
		"destination": "archive",
	})
	require.False(t, res.IsError, res.Text)

	assert.Equal(t, "/v1.0/users/alice@contoso.com/messages/m1/move", cap.path)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(cap.body, &payload))
	assert.Equal(t, "archive", payload["destinationId"])
}

func TestDeleteMessage(t *testing.T) {
	reg, cap := newMailRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	res := reg.Invoke(context.Background(), "m365_mail_delete", map[string]any{"message_id": "m1"})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "Message deleted.", res.Text)

	assert.Equal(t, http.MethodDelete, cap.method)
	assert.Equal(t, "/v1.0/users/alice@contoso.com/messages/m1", cap.path)
}

func TestNoDefaultUser(t *testing.T) {
	srv := httptest.NewServer(respondJSON(`{}`))
	t.Cleanup(srv.Close)

	client := graph.NewClient(staticTokens{},
		graph.WithHTTPClient(srv.Client()),
		graph.WithBaseURLs(srv.URL+"/v1.0", srv.URL+"/beta"),
	)
	reg := tools.NewRegistry(zerolog.Nop())
	require.NoError(t, Register(reg, client, ""))

	res := reg.Invoke(context.Background(), "m365_mail_list", map[string]any{})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "user")
}
