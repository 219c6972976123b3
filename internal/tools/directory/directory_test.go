package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
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

func newDirectoryRegistry(t *testing.T, mux *http.ServeMux) *tools.Registry {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := graph.NewClient(staticTokens{},
		graph.WithHTTPClient(srv.Client()),
		graph.WithBaseURLs(srv.URL+"/v1.0", srv.URL+"/beta"),
	)
	reg := tools.NewRegistry(zerolog.Nop())
	require.NoError(t, Register(reg, client))
	return reg
}

func TestGetUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.0/users/alice@contoso.com", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "u1", "displayName": "Alice", "department": "Engineering"}`))
	})

	reg := newDirectoryRegistry(t, mux)
	res := reg.Invoke(context.Background(), "m365_user_get", map[string]any{"user": "alice@contoso.com"})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Alice")
	assert.Contains(t, res.Text, "Engineering")
}

func TestGetUser_RequiresUser(t *testing.T) {
	reg := newDirectoryRegistry(t, http.NewServeMux())

	res := reg.Invoke(context.Background(), "m365_user_get", map[string]any{})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "user")
}

func TestListUsers_Filter(t *testing.T) {
	mux := http.NewServeMux()
	var gotQuery map[string][]string
	mux.HandleFunc("/v1.0/users", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": [{"id": "u1"}]}`))
	})

	reg := newDirectoryRegistry(t, mux)
	res := reg.Invoke(context.Background(), "m365_users_list", map[string]any{
		"filter": "startswith(displayName,'Al')",
	})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "startswith(displayName,'Al')", gotQuery["$filter"][0])
	assert.Equal(t, "25", gotQuery["$top"][0])
}

func TestListGroups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.0/groups", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": [{"id": "g1", "displayName": "Platform"}]}`))
	})

	reg := newDirectoryRegistry(t, mux)
	res := reg.Invoke(context.Background(), "m365_groups_list", map[string]any{})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Platform")
}

func TestListGroupMembers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.0/groups/g1/members", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": [{"id": "u1", "displayName": "Alice"}]}`))
	})

	reg := newDirectoryRegistry(t, mux)
	res := reg.Invoke(context.Background(), "m365_group_members", map[string]any{"group_id": "g1"})
	require.False(t, res.IsError, res.Text)
	assert.Contains(t, res.Text, "Alice")
}
