package files

import (
	"context"
	"fmt"
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

func newFilesRegistry(t *testing.T, mux *http.ServeMux) *tools.Registry {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := graph.NewClient(staticTokens{},
		graph.WithHTTPClient(srv.Client()),
		graph.WithBaseURLs(srv.URL+"/v1.0", srv.URL+"/beta"),
	)
	reg := tools.NewRegistry(zerolog.Nop())
	require.NoError(t, Register(reg, client, "alice@contoso.com"))
	return reg
}

func TestListItems_Root(t *testing.T) {
	mux := http.NewServeMux()
	var gotQuery map[string][]string
	mux.HandleFunc("/v1.0/users/alice@contoso.com/drive/root/children", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": [{"id": "i1", "name": "report.docx"}]}`))
	})

	reg := newFilesRegistry(t, mux)
	res := reg.Invoke(context.Background(), "m365_files_list", map[string]any{})
	require.False(t, res.IsError, res.Text)

	assert.Equal(t, "25", gotQuery["$top"][0])
	assert.Contains(t, res.Text, "report.docx")
}

func TestListItems_Folder(t *testing.T) {
	mux := http.NewServeMux()
	called := false
	mux.HandleFunc("/v1.0/users/alice@contoso.com/drive/items/f1/children", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": []}`))
	})

	reg := newFilesRegistry(t, mux)
	res := reg.Invoke(context.Background(), "m365_files_list", map[string]any{"folder_id": "f1"})
	require.False(t, res.IsError, res.Text)
	assert.True(t, called)
}

func TestSearchItems_EscapesQuotes(t *testing.T) {
	mux := http.NewServeMux()
	var gotPath string
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": []}`))
	})

	reg := newFilesRegistry(t, mux)
	res := reg.Invoke(context.Background(), "m365_files_search", map[string]any{"query": "bob's report"})
	require.False(t, res.IsError, res.Text)

	assert.Equal(t, "/v1.0/users/alice@contoso.com/drive/root/search(q='bob''s report')", gotPath)
}

func TestDownloadItem_Text(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/v1.0/users/alice@contoso.com/drive/items/i1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": "i1", "@microsoft.graph.downloadUrl": %q}`, srvURL+"/content/i1")
	})
	mux.HandleFunc("/content/i1", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "pre-authorized URLs must not carry the bearer token")
		w.Write([]byte("hello from onedrive"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	client := graph.NewClient(staticTokens{},
		graph.WithHTTPClient(srv.Client()),
		graph.WithBaseURLs(srv.URL+"/v1.0", srv.URL+"/beta"),
	)
	reg := tools.NewRegistry(zerolog.Nop())
	require.NoError(t, Register(reg, client, "alice@contoso.com"))

	res := reg.Invoke(context.Background(), "m365_files_download", map[string]any{"item_id": "i1"})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "hello from onedrive", res.Text)
}

func TestDownloadItem_Binary(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/v1.0/users/alice@contoso.com/drive/items/i1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": "i1", "@microsoft.graph.downloadUrl": %q}`, srvURL+"/content/i1")
	})
	mux.HandleFunc("/content/i1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xff, 0xfe, 0x00, 0x01})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	client := graph.NewClient(staticTokens{},
		graph.WithHTTPClient(srv.Client()),
		graph.WithBaseURLs(srv.URL+"/v1.0", srv.URL+"/beta"),
	)
	reg := tools.NewRegistry(zerolog.Nop())
	require.NoError(t, Register(reg, client, "alice@contoso.com"))

	res := reg.Invoke(context.Background(), "m365_files_download", map[string]any{"item_id": "i1"})
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "Binary content (4 bytes); not rendered as text.", res.Text)
}

func TestDownloadItem_MissingURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.0/users/alice@contoso.com/drive/items/i1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "i1", "name": "report.docx"}`))
	})

	reg := newFilesRegistry(t, mux)
	res := reg.Invoke(context.Background(), "m365_files_download", map[string]any{"item_id": "i1"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "download")
}

func TestDownloadItem_FailedFetch(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/v1.0/users/alice@contoso.com/drive/items/i1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": "i1", "@microsoft.graph.downloadUrl": %q}`, srvURL+"/content/i1")
	})
	mux.HandleFunc("/content/i1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	client := graph.NewClient(staticTokens{},
		graph.WithHTTPClient(srv.Client()),
		graph.WithBaseURLs(srv.URL+"/v1.0", srv.URL+"/beta"),
	)
	reg := tools.NewRegistry(zerolog.Nop())
	require.NoError(t, Register(reg, client, "alice@contoso.com"))

	res := reg.Invoke(context.Background(), "m365_files_download", map[string]any{"item_id": "i1"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "404")
}
