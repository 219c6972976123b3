// Package files contributes OneDrive operations to the tool registry.
package files

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/makhatib/mcp-microsoft365/internal/graph"
	"github.com/makhatib/mcp-microsoft365/internal/tools"
)

const itemSelect = "id,name,size,folder,file,lastModifiedDateTime,webUrl"

// downloadURLProperty is the pre-authorized content URL Graph attaches to
// drive items.
const downloadURLProperty = "@microsoft.graph.downloadUrl"

var userParam = tools.Param{
	Name:        "user",
	Type:        "string",
	Description: "Drive owner id or principal name. Falls back to the configured default user.",
}

// Register adds the OneDrive operations to the registry.
func Register(reg *tools.Registry, client *graph.Client, defaultUser string) error {
	defs := []tools.Definition{
		{
			Name:        "m365_files_list",
			Description: "List children of a drive folder (root when no folder id is given).",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "folder_id", Type: "string", Description: "Folder item id. Omit for the drive root."},
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of items to return.", Default: 25, Minimum: tools.Float64(1), Maximum: tools.Float64(200)},
			),
			Handler: listItems(client, defaultUser),
		},
		{
			Name:        "m365_files_search",
			Description: "Search a drive by file name or content.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "query", Type: "string", Description: "Search text.", Required: true},
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of items to return.", Default: 25, Minimum: tools.Float64(1), Maximum: tools.Float64(200)},
			),
			Handler: searchItems(client, defaultUser),
		},
		{
			Name:        "m365_files_get",
			Description: "Get metadata for a drive item.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "item_id", Type: "string", Description: "Drive item id.", Required: true},
			),
			Handler: getItem(client, defaultUser),
		},
		{
			Name:        "m365_files_download",
			Description: "Download a file's content as text.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "item_id", Type: "string", Description: "Drive item id.", Required: true},
			),
			Handler: downloadItem(client, defaultUser),
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func listItems(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		path := "/users/" + url.PathEscape(user) + "/drive/root/children"
		if folderID := args.String("folder_id"); folderID != "" {
			path = "/users/" + url.PathEscape(user) + "/drive/items/" + url.PathEscape(folderID) + "/children"
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   path,
			Query: map[string]any{
				"$top":    args.Int("top"),
				"$select": itemSelect,
			},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func searchItems(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		q := strings.ReplaceAll(args.String("query"), "'", "''")
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   fmt.Sprintf("/users/%s/drive/root/search(q='%s')", url.PathEscape(user), url.PathEscape(q)),
			Query: map[string]any{
				"$top":    args.Int("top"),
				"$select": itemSelect,
			},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func getItem(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/drive/items/" + url.PathEscape(args.String("item_id")),
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(resp.Body)
	}
}

func downloadItem(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		// Fetch the item first to obtain its pre-authorized download URL.
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/drive/items/" + url.PathEscape(args.String("item_id")),
		})
		if err != nil {
			return "", err
		}

		downloadURL, _ := resp.Body[downloadURLProperty].(string)
		if downloadURL == "" {
			return "", &graph.APIError{
				Kind:       graph.KindDownloadFailed,
				StatusCode: resp.StatusCode,
				Code:       "UNKNOWN",
				Message:    "item has no download URL",
			}
		}

		data, err := client.Download(ctx, downloadURL)
		if err != nil {
			return "", err
		}
		if !utf8.Valid(data) {
			return fmt.Sprintf("Binary content (%d bytes); not rendered as text.", len(data)), nil
		}
		return string(data), nil
	}
}
