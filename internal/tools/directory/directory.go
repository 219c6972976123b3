// Package directory contributes user and group directory operations to the
// tool registry.
package directory

import (
	"context"
	"net/http"
	"net/url"

	"github.com/makhatib/mcp-microsoft365/internal/graph"
	"github.com/makhatib/mcp-microsoft365/internal/tools"
)

const userSelect = "id,displayName,mail,userPrincipalName,jobTitle,department,officeLocation"

// Register adds the directory operations to the registry.
func Register(reg *tools.Registry, client *graph.Client) error {
	defs := []tools.Definition{
		{
			Name:        "m365_user_get",
			Description: "Get a user's profile.",
			Schema: tools.MustSchema(
				tools.Param{Name: "user", Type: "string", Description: "User id or principal name.", Required: true},
			),
			Handler: getUser(client),
		},
		{
			Name:        "m365_users_list",
			Description: "List users in the directory.",
			Schema: tools.MustSchema(
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of users to return.", Default: 25, Minimum: tools.Float64(1), Maximum: tools.Float64(100)},
				tools.Param{Name: "filter", Type: "string", Description: "OData $filter expression."},
			),
			Handler: listUsers(client),
		},
		{
			Name:        "m365_groups_list",
			Description: "List groups in the directory.",
			Schema: tools.MustSchema(
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of groups to return.", Default: 25, Minimum: tools.Float64(1), Maximum: tools.Float64(100)},
				tools.Param{Name: "filter", Type: "string", Description: "OData $filter expression."},
			),
			Handler: listGroups(client),
		},
		{
			Name:        "m365_group_members",
			Description: "List members of a group.",
			Schema: tools.MustSchema(
				tools.Param{Name: "group_id", Type: "string", Description: "Group id.", Required: true},
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of members to return.", Default: 25, Minimum: tools.Float64(1), Maximum: tools.Float64(100)},
			),
			Handler: listGroupMembers(client),
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func getUser(client *graph.Client) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(args.String("user")),
			Query:  map[string]any{"$select": userSelect},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(resp.Body)
	}
}

func listUsers(client *graph.Client) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users",
			Query: map[string]any{
				"$top":    args.Int("top"),
				"$filter": args.String("filter"),
				"$select": userSelect,
			},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func listGroups(client *graph.Client) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/groups",
			Query: map[string]any{
				"$top":    args.Int("top"),
				"$filter": args.String("filter"),
				"$select": "id,displayName,description,mail,groupTypes",
			},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func listGroupMembers(client *graph.Client) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/groups/" + url.PathEscape(args.String("group_id")) + "/members",
			Query: map[string]any{
				"$top":    args.Int("top"),
				"$select": userSelect,
			},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}
