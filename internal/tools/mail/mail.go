// Package mail contributes Outlook mail operations to the tool registry.
package mail

import (
	"context"
	"net/http"
	"net/url"

	"github.com/makhatib/mcp-microsoft365/internal/graph"
	"github.com/makhatib/mcp-microsoft365/internal/tools"
)

const messageSelect = "id,subject,from,toRecipients,receivedDateTime,isRead,hasAttachments,bodyPreview"

// userParam is shared by every mail operation.
var userParam = tools.Param{
	Name:        "user",
	Type:        "string",
	Description: "Mailbox user id or principal name. Falls back to the configured default user.",
}

// Register adds the mail operations to the registry.
func Register(reg *tools.Registry, client *graph.Client, defaultUser string) error {
	defs := []tools.Definition{
		{
			Name:        "m365_mail_list",
			Description: "List messages in a mail folder, newest first.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "folder", Type: "string", Description: "Well-known folder name or folder id.", Default: "inbox"},
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of messages to return.", Default: 10, Minimum: tools.Float64(1), Maximum: tools.Float64(100)},
				tools.Param{Name: "filter", Type: "string", Description: "OData $filter expression."},
				tools.Param{Name: "search", Type: "string", Description: "Free-text $search expression."},
			),
			Handler: listMessages(client, defaultUser),
		},
		{
			Name:        "m365_mail_get",
			Description: "Get a single message including its body.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "message_id", Type: "string", Description: "Message id.", Required: true},
			),
			Handler: getMessage(client, defaultUser),
		},
		{
			Name:        "m365_mail_send",
			Description: "Send a plain-text message.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "to", Type: "string", Description: "Recipient email address.", Required: true},
				tools.Param{Name: "subject", Type: "string", Description: "Message subject.", Required: true},
				tools.Param{Name: "body", Type: "string", Description: "Plain-text message body.", Required: true},
			),
			Handler: sendMessage(client, defaultUser),
		},
		{
			Name:        "m365_mail_move",
			Description: "Move a message to another folder.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "message_id", Type: "string", Description: "Message id.", Required: true},
				tools.Param{Name: "destination", Type: "string", Description: "Destination folder id or well-known name.", Required: true},
			),
			Handler: moveMessage(client, defaultUser),
		},
		{
			Name:        "m365_mail_delete",
			Description: "Delete a message.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "message_id", Type: "string", Description: "Message id.", Required: true},
			),
			Handler: deleteMessage(client, defaultUser),
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func listMessages(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		query := map[string]any{
			"$top":    args.Int("top"),
			"$select": messageSelect,
			"$filter": args.String("filter"),
			"$search": args.String("search"),
		}
		// $orderby cannot be combined with $search on Graph.
		if args.String("search") == "" {
			query["$orderby"] = "receivedDateTime desc"
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/mailFolders/" + url.PathEscape(args.String("folder")) + "/messages",
			Query:  query,
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func getMessage(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/messages/" + url.PathEscape(args.String("message_id")),
			Query:  map[string]any{"$select": messageSelect + ",body,ccRecipients"},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(resp.Body)
	}
}

func sendMessage(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		payload := map[string]any{
			"message": map[string]any{
				"subject": args.String("subject"),
				"body": map[string]any{
					"contentType": "Text",
					"content":     args.String("body"),
				},
				"toRecipients": []map[string]any{
					{"emailAddress": map[string]any{"address": args.String("to")}},
				},
			},
			"saveToSentItems": true,
		}

		if _, err := client.Do(ctx, graph.Request{
			Method: http.MethodPost,
			Path:   "/users/" + url.PathEscape(user) + "/sendMail",
			Body:   payload,
		}); err != nil {
			return "", err
		}
		return "Message sent.", nil
	}
}

func moveMessage(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodPost,
			Path:   "/users/" + url.PathEscape(user) + "/messages/" + url.PathEscape(args.String("message_id")) + "/move",
			Body:   map[string]any{"destinationId": args.String("destination")},
		})
		if err != nil {
			return "", err
		}
		if resp.NoContent {
			return "Message moved.", nil
		}
		return tools.FormatJSON(resp.Body)
	}
}

func deleteMessage(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		if _, err := client.Do(ctx, graph.Request{
			Method: http.MethodDelete,
			Path:   "/users/" + url.PathEscape(user) + "/messages/" + url.PathEscape(args.String("message_id")),
		}); err != nil {
			return "", err
		}
		return "Message deleted.", nil
	}
}
