// Package chat contributes Teams chat and meeting-transcript operations to
// the tool registry.
package chat

import (
	"context"
	"net/http"
	"net/url"

	"github.com/makhatib/mcp-microsoft365/internal/graph"
	"github.com/makhatib/mcp-microsoft365/internal/tools"
)

var userParam = tools.Param{
	Name:        "user",
	Type:        "string",
	Description: "User id or principal name. Falls back to the configured default user.",
}

// Register adds the Teams operations to the registry.
func Register(reg *tools.Registry, client *graph.Client, defaultUser string) error {
	defs := []tools.Definition{
		{
			Name:        "m365_chat_list",
			Description: "List the user's chats.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of chats to return.", Default: 20, Minimum: tools.Float64(1), Maximum: tools.Float64(50)},
			),
			Handler: listChats(client, defaultUser),
		},
		{
			Name:        "m365_chat_messages",
			Description: "List recent messages in a chat.",
			Schema: tools.MustSchema(
				tools.Param{Name: "chat_id", Type: "string", Description: "Chat id.", Required: true},
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of messages to return.", Default: 20, Minimum: tools.Float64(1), Maximum: tools.Float64(50)},
			),
			Handler: listMessages(client),
		},
		{
			Name:        "m365_chat_send",
			Description: "Send a message to a chat.",
			Schema: tools.MustSchema(
				tools.Param{Name: "chat_id", Type: "string", Description: "Chat id.", Required: true},
				tools.Param{Name: "message", Type: "string", Description: "Message text.", Required: true},
			),
			Handler: sendMessage(client),
		},
		{
			Name:        "m365_chat_transcripts",
			Description: "List transcripts of an online meeting.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "meeting_id", Type: "string", Description: "Online meeting id.", Required: true},
			),
			Handler: listTranscripts(client, defaultUser),
		},
		{
			Name:        "m365_chat_transcript",
			Description: "Fetch an online meeting transcript as WebVTT text.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "meeting_id", Type: "string", Description: "Online meeting id.", Required: true},
				tools.Param{Name: "transcript_id", Type: "string", Description: "Transcript id.", Required: true},
			),
			Handler: getTranscript(client, defaultUser),
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func listChats(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/chats",
			Query: map[string]any{
				"$top":     args.Int("top"),
				"$orderby": "lastMessagePreview/createdDateTime desc",
			},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func listMessages(client *graph.Client) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/chats/" + url.PathEscape(args.String("chat_id")) + "/messages",
			Query:  map[string]any{"$top": args.Int("top")},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func sendMessage(client *graph.Client) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodPost,
			Path:   "/chats/" + url.PathEscape(args.String("chat_id")) + "/messages",
			Body: map[string]any{
				"body": map[string]any{"content": args.String("message")},
			},
		})
		if err != nil {
			return "", err
		}
		if resp.NoContent {
			return "Message sent.", nil
		}
		return tools.FormatJSON(resp.Body)
	}
}

func listTranscripts(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		// Meeting transcripts are not finalized on v1.0 yet.
		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path: "/users/" + url.PathEscape(user) + "/onlineMeetings/" +
				url.PathEscape(args.String("meeting_id")) + "/transcripts",
			Beta: true,
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func getTranscript(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		path := "/users/" + url.PathEscape(user) + "/onlineMeetings/" +
			url.PathEscape(args.String("meeting_id")) + "/transcripts/" +
			url.PathEscape(args.String("transcript_id")) + "/content"
		return client.Text(ctx, path, "text/vtt")
	}
}
