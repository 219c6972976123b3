// Package tasks contributes Microsoft To Do operations to the tool
// registry.
package tasks

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
	Description: "Task owner id or principal name. Falls back to the configured default user.",
}

// Register adds the To Do operations to the registry.
func Register(reg *tools.Registry, client *graph.Client, defaultUser string) error {
	defs := []tools.Definition{
		{
			Name:        "m365_tasks_lists",
			Description: "List the user's task lists.",
			Schema:      tools.MustSchema(userParam),
			Handler:     listTaskLists(client, defaultUser),
		},
		{
			Name:        "m365_tasks_list",
			Description: "List tasks in a task list.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "list_id", Type: "string", Description: "Task list id.", Required: true},
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of tasks to return.", Default: 25, Minimum: tools.Float64(1), Maximum: tools.Float64(100)},
				tools.Param{Name: "status", Type: "string", Description: "Filter by task status.", Enum: []string{"notStarted", "inProgress", "completed"}},
			),
			Handler: listTasks(client, defaultUser),
		},
		{
			Name:        "m365_tasks_create",
			Description: "Create a task in a task list.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "list_id", Type: "string", Description: "Task list id.", Required: true},
				tools.Param{Name: "title", Type: "string", Description: "Task title.", Required: true},
				tools.Param{Name: "body", Type: "string", Description: "Plain-text task notes."},
				tools.Param{Name: "due", Type: "string", Description: "Due date-time, ISO 8601 UTC."},
			),
			Handler: createTask(client, defaultUser),
		},
		{
			Name:        "m365_tasks_complete",
			Description: "Mark a task as completed.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "list_id", Type: "string", Description: "Task list id.", Required: true},
				tools.Param{Name: "task_id", Type: "string", Description: "Task id.", Required: true},
			),
			Handler: completeTask(client, defaultUser),
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func listTaskLists(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/todo/lists",
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func listTasks(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		query := map[string]any{"$top": args.Int("top")}
		if status := args.String("status"); status != "" {
			query["$filter"] = "status eq '" + status + "'"
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/todo/lists/" + url.PathEscape(args.String("list_id")) + "/tasks",
			Query:  query,
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func createTask(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		task := map[string]any{"title": args.String("title")}
		if body := args.String("body"); body != "" {
			task["body"] = map[string]any{"contentType": "text", "content": body}
		}
		if due := args.String("due"); due != "" {
			task["dueDateTime"] = map[string]any{"dateTime": due, "timeZone": "UTC"}
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodPost,
			Path:   "/users/" + url.PathEscape(user) + "/todo/lists/" + url.PathEscape(args.String("list_id")) + "/tasks",
			Body:   task,
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(resp.Body)
	}
}

func completeTask(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodPatch,
			Path: "/users/" + url.PathEscape(user) + "/todo/lists/" + url.PathEscape(args.String("list_id")) +
				"/tasks/" + url.PathEscape(args.String("task_id")),
			Body: map[string]any{"status": "completed"},
		})
		if err != nil {
			return "", err
		}
		if resp.NoContent {
			return "Task completed.", nil
		}
		return tools.FormatJSON(resp.Body)
	}
}
