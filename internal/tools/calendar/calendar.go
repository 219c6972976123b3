// Package calendar contributes Outlook calendar operations to the tool
// registry.
package calendar

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/makhatib/mcp-microsoft365/internal/graph"
	"github.com/makhatib/mcp-microsoft365/internal/tools"
)

const eventSelect = "id,subject,organizer,attendees,start,end,location,isAllDay,onlineMeeting,bodyPreview"

var userParam = tools.Param{
	Name:        "user",
	Type:        "string",
	Description: "Calendar owner id or principal name. Falls back to the configured default user.",
}

// Register adds the calendar operations to the registry.
func Register(reg *tools.Registry, client *graph.Client, defaultUser string) error {
	defs := []tools.Definition{
		{
			Name:        "m365_calendar_list",
			Description: "List calendar events within a time window.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "start", Type: "string", Description: "Window start, ISO 8601 (e.g. 2026-01-15T00:00:00Z).", Required: true},
				tools.Param{Name: "end", Type: "string", Description: "Window end, ISO 8601.", Required: true},
				tools.Param{Name: "top", Type: "integer", Description: "Maximum number of events to return.", Default: 25, Minimum: tools.Float64(1), Maximum: tools.Float64(100)},
			),
			Handler: listEvents(client, defaultUser),
		},
		{
			Name:        "m365_calendar_get",
			Description: "Get a single calendar event.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "event_id", Type: "string", Description: "Event id.", Required: true},
			),
			Handler: getEvent(client, defaultUser),
		},
		{
			Name:        "m365_calendar_create",
			Description: "Create a calendar event.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "subject", Type: "string", Description: "Event subject.", Required: true},
				tools.Param{Name: "start", Type: "string", Description: "Start time, ISO 8601 without offset.", Required: true},
				tools.Param{Name: "end", Type: "string", Description: "End time, ISO 8601 without offset.", Required: true},
				tools.Param{Name: "timezone", Type: "string", Description: "IANA or Windows time zone for start and end.", Default: "UTC"},
				tools.Param{Name: "attendees", Type: "string", Description: "Comma-separated attendee email addresses."},
				tools.Param{Name: "body", Type: "string", Description: "Plain-text event description."},
			),
			Handler: createEvent(client, defaultUser),
		},
		{
			Name:        "m365_calendar_delete",
			Description: "Delete a calendar event.",
			Schema: tools.MustSchema(
				userParam,
				tools.Param{Name: "event_id", Type: "string", Description: "Event id.", Required: true},
			),
			Handler: deleteEvent(client, defaultUser),
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func listEvents(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/calendarView",
			Query: map[string]any{
				"startDateTime": args.String("start"),
				"endDateTime":   args.String("end"),
				"$top":          args.Int("top"),
				"$select":       eventSelect,
				"$orderby":      "start/dateTime",
			},
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(tools.Collection(resp.Body))
	}
}

func getEvent(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodGet,
			Path:   "/users/" + url.PathEscape(user) + "/events/" + url.PathEscape(args.String("event_id")),
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(resp.Body)
	}
}

func createEvent(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		event := map[string]any{
			"subject": args.String("subject"),
			"start":   map[string]any{"dateTime": args.String("start"), "timeZone": args.String("timezone")},
			"end":     map[string]any{"dateTime": args.String("end"), "timeZone": args.String("timezone")},
		}
		if body := args.String("body"); body != "" {
			event["body"] = map[string]any{"contentType": "Text", "content": body}
		}
		if attendees := parseAttendees(args.String("attendees")); len(attendees) > 0 {
			event["attendees"] = attendees
		}

		resp, err := client.Do(ctx, graph.Request{
			Method: http.MethodPost,
			Path:   "/users/" + url.PathEscape(user) + "/events",
			Body:   event,
		})
		if err != nil {
			return "", err
		}
		return tools.FormatJSON(resp.Body)
	}
}

func deleteEvent(client *graph.Client, defaultUser string) tools.Handler {
	return func(ctx context.Context, args tools.Args) (string, error) {
		user, err := tools.ResolveUser(args, defaultUser)
		if err != nil {
			return "", err
		}

		if _, err := client.Do(ctx, graph.Request{
			Method: http.MethodDelete,
			Path:   "/users/" + url.PathEscape(user) + "/events/" + url.PathEscape(args.String("event_id")),
		}); err != nil {
			return "", err
		}
		return "Event deleted.", nil
	}
}

// parseAttendees converts a comma-separated address list into Graph
// attendee objects.
func parseAttendees(list string) []map[string]any {
	var attendees []map[string]any
	for _, addr := range strings.Split(list, ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		attendees = append(attendees, map[string]any{
			"emailAddress": map[string]any{"address": addr},
			"type":         "required",
		})
	}
	return attendees
}
