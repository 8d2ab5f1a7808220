// ABOUTME: Google Calendar tool provider: list, create, update, and delete events.
// ABOUTME: Talks to the Calendar v3 REST API on the user's primary calendar.

package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/oauth2"

	"github.com/docketry/docket-gateway/internal/tool"
)

const calendarDefaultBaseURL = "https://www.googleapis.com"

const listEventsSchema = `{
	"type": "object",
	"properties": {
		"time_min": {"type": "string", "description": "RFC3339 lower bound for event start time"},
		"time_max": {"type": "string", "description": "RFC3339 upper bound for event start time"},
		"max_results": {"type": "integer", "description": "Maximum number of events to return (default 10)"}
	},
	"required": ["time_min", "time_max"]
}`

const createEventSchema = `{
	"type": "object",
	"properties": {
		"summary": {"type": "string", "description": "Event title"},
		"description": {"type": "string", "description": "Event description"},
		"start_datetime": {"type": "string", "description": "RFC3339 event start"},
		"end_datetime": {"type": "string", "description": "RFC3339 event end"},
		"attendees": {"type": "array", "items": {"type": "string"}, "description": "Attendee email addresses"}
	},
	"required": ["summary", "start_datetime", "end_datetime"]
}`

const updateEventSchema = `{
	"type": "object",
	"properties": {
		"event_id": {"type": "string", "description": "Identifier of the event to update"},
		"summary": {"type": "string"},
		"description": {"type": "string"},
		"start_datetime": {"type": "string", "description": "RFC3339 event start"},
		"end_datetime": {"type": "string", "description": "RFC3339 event end"}
	},
	"required": ["event_id"]
}`

const deleteEventSchema = `{
	"type": "object",
	"properties": {
		"event_id": {"type": "string", "description": "Identifier of the event to delete"}
	},
	"required": ["event_id"]
}`

// CalendarProvider offers event CRUD on the user's primary calendar.
type CalendarProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewCalendarProvider binds a provider to the user's OAuth token.
func NewCalendarProvider(token *oauth2.Token, baseURL string, httpClient *http.Client) *CalendarProvider {
	if baseURL == "" {
		baseURL = calendarDefaultBaseURL
	}
	if httpClient == nil {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(token))
	}
	return &CalendarProvider{baseURL: baseURL, httpClient: httpClient}
}

func (p *CalendarProvider) Discover(ctx context.Context) ([]tool.Tool, error) {
	return []tool.Tool{
		{
			Name:        "list_calendar_events",
			Description: "List events on the user's primary calendar within a time range.",
			InputSchema: listEventsSchema,
			Handler:     p.listEvents,
		},
		{
			Name:        "create_calendar_event",
			Description: "Create an event on the user's primary calendar.",
			InputSchema: createEventSchema,
			Handler:     p.createEvent,
		},
		{
			Name:        "update_calendar_event",
			Description: "Update fields of an existing event on the user's primary calendar.",
			InputSchema: updateEventSchema,
			Handler:     p.updateEvent,
		},
		{
			Name:        "delete_calendar_event",
			Description: "Delete an event from the user's primary calendar.",
			InputSchema: deleteEventSchema,
			Handler:     p.deleteEvent,
		},
	}, nil
}

func (p *CalendarProvider) listEvents(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	args := gjson.ParseBytes(input)
	maxResults := int(args.Get("max_results").Int())
	if maxResults <= 0 {
		maxResults = 10
	}

	q := url.Values{}
	q.Set("timeMin", args.Get("time_min").String())
	q.Set("timeMax", args.Get("time_max").String())
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	body, err := p.do(ctx, http.MethodGet, "/calendar/v3/calendars/primary/events?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	items := gjson.GetBytes(body, "items").Array()
	if len(items) == 0 {
		return &tool.Result{Content: "No events found in the given time range."}, nil
	}

	var out bytes.Buffer
	for _, item := range items {
		fmt.Fprintf(&out, "- %s (%s to %s) [id: %s]\n",
			item.Get("summary").String(),
			item.Get("start.dateTime").String(),
			item.Get("end.dateTime").String(),
			item.Get("id").String())
	}
	return &tool.Result{Content: out.String()}, nil
}

func (p *CalendarProvider) createEvent(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	args := gjson.ParseBytes(input)

	event := `{}`
	event, _ = sjson.Set(event, "summary", args.Get("summary").String())
	if desc := args.Get("description").String(); desc != "" {
		event, _ = sjson.Set(event, "description", desc)
	}
	event, _ = sjson.Set(event, "start.dateTime", args.Get("start_datetime").String())
	event, _ = sjson.Set(event, "end.dateTime", args.Get("end_datetime").String())
	for _, attendee := range args.Get("attendees").Array() {
		event, _ = sjson.Set(event, "attendees.-1", map[string]string{"email": attendee.String()})
	}

	body, err := p.do(ctx, http.MethodPost, "/calendar/v3/calendars/primary/events", []byte(event))
	if err != nil {
		return nil, err
	}

	return &tool.Result{Content: fmt.Sprintf("Event created. Id: %s, link: %s",
		gjson.GetBytes(body, "id").String(),
		gjson.GetBytes(body, "htmlLink").String())}, nil
}

func (p *CalendarProvider) updateEvent(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	args := gjson.ParseBytes(input)
	eventID := args.Get("event_id").String()
	if eventID == "" {
		return &tool.Result{Content: "Error: 'event_id' is required."}, nil
	}

	patch := `{}`
	if v := args.Get("summary").String(); v != "" {
		patch, _ = sjson.Set(patch, "summary", v)
	}
	if v := args.Get("description").String(); v != "" {
		patch, _ = sjson.Set(patch, "description", v)
	}
	if v := args.Get("start_datetime").String(); v != "" {
		patch, _ = sjson.Set(patch, "start.dateTime", v)
	}
	if v := args.Get("end_datetime").String(); v != "" {
		patch, _ = sjson.Set(patch, "end.dateTime", v)
	}

	body, err := p.do(ctx, http.MethodPatch, "/calendar/v3/calendars/primary/events/"+url.PathEscape(eventID), []byte(patch))
	if err != nil {
		return nil, err
	}

	return &tool.Result{Content: fmt.Sprintf("Event %s updated.", gjson.GetBytes(body, "id").String())}, nil
}

func (p *CalendarProvider) deleteEvent(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	eventID := gjson.GetBytes(input, "event_id").String()
	if eventID == "" {
		return &tool.Result{Content: "Error: 'event_id' is required."}, nil
	}

	if _, err := p.do(ctx, http.MethodDelete, "/calendar/v3/calendars/primary/events/"+url.PathEscape(eventID), nil); err != nil {
		return nil, err
	}
	return &tool.Result{Content: fmt.Sprintf("Event %s deleted.", eventID)}, nil
}

// do issues one Calendar API request and returns the response body. Non-2xx
// statuses become errors, which the running agent sees as error tool output.
func (p *CalendarProvider) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building calendar request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling calendar api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading calendar response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calling calendar api: status %d", resp.StatusCode)
	}
	return respBody, nil
}
