package gservice

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/mohammad-safakhou/daybrief/internal/agent/core"
)

// Calendar implements core.CalendarProvider on top of the Google
// Calendar API.
type Calendar struct {
	creds      *Credentials
	calendarID string
}

// NewCalendar creates a calendar provider for the given calendar id
// ("primary" for the user's default calendar).
func NewCalendar(creds *Credentials, calendarID string) *Calendar {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Calendar{creds: creds, calendarID: calendarID}
}

// Events returns the expanded events in [from, to), ordered by start.
func (c *Calendar) Events(ctx context.Context, from, to time.Time) ([]core.CalendarEvent, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(c.creds.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("calendar.NewService failed: %w", err)
	}

	list, err := svc.Events.List(c.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("events.List failed: %w", err)
	}

	events := make([]core.CalendarEvent, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, toCalendarEvent(item))
	}
	return events, nil
}

func toCalendarEvent(item *calendar.Event) core.CalendarEvent {
	event := core.CalendarEvent{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		MeetLink:    videoEntryPoint(item),
	}
	if item.Start != nil {
		event.StartTime = item.Start.DateTime
		if event.StartTime == "" {
			// All-day events carry only a date.
			event.StartTime = item.Start.Date
		}
	}
	for _, a := range item.Attendees {
		event.Attendees = append(event.Attendees, a.Email)
	}
	return event
}

// videoEntryPoint returns the video conference URI, if any.
func videoEntryPoint(item *calendar.Event) string {
	if item.ConferenceData == nil {
		return ""
	}
	for _, entry := range item.ConferenceData.EntryPoints {
		if entry.EntryPointType == "video" {
			return entry.Uri
		}
	}
	return ""
}
