package recurrence

import (
	calendar "google.golang.org/api/calendar/v3"

	"github.com/calendops/calendops/internal/timeutil"
)

// PatchInput carries the fields of a sparse event update. Nil pointers
// mean "leave unchanged"; they are never copied into the patch.
type PatchInput struct {
	Summary     *string
	Description *string
	Location    *string
	Start       *string
	End         *string
	TimeZone    *string
	Attendees   []string
}

// BuildPatch converts the input into a sparse provider patch. When a
// start or end instant changes, both TimeSpecs carry the resolved
// zone, with an explicit TimeZone argument overriding defaultZone.
// When only a zone is supplied, timezone-only TimeSpecs are emitted so
// the display zone of an event can change without moving it.
func BuildPatch(in PatchInput, defaultZone string) *calendar.Event {
	patch := &calendar.Event{}

	if in.Summary != nil {
		patch.Summary = *in.Summary
	}
	if in.Description != nil {
		patch.Description = *in.Description
	}
	if in.Location != nil {
		patch.Location = *in.Location
	}

	zone := defaultZone
	if in.TimeZone != nil {
		zone = *in.TimeZone
	}

	if in.Start != nil {
		patch.Start = patchTime(*in.Start, zone)
	}
	if in.End != nil {
		patch.End = patchTime(*in.End, zone)
	}

	// A one-sided timed change still stamps the zone on the other
	// TimeSpec so both ends of the window resolve in the same zone.
	if patch.Start != nil && patch.End == nil && patch.Start.TimeZone != "" {
		patch.End = &calendar.EventDateTime{TimeZone: zone}
	} else if patch.End != nil && patch.Start == nil && patch.End.TimeZone != "" {
		patch.Start = &calendar.EventDateTime{TimeZone: zone}
	} else if in.Start == nil && in.End == nil && in.TimeZone != nil {
		patch.Start = &calendar.EventDateTime{TimeZone: zone}
		patch.End = &calendar.EventDateTime{TimeZone: zone}
	}

	if len(in.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, 0, len(in.Attendees))
		for _, email := range in.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		patch.Attendees = attendees
	}

	return patch
}

// patchTime builds the EventDateTime for a changed instant. Timed
// values always carry the resolved zone; all-day dates carry none.
func patchTime(value, zone string) *calendar.EventDateTime {
	spec := timeutil.BuildTimeSpec(value, zone)
	if spec.IsAllDay() {
		return &calendar.EventDateTime{Date: spec.Date}
	}
	return &calendar.EventDateTime{DateTime: spec.DateTime, TimeZone: zone}
}
