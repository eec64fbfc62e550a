package calendar

import (
	"fmt"
	"io"

	ical "github.com/arran4/golang-ical"

	"notare/internal/core"
)

// DefaultProdID identifies exports produced by this application.
const DefaultProdID = "-//notare//diario//PT"

// ExportICS serializes events as all-day VEVENTs. UIDs are derived from the
// day, the kind and the position within the day, so exporting the same data
// twice yields the same calendar.
func ExportICS(events []DatedEvent, prodID string) (string, error) {
	if prodID == "" {
		prodID = DefaultProdID
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	perDay := make(map[string]int)
	for _, e := range events {
		if err := e.Date.Validate(); err != nil {
			return "", fmt.Errorf("export event %q: %w", e.Event.Title, err)
		}
		if !e.Event.Kind.IsValid() {
			return "", fmt.Errorf("export event %q: %w: %q", e.Event.Title, core.ErrInvalidEventKind, e.Event.Kind)
		}

		key := e.Date.Key()
		idx := perDay[key]
		perDay[key] = idx + 1

		ev := cal.AddEvent(fmt.Sprintf("%s-%s-%d@notare", key, e.Event.Kind, idx))
		ev.SetDtStampTime(e.Date.Time)
		ev.SetAllDayStartAt(e.Date.Time)
		ev.SetAllDayEndAt(e.Date.AddDays(1).Time)
		ev.SetSummary(e.Event.Title)
		ev.AddProperty(ical.ComponentPropertyCategories, string(e.Event.Kind))
	}

	return cal.Serialize(), nil
}

// WriteICS writes the export of events to w.
func WriteICS(w io.Writer, events []DatedEvent, prodID string) error {
	body, err := ExportICS(events, prodID)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, body)
	return err
}
