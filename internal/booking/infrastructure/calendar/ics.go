package calendar

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
)

// PropXOpportunity marks events created by this service.
const PropXOpportunity = "X-OPPORTUNITY-JOB"

const productID = "-//Opportunity//Appointment Booking//EN"

// EventUID is the stable iCalendar UID of a session's appointment.
func EventUID(record *queries.CommitmentRecordDTO) string {
	return record.SessionID.String() + "@opportunity"
}

// ToICalendar renders a commitment record as a single-event calendar.
// Declined or pending records are exported with a matching STATUS.
func ToICalendar(record *queries.CommitmentRecordDTO, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, EventUID(record))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, record.StartsAt.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, record.EndsAt.UTC())
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("Appointment %s", record.JobNumber))
	event.Props.SetText(ical.PropDescription, describe(record))
	event.Props.SetText(ical.PropStatus, eventStatus(record.Status))

	job := ical.NewProp(PropXOpportunity)
	job.Value = record.JobNumber
	event.Props[PropXOpportunity] = []ical.Prop{*job}

	cal.Children = append(cal.Children, event.Component)
	return cal
}

// WriteICS encodes the record as an .ics document.
func WriteICS(w io.Writer, record *queries.CommitmentRecordDTO, stamp time.Time) error {
	return ical.NewEncoder(w).Encode(ToICalendar(record, stamp))
}

// ICSBytes is WriteICS into memory.
func ICSBytes(record *queries.CommitmentRecordDTO, stamp time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteICS(&buf, record, stamp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func describe(record *queries.CommitmentRecordDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job: %s\n", record.JobNumber)
	fmt.Fprintf(&b, "When: %s %s\n", record.DisplayDate, record.TimeRange)
	for _, party := range []queries.PartyResponseDTO{record.Provider, record.Receiver, record.Facilitator} {
		fmt.Fprintf(&b, "%s (%s): %s", party.Title, party.Abbreviation, party.Response)
		if party.RespondedAt != nil {
			fmt.Fprintf(&b, " at %s", party.RespondedAt.UTC().Format(time.RFC3339))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func eventStatus(status string) string {
	switch status {
	case queries.RecordConfirmed:
		return "CONFIRMED"
	case queries.RecordDeclined:
		return "CANCELLED"
	default:
		return "TENTATIVE"
	}
}
