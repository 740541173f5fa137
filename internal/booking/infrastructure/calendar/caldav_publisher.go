package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
)

// ErrNoCalendars is returned when the account exposes no calendar.
var ErrNoCalendars = errors.New("no calendars found")

// CalDAVConfig holds the CalDAV account to publish into.
type CalDAVConfig struct {
	URL          string
	Username     string
	Password     string
	CalendarPath string
}

// CalDAVPublisher puts confirmed appointments on a CalDAV calendar
// (Nextcloud, Fastmail, iCloud and similar).
type CalDAVPublisher struct {
	cfg    CalDAVConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewCalDAVPublisher creates a CalDAV publisher.
func NewCalDAVPublisher(cfg CalDAVConfig, logger *slog.Logger) *CalDAVPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalDAVPublisher{cfg: cfg, logger: logger, now: time.Now}
}

// PublishAppointment creates or replaces the session's event.
func (p *CalDAVPublisher) PublishAppointment(ctx context.Context, record *queries.CommitmentRecordDTO) error {
	client, err := p.client()
	if err != nil {
		return err
	}

	calPath, err := p.calendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to find calendar: %w", err)
	}

	eventPath := EventPath(calPath, record)
	if _, err := client.PutCalendarObject(ctx, eventPath, ToICalendar(record, p.now())); err != nil {
		return fmt.Errorf("failed to put %s: %w", eventPath, err)
	}

	p.logger.Debug("caldav event written", "event_path", eventPath)
	return nil
}

// EventPath is where a session's event lives inside calPath.
func EventPath(calPath string, record *queries.CommitmentRecordDTO) string {
	if !strings.HasSuffix(calPath, "/") {
		calPath += "/"
	}
	return calPath + record.SessionID.String() + ".ics"
}

func (p *CalDAVPublisher) client() (*caldav.Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, p.cfg.Username, p.cfg.Password), p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (p *CalDAVPublisher) calendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if p.cfg.CalendarPath != "" {
		return p.cfg.CalendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", ErrNoCalendars
	}
	return cals[0].Path, nil
}
