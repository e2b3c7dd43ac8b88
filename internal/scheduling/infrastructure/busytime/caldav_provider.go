package busytime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/google/uuid"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// CalDAVProvider reads busy windows from an external CalDAV calendar
// (Apple Calendar, Fastmail, Nextcloud, etc.). External events carry
// the locked priority, since nothing in this system can move them.
type CalDAVProvider struct {
	baseURL      string
	username     string
	password     string // App-specific password for Apple
	calendarPath string // Specific calendar path, or empty for default
	logger       *slog.Logger
}

// NewCalDAVProvider creates a CalDAV busy-window provider.
func NewCalDAVProvider(baseURL, username, password string, logger *slog.Logger) *CalDAVProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalDAVProvider{
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// WithCalendarPath sets the specific calendar path to use.
func (p *CalDAVProvider) WithCalendarPath(path string) *CalDAVProvider {
	p.calendarPath = path
	return p
}

// BusyWindows queries the calendar for events overlapping [from, to).
func (p *CalDAVProvider) BusyWindows(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.BusyWindow, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := p.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"SUMMARY", "DTSTART", "DTEND", "UID"},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: from,
					End:   to,
				},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	var windows []domain.BusyWindow
	for _, obj := range objects {
		window, ok := p.parseEvent(&obj, userID)
		if !ok {
			continue
		}
		windows = append(windows, window)
	}

	p.logger.Debug("caldav busy windows fetched",
		"user_id", userID,
		"events", len(objects),
		"windows", len(windows),
	)
	return windows, nil
}

func (p *CalDAVProvider) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, p.username, p.password), p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (p *CalDAVProvider) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if p.calendarPath != "" {
		return p.calendarPath, nil
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
		return "", fmt.Errorf("no calendars found")
	}

	// Use first calendar as default
	return cals[0].Path, nil
}

// parseEvent extracts a busy window from the first VEVENT of a
// calendar object. Events without both start and end are skipped.
func (p *CalDAVProvider) parseEvent(obj *caldav.CalendarObject, userID uuid.UUID) (domain.BusyWindow, bool) {
	if obj == nil || obj.Data == nil {
		return domain.BusyWindow{}, false
	}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		icalEvent := &ical.Event{Component: child}
		start, err := icalEvent.DateTimeStart(time.UTC)
		if err != nil {
			return domain.BusyWindow{}, false
		}
		end, err := icalEvent.DateTimeEnd(time.UTC)
		if err != nil || !end.After(start) {
			return domain.BusyWindow{}, false
		}

		bookingID := uuid.Nil
		if props := child.Props[ical.PropUID]; len(props) > 0 {
			if parsed, err := uuid.Parse(props[0].Value); err == nil {
				bookingID = parsed
			}
		}
		if bookingID == uuid.Nil {
			bookingID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(obj.Path))
		}

		return domain.BusyWindow{
			BookingID: bookingID,
			OwnerID:   userID,
			Start:     start,
			End:       end,
			Priority:  domain.PriorityLocked,
		}, true
	}

	return domain.BusyWindow{}, false
}
