package instant

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
	// StampLayout is the zone-naive local timestamp exchanged between steps.
	StampLayout = dateLayout + "T" + clockLayout
)

// Normalizer merges independently picked date and time values into one instant.
type Normalizer struct {
	// Device is the zone the pickers produced their values in.
	Device *time.Location
}

// NewNormalizer returns a Normalizer for the given device zone, defaulting to time.Local.
func NewNormalizer(device *time.Location) Normalizer {
	if device == nil {
		device = time.Local
	}
	return Normalizer{Device: device}
}

// Normalize keeps only the calendar day of calendarDate and the clock of wallTime,
// both read in the device zone, and reinterprets the result as wall time in zone.
func (n Normalizer) Normalize(calendarDate, wallTime time.Time, zone *time.Location) time.Time {
	device := n.Device
	if device == nil {
		device = time.Local
	}
	if zone == nil {
		zone = time.UTC
	}
	day := calendarDate.In(device)
	clock := wallTime.In(device)
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, zone)
}

// ParseStamp reads a yyyy-MM-ddTHH:mm:ss stamp as wall time in zone.
func ParseStamp(stamp string, zone *time.Location) (time.Time, error) {
	if zone == nil {
		zone = time.UTC
	}
	t, err := time.ParseInLocation(StampLayout, strings.TrimSpace(stamp), zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid local timestamp %q: %w", stamp, err)
	}
	return t, nil
}

// Stamp formats t as a zone-naive wall time in zone.
func Stamp(t time.Time, zone *time.Location) string {
	if zone == nil {
		zone = time.UTC
	}
	return t.In(zone).Format(StampLayout)
}

// Today returns the calendar date of now in zone, formatted yyyy-MM-dd.
func Today(now time.Time, zone *time.Location) string {
	if zone == nil {
		zone = time.UTC
	}
	return now.In(zone).Format(dateLayout)
}

// LoadZone resolves an IANA zone identifier.
func LoadZone(id string) (*time.Location, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("timezone is required")
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", id, err)
	}
	return loc, nil
}
