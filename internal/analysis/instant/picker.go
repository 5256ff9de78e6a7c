package instant

import (
	"fmt"
	"strings"
	"time"
)

// ParsePickerDate accepts a date picker value: an RFC 3339 instant or a bare
// yyyy-MM-dd day, the latter taken as midnight in device.
func ParsePickerDate(raw string, device *time.Location) (time.Time, error) {
	return parsePicker(raw, device, []string{dateLayout}, "date")
}

// ParsePickerTime accepts a time picker value: an RFC 3339 instant or a bare
// HH:mm[:ss] clock, the latter placed on an arbitrary day in device.
func ParsePickerTime(raw string, device *time.Location) (time.Time, error) {
	return parsePicker(raw, device, []string{clockLayout, "15:04"}, "time")
}

func parsePicker(raw string, device *time.Location, bare []string, kind string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", kind)
	}
	if device == nil {
		device = time.Local
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range bare {
		if t, err := time.ParseInLocation(layout, value, device); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s value %q", kind, raw)
}
