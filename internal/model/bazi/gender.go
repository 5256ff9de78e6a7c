package bazi

import (
	"fmt"
	"strings"
	"time"
)

// Gender selects the chart direction rules of the computation backend.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts male/female in any case, plus the single-letter forms.
func ParseGender(raw string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	default:
		return "", fmt.Errorf("invalid gender %q", raw)
	}
}

// Label returns the capitalised display form.
func (g Gender) Label() string {
	switch g {
	case Male:
		return "Male"
	case Female:
		return "Female"
	default:
		return ""
	}
}

// Symbol returns ♂ or ♀.
func (g Gender) Symbol() string {
	if g == Female {
		return "♀"
	}
	return "♂"
}

// BirthSummary is the header row shown above the pillar grid.
type BirthSummary struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Gender string `json:"gender"`
	Stamp  string `json:"birthISO"`
	Zone   string `json:"timezone"`
}

// Summarize formats the birth instant in its own zone.
func Summarize(instant time.Time, zone *time.Location, gender Gender) BirthSummary {
	local := instant.In(zone)
	return BirthSummary{
		Date:   local.Format("January 2, 2006"),
		Time:   local.Format("03:04 PM"),
		Gender: strings.TrimSpace(gender.Symbol() + " " + gender.Label()),
		Stamp:  local.Format("2006-01-02T15:04:05"),
		Zone:   zone.String(),
	}
}
