package bazi

// Unknown marks a stem or branch that could not be read from the computation result.
const Unknown = "N/A"

// Pillar is one of the four year/month/day/hour designators.
type Pillar struct {
	HeavenlyStem  string `json:"heavenlyStem"`
	EarthlyBranch string `json:"earthlyBranch"`
	RawLabel      string `json:"chinese"`
}

// ChartData is the canonical chart handed to narration and presentation.
// DayMaster stays nil when the computation did not provide one; callers omit the row.
type ChartData struct {
	YearPillar  Pillar  `json:"yearPillar"`
	MonthPillar Pillar  `json:"monthPillar"`
	DayPillar   Pillar  `json:"dayPillar"`
	HourPillar  Pillar  `json:"hourPillar"`
	DayMaster   *string `json:"dayMaster,omitempty"`
}

// Pillars returns the four pillars in year, month, day, hour order.
func (c ChartData) Pillars() [4]Pillar {
	return [4]Pillar{c.YearPillar, c.MonthPillar, c.DayPillar, c.HourPillar}
}

// DayMasterOr returns the day master or the supplied placeholder.
func (c ChartData) DayMasterOr(placeholder string) string {
	if c.DayMaster == nil {
		return placeholder
	}
	return *c.DayMaster
}

// PillarNames lists pillar labels in display order.
var PillarNames = [4]string{"Year", "Month", "Day", "Hour"}
