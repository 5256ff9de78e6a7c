package chart

import (
	"strings"

	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
)

// Key paths of the computation result.
const (
	mainPillarsKey = "mainPillars"
	labelKey       = "chinese"
)

var (
	pillarKeys   = [4]string{"year", "month", "day", "time"}
	dayMasterKey = []string{"basicAnalysis", "dayMaster", "stem"}
)

// ToChartData maps a computation result onto the canonical chart. Every field has a fallback.
func ToChartData(raw RawResult) bazi.ChartData {
	var pillars [4]bazi.Pillar
	for i, key := range pillarKeys {
		pillars[i] = DecomposeLabel(raw.String(mainPillarsKey, key, labelKey))
	}

	data := bazi.ChartData{
		YearPillar:  pillars[0],
		MonthPillar: pillars[1],
		DayPillar:   pillars[2],
		HourPillar:  pillars[3],
	}
	if stem := strings.TrimSpace(raw.String(dayMasterKey...)); stem != "" {
		data.DayMaster = &stem
	}
	return data
}

// DecomposeLabel splits a stem-branch label such as "甲子". The first rune is the stem.
// Surrounding whitespace is ignored for the split; RawLabel keeps the label untouched.
func DecomposeLabel(label string) bazi.Pillar {
	runes := []rune(strings.TrimSpace(label))
	pillar := bazi.Pillar{
		HeavenlyStem:  bazi.Unknown,
		EarthlyBranch: bazi.Unknown,
		RawLabel:      label,
	}
	if len(runes) == 0 {
		return pillar
	}
	pillar.HeavenlyStem = string(runes[0])
	if len(runes) > 1 {
		pillar.EarthlyBranch = string(runes[1:])
	}
	return pillar
}
