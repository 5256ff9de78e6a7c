package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
)

const fullResult = `{
  "mainPillars": {
    "year":  {"chinese": "庚午", "stem": "庚"},
    "month": {"chinese": "辛巳"},
    "day":   {"chinese": "甲子"},
    "time":  {"chinese": "戊辰"}
  },
  "basicAnalysis": {"dayMaster": {"stem": "甲", "element": "Wood"}}
}`

func decode(t *testing.T, doc string) RawResult {
	t.Helper()
	raw, err := DecodeRawResult([]byte(doc))
	require.NoError(t, err)
	return raw
}

func assertWellFormed(t *testing.T, chart bazi.ChartData) {
	t.Helper()
	for i, p := range chart.Pillars() {
		assert.NotEmpty(t, p.HeavenlyStem, "pillar %s stem", bazi.PillarNames[i])
		assert.NotEmpty(t, p.EarthlyBranch, "pillar %s branch", bazi.PillarNames[i])
	}
}

func TestToChartDataFullResult(t *testing.T) {
	chart := ToChartData(decode(t, fullResult))

	assert.Equal(t, bazi.Pillar{HeavenlyStem: "庚", EarthlyBranch: "午", RawLabel: "庚午"}, chart.YearPillar)
	assert.Equal(t, bazi.Pillar{HeavenlyStem: "辛", EarthlyBranch: "巳", RawLabel: "辛巳"}, chart.MonthPillar)
	assert.Equal(t, bazi.Pillar{HeavenlyStem: "甲", EarthlyBranch: "子", RawLabel: "甲子"}, chart.DayPillar)
	assert.Equal(t, bazi.Pillar{HeavenlyStem: "戊", EarthlyBranch: "辰", RawLabel: "戊辰"}, chart.HourPillar)
	require.NotNil(t, chart.DayMaster)
	assert.Equal(t, "甲", *chart.DayMaster)
}

func TestToChartDataIsTotal(t *testing.T) {
	docs := map[string]string{
		"empty object":        `{}`,
		"null pillars":        `{"mainPillars": null, "basicAnalysis": null}`,
		"pillars not object":  `{"mainPillars": "oops", "basicAnalysis": []}`,
		"null pillar":         `{"mainPillars": {"year": null, "month": {}, "day": {"chinese": null}, "time": {"chinese": ""}}}`,
		"wrong label types":   `{"mainPillars": {"year": {"chinese": {"a": 1}}, "month": {"chinese": [1, 2]}}}`,
		"day master null":     `{"basicAnalysis": {"dayMaster": null}}`,
		"day master not map":  `{"basicAnalysis": {"dayMaster": "甲"}}`,
		"day master stem obj": `{"basicAnalysis": {"dayMaster": {"stem": {"x": 1}}}}`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			var chart bazi.ChartData
			require.NotPanics(t, func() { chart = ToChartData(decode(t, doc)) })
			assertWellFormed(t, chart)
			assert.Nil(t, chart.DayMaster)
		})
	}
}

func TestToChartDataZeroValue(t *testing.T) {
	chart := ToChartData(RawResult{})

	for _, p := range chart.Pillars() {
		assert.Equal(t, bazi.Unknown, p.HeavenlyStem)
		assert.Equal(t, bazi.Unknown, p.EarthlyBranch)
		assert.Empty(t, p.RawLabel)
	}
	assert.Nil(t, chart.DayMaster)
}

func TestToChartDataPartial(t *testing.T) {
	chart := ToChartData(decode(t, `{"mainPillars": {"day": {"chinese": "甲子"}}}`))

	assert.Equal(t, "甲", chart.DayPillar.HeavenlyStem)
	assert.Equal(t, "子", chart.DayPillar.EarthlyBranch)
	assert.Equal(t, bazi.Unknown, chart.YearPillar.HeavenlyStem)
	assert.Equal(t, bazi.Unknown, chart.HourPillar.EarthlyBranch)
}

func TestDecomposeLabel(t *testing.T) {
	tests := []struct {
		label  string
		stem   string
		branch string
	}{
		{"甲子", "甲", "子"},
		{"甲", "甲", bazi.Unknown},
		{"", bazi.Unknown, bazi.Unknown},
		{"JiaZi", "J", "iaZi"},
	}
	for _, tt := range tests {
		p := DecomposeLabel(tt.label)
		assert.Equal(t, tt.stem, p.HeavenlyStem, tt.label)
		assert.Equal(t, tt.branch, p.EarthlyBranch, tt.label)
		assert.Equal(t, tt.label, p.RawLabel)
	}
}

func TestRawResultNumericScalar(t *testing.T) {
	raw := decode(t, `{"basicAnalysis": {"dayMaster": {"stem": 7}}}`)
	assert.Equal(t, "7", raw.String("basicAnalysis", "dayMaster", "stem"))
}

func TestDecodeRawResultRejectsNonObject(t *testing.T) {
	_, err := DecodeRawResult([]byte(`["not", "an", "object"]`))
	assert.Error(t, err)

	_, err = DecodeRawResult([]byte(`{broken`))
	assert.Error(t, err)
}

func TestToChartDataKeepsLabelAsReceived(t *testing.T) {
	chart := ToChartData(decode(t, `{"mainPillars": {"day": {"chinese": " 甲子 "}}, "basicAnalysis": {"dayMaster": {"stem": " 甲 "}}}`))

	assert.Equal(t, bazi.Pillar{HeavenlyStem: "甲", EarthlyBranch: "子", RawLabel: " 甲子 "}, chart.DayPillar)
	require.NotNil(t, chart.DayMaster)
	assert.Equal(t, "甲", *chart.DayMaster)
}

func TestNewRawResultFromDecodedMap(t *testing.T) {
	raw := NewRawResult(map[string]any{
		"mainPillars": map[any]any{"year": map[string]any{"chinese": "庚午"}},
	})

	assert.False(t, raw.Empty())
	assert.Equal(t, "庚午", ToChartData(raw).YearPillar.RawLabel)
	assert.True(t, NewRawResult(nil).Empty())
	assert.True(t, RawResult{}.Empty())
}
