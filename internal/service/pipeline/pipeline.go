package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-bazi/backend/internal/analysis/instant"
	"github.com/zhouzirui/z-bazi/backend/internal/analysis/narrative"
	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
	"github.com/zhouzirui/z-bazi/backend/internal/service/chart"
)

// Fallback texts shown in place of a failed narrative.
const (
	InterpretationFallback = "Unable to fetch AI interpretation at the moment."
	DailyInsightFallback   = "Unable to fetch daily insight."
)

// Narrator produces the two chart narratives.
type Narrator interface {
	InterpretChart(ctx context.Context, chart bazi.ChartData) (string, error)
	DailyInsight(ctx context.Context, chart bazi.ChartData, date string) (string, error)
}

// BirthInputs is what the caller collected. CalendarDate and WallTime may
// carry unrelated clock/date parts from their pickers.
type BirthInputs struct {
	CalendarDate time.Time
	WallTime     time.Time
	Timezone     *time.Location
	// DeviceZone is the zone the pickers ran in; nil means Timezone.
	DeviceZone *time.Location
	Gender     bazi.Gender
}

// Stage names the kind of an Update.
type Stage string

const (
	StageChart          Stage = "chart"
	StageInterpretation Stage = "interpretation"
	StageDailyInsight   Stage = "daily_insight"
	StageDone           Stage = "done"
)

// Update is one step of progressive delivery.
type Update struct {
	RunID          string             `json:"runId"`
	Stage          Stage              `json:"stage"`
	Birth          *bazi.BirthSummary `json:"birth,omitempty"`
	Chart          *bazi.ChartData    `json:"chart,omitempty"`
	Interpretation string             `json:"interpretation,omitempty"`
	Sections       []bazi.Section     `json:"sections,omitempty"`
	DailyInsight   string             `json:"dailyInsight,omitempty"`
	// DailyInsightText is the sanitized insight for display.
	DailyInsightText string `json:"dailyInsightText,omitempty"`
}

// Result is the final state of a run.
type Result struct {
	RunID            string            `json:"runId"`
	Birth            bazi.BirthSummary `json:"birth"`
	Chart            bazi.ChartData    `json:"chart"`
	ChartError       string            `json:"chartError,omitempty"`
	Interpretation   string            `json:"interpretation"`
	Sections         []bazi.Section    `json:"sections"`
	DailyInsight     string            `json:"dailyInsight"`
	DailyInsightText string            `json:"dailyInsightText"`
	// Abandoned is set when the caller cancelled before the run finished.
	Abandoned bool `json:"-"`
}

// Runner executes birth inputs → chart → narratives.
type Runner struct {
	computer chart.Computer
	narrator Narrator
	now      func() time.Time
}

// Option customises a Runner.
type Option func(*Runner)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner wires a runner. narrator may be nil, in which case both narratives use their fallback.
func NewRunner(computer chart.Computer, narrator Narrator, opts ...Option) *Runner {
	r := &Runner{
		computer: computer,
		narrator: narrator,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OrFallback returns text unless err is set or text is blank.
func OrFallback(text string, err error, fallback string) string {
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}

// Run executes one pipeline. emit, when non-nil, receives updates in order and is never
// called after ctx is done. Narrative failures degrade to fallback texts; Run does not fail.
func (r *Runner) Run(ctx context.Context, in BirthInputs, emit func(Update)) Result {
	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("component", "pipeline").Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	deliver := func(u Update) {
		if emit != nil && ctx.Err() == nil {
			emit(u)
		}
	}
	zone := in.Timezone
	if zone == nil {
		zone = time.UTC
	}

	device := in.DeviceZone
	if device == nil {
		device = zone
	}
	birth := instant.NewNormalizer(device).Normalize(in.CalendarDate, in.WallTime, zone)
	result := Result{
		RunID: runID,
		Birth: bazi.Summarize(birth, zone, in.Gender),
	}
	logger.Info().Str("birth", result.Birth.Stamp).Str("timezone", zone.String()).Str("gender", string(in.Gender)).Msg("pipeline started")

	raw, chartErr := r.compute(ctx, birth, in.Gender, zone.String())
	if ctx.Err() != nil {
		return abandon(result, logger, StageChart)
	}
	result.Chart = chart.ToChartData(raw)
	if chartErr != nil {
		result.ChartError = chartErr.Error()
		logger.Warn().Err(chartErr).Msg("chart computation failed")
	} else if raw.Empty() {
		logger.Warn().Msg("chart computation returned no data")
	}

	chartData := result.Chart
	deliver(Update{RunID: runID, Stage: StageChart, Birth: &result.Birth, Chart: &chartData})

	var interpretation string
	var interpErr error
	if chartErr == nil && r.narrator != nil {
		interpretation, interpErr = r.narrator.InterpretChart(ctx, result.Chart)
	}
	if ctx.Err() != nil {
		return abandon(result, logger, StageInterpretation)
	}
	if interpErr != nil {
		logger.Warn().Err(interpErr).Msg("interpretation degraded to fallback")
	}
	result.Interpretation = OrFallback(interpretation, interpErr, InterpretationFallback)
	result.Sections = narrative.Structure(result.Interpretation)
	deliver(Update{RunID: runID, Stage: StageInterpretation, Interpretation: result.Interpretation, Sections: result.Sections})

	var insight string
	var insightErr error
	if chartErr == nil && r.narrator != nil {
		insight, insightErr = r.narrator.DailyInsight(ctx, result.Chart, instant.Today(r.now(), zone))
	}
	if ctx.Err() != nil {
		return abandon(result, logger, StageDailyInsight)
	}
	if insightErr != nil {
		logger.Warn().Err(insightErr).Msg("daily insight degraded to fallback")
	}
	result.DailyInsight = OrFallback(insight, insightErr, DailyInsightFallback)
	result.DailyInsightText = narrative.Sanitize(result.DailyInsight)
	deliver(Update{RunID: runID, Stage: StageDailyInsight, DailyInsight: result.DailyInsight, DailyInsightText: result.DailyInsightText})

	deliver(Update{RunID: runID, Stage: StageDone})
	logger.Info().Msg("pipeline completed")
	return result
}

// Start runs the pipeline in a goroutine and streams its updates. The channel is
// closed when the run finishes or ctx is cancelled.
func (r *Runner) Start(ctx context.Context, in BirthInputs) <-chan Update {
	updates := make(chan Update, 4)
	go func() {
		defer close(updates)
		r.Run(ctx, in, func(u Update) {
			if ctx.Err() != nil {
				return
			}
			select {
			case updates <- u:
			case <-ctx.Done():
			}
		})
	}()
	return updates
}

func (r *Runner) compute(ctx context.Context, birth time.Time, gender bazi.Gender, zone string) (chart.RawResult, error) {
	if r.computer == nil {
		return chart.RawResult{}, chart.ErrNotConfigured
	}
	return r.computer.Compute(ctx, birth, gender, zone)
}

func abandon(result Result, logger zerolog.Logger, stage Stage) Result {
	logger.Info().Str("stage", string(stage)).Msg("pipeline abandoned by caller")
	result.Abandoned = true
	return result
}
