package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-bazi/backend/internal/handler/reading"
	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
	"github.com/zhouzirui/z-bazi/backend/internal/service/chart"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
)

type echoNarrator struct{}

func (echoNarrator) InterpretChart(_ context.Context, c bazi.ChartData) (string, error) {
	return "1. Personality\nDay pillar " + c.DayPillar.RawLabel, nil
}

func (echoNarrator) DailyInsight(_ context.Context, _ bazi.ChartData, date string) (string, error) {
	return "Insight for " + date, nil
}

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	raw, err := chart.DecodeRawResult([]byte(`{"mainPillars":{"day":{"chinese":"甲子"}}}`))
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC) }
	runner := pipeline.NewRunner(chart.StaticComputer{Result: raw}, echoNarrator{}, pipeline.WithClock(clock))

	r := chi.NewRouter()
	New(runner).RegisterRoutes(r)
	return r
}

type sseFrame struct {
	event string
	data  StreamResponse
}

func parseFrames(t *testing.T, body string) []sseFrame {
	t.Helper()
	var frames []sseFrame
	var current sseFrame
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &current.data))
		case line == "":
			frames = append(frames, current)
			current = sseFrame{}
		}
	}
	return frames
}

func TestSSEStreamsStagesInOrder(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readings/stream?date=2001-05-17&time=08:30&timezone=UTC&gender=male", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	frames := parseFrames(t, resp.Body.String())
	events := make([]string, 0, len(frames))
	for _, f := range frames {
		events = append(events, f.event)
	}
	assert.Equal(t, []string{"start", "chart", "interpretation", "daily_insight", "end"}, events)

	require.NotNil(t, frames[1].data.Update)
	require.NotNil(t, frames[1].data.Update.Chart)
	assert.Equal(t, "子", frames[1].data.Update.Chart.DayPillar.EarthlyBranch)
	assert.Equal(t, "Day pillar 甲子", frames[2].data.Update.Sections[0].Paragraphs[0])
	assert.Equal(t, "Insight for 2026-10-19", frames[3].data.Update.DailyInsight)
}

func TestSSERejectsInvalidQuery(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readings/stream?date=2001-05-17&time=08:30&gender=male", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSSECancelledRequestStopsEarly(t *testing.T) {
	r := setupRouter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/readings/stream?date=2001-05-17&time=08:30&timezone=UTC&gender=male", nil).WithContext(ctx)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	frames := parseFrames(t, resp.Body.String())
	require.Len(t, frames, 1)
	assert.Equal(t, "start", frames[0].event)
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/readings/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketStreamsReading(t *testing.T) {
	srv := httptest.NewServer(setupRouter(t))
	defer srv.Close()

	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteJSON(reading.BirthRequest{
		Date:     "2001-05-17",
		Time:     "08:30",
		Timezone: "Asia/Shanghai",
		Gender:   "female",
	}))

	var events []string
	for {
		var msg StreamResponse
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		events = append(events, msg.Event)
		if msg.Event == "daily_insight" {
			assert.Equal(t, "Insight for 2026-10-19", msg.Update.DailyInsight)
		}
	}

	assert.Equal(t, []string{"start", "chart", "interpretation", "daily_insight", "end"}, events)
}

func TestWebSocketReportsInvalidRequest(t *testing.T) {
	srv := httptest.NewServer(setupRouter(t))
	defer srv.Close()

	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteJSON(reading.BirthRequest{Date: "2001-05-17", Time: "08:30", Timezone: "UTC", Gender: "x"}))

	var msg StreamResponse
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Event)
	assert.Contains(t, msg.Error, "gender")
}
