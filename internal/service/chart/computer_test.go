package chart

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
)

func TestHTTPComputerPostsBirthMoment(t *testing.T) {
	var got computeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		if !assert.NoError(t, err) || !assert.NoError(t, json.Unmarshal(body, &got)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fullResult))
	}))
	defer srv.Close()

	computer := NewHTTPComputer(srv.URL, 5*time.Second)
	instant := time.Date(2001, time.May, 17, 0, 30, 0, 0, time.UTC)

	raw, err := computer.Compute(context.Background(), instant, bazi.Female, "Asia/Shanghai")
	require.NoError(t, err)

	assert.Equal(t, "2001-05-17T00:30:00Z", got.Instant)
	assert.Equal(t, "female", got.Gender)
	assert.Equal(t, "Asia/Shanghai", got.Timezone)
	assert.Equal(t, "甲子", raw.String("mainPillars", "day", "chinese"))
}

func TestHTTPComputerRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPComputer(srv.URL, time.Second).Compute(context.Background(), time.Now(), bazi.Male, "UTC")
	assert.Error(t, err)
}

func TestHTTPComputerNotConfigured(t *testing.T) {
	_, err := NewHTTPComputer("", time.Second).Compute(context.Background(), time.Now(), bazi.Male, "UTC")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFileComputer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	require.NoError(t, os.WriteFile(path, []byte(fullResult), 0o600))

	raw, err := FileComputer{Path: path}.Compute(context.Background(), time.Now(), bazi.Male, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "戊辰", raw.String("mainPillars", "time", "chinese"))

	_, err = FileComputer{Path: filepath.Join(t.TempDir(), "missing.json")}.Compute(context.Background(), time.Now(), bazi.Male, "UTC")
	assert.Error(t, err)
}
