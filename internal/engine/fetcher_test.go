package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

func TestHTTPFetcher_SendsCredentialsAndHeaders(t *testing.T) {
	const plan = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "nurse", user)
		assert.Equal(t, "s3cret", pass)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		assert.Equal(t, config.MimeTextCalendar, r.Header.Get(config.HeaderAccept))
		_, _ = w.Write([]byte(plan))
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL+"/plan.ics?token=abc", "nurse", "s3cret")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, plan, string(body))
}

func TestHTTPFetcher_NoAuthWhenCredentialsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
	require.NoError(t, err)
	_ = rc.Close()
}

func TestHTTPFetcher_StatusErrors(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusBadGateway} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))
			defer ts.Close()

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
			assert.Nil(t, rc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), http.StatusText(code))
		})
	}
}

func TestHTTPFetcher_StatusKinds(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, engine.ErrPlanDenied},
		{http.StatusForbidden, engine.ErrPlanDenied},
		{http.StatusNotFound, engine.ErrPlanUnavailable},
		{http.StatusInternalServerError, engine.ErrPlanUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer ts.Close()

			_, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "nurse", "wrong")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPFetcher_RefusesAnnouncedOversizePlan(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(config.MaxHTTPResponseSize+1))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
	assert.Nil(t, rc)
	assert.ErrorIs(t, err, engine.ErrPlanTooLarge)
}

func TestHTTPFetcher_ContextDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, ts.URL, "", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPFetcher_RejectsBadURLs(t *testing.T) {
	f := engine.NewHTTPFetcher()

	_, err := f.Fetch(context.Background(), string([]byte{0x7f}), "", "")
	assert.ErrorIs(t, err, engine.ErrPlanURL)
	assert.Contains(t, err.Error(), config.ErrInvalidURL)

	_, err = f.Fetch(context.Background(), "file:///etc/passwd", "", "")
	assert.ErrorIs(t, err, engine.ErrPlanScheme)
	assert.Contains(t, err.Error(), config.ErrProtocol)
}

func TestHTTPFetcher_BodyIsCapped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(w, strings.NewReader(strings.Repeat("x", config.MaxHTTPResponseSize+1024)))
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	n, err := io.Copy(io.Discard, rc)
	require.NoError(t, err)
	assert.Equal(t, int64(config.MaxHTTPResponseSize), n)
}
