package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-medreminder/internal/config"
)

var (
	ErrPlanURL         = errors.New(config.ErrInvalidURL)
	ErrPlanScheme      = errors.New(config.ErrProtocol)
	ErrPlanDenied      = errors.New(config.ErrPlanDenied)
	ErrPlanUnavailable = errors.New(config.ErrPlanUnavailable)
	ErrPlanTooLarge    = errors.New(config.ErrPlanTooLarge)
)

// PlanFetcher retrieves a remote medication plan. Tests substitute it to avoid
// the network.
type PlanFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads pharmacy plans over HTTP(S) with optional basic auth.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher bounded by config.HTTPTimeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Fetch downloads the plan at planURL. A refused login is reported as
// ErrPlanDenied so the settings screen can point at the credentials; any
// other non-200 answer is ErrPlanUnavailable. A plan announcing more than
// config.MaxHTTPResponseSize is refused up front, and an unannounced body is
// cut at that size.
func (f *HTTPFetcher) Fetch(ctx context.Context, planURL, user, pass string) (io.ReadCloser, error) {
	u, err := parsePlanURL(planURL)
	if err != nil {
		return nil, err
	}
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, redactURL(u)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, planURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPlanRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeTextCalendar)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPlanNetwork, err)
	}

	if err := checkPlanResponse(resp); err != nil {
		_ = resp.Body.Close()
		log.Warn(config.MsgPlanRejected,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
			slog.Int64(config.LogKeySizeBytes, resp.ContentLength))
		return nil, err
	}

	log.Debug(config.MsgPlanDownload, slog.Int64(config.LogKeySizeBytes, resp.ContentLength))
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, config.MaxHTTPResponseSize), resp.Body}, nil
}

func parsePlanURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%w: %q", ErrPlanScheme, u.Scheme)
	}
	return u, nil
}

func checkPlanResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrPlanDenied, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s", ErrPlanUnavailable, resp.Status)
	case resp.ContentLength > config.MaxHTTPResponseSize:
		return fmt.Errorf("%w: %d bytes", ErrPlanTooLarge, resp.ContentLength)
	}
	return nil
}

// redactURL drops the query and credentials, where pharmacy portals put tokens.
func redactURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
