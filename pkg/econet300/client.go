package econet300

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Reader interface {
	Open() error
	Close() error
	Host() string
	GetSysParams(ctx context.Context) (*SysParams, error)
	GetRegParams(ctx context.Context) (Params, error)
}

type Instrument struct {
	RecordTime func(endpoint string, duration time.Duration, err error)
}

type HTTPReader struct {
	baseURL    string
	username   string
	password   string
	timeout    time.Duration
	client     *http.Client
	instrument []Instrument
}

func traceLoggerInstrumentation(logger *zap.Logger) *Instrument {
	return &Instrument{
		RecordTime: func(endpoint string, duration time.Duration, err error) {
			logger.Debug("econet300 request", zap.String("endpoint", endpoint),
				zap.Int64("millis", duration.Milliseconds()), zap.Error(err))
		},
	}
}

func CreateHTTPReader(host, username, password string, timeout time.Duration,
	logger *zap.Logger, instrumentation *Instrument) (Reader, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("econet300: empty host")
	}
	var inst []Instrument
	if logger != nil {
		inst = append(inst, *traceLoggerInstrumentation(logger.With(zap.String("target", "econet300"))))
	}
	if instrumentation != nil {
		inst = append(inst, *instrumentation)
	}
	return &HTTPReader{
		baseURL:    baseURL(host),
		username:   username,
		password:   password,
		timeout:    timeout,
		instrument: inst,
	}, nil
}

func (r *HTTPReader) Open() error {
	if r.client == nil {
		r.client = &http.Client{Timeout: r.timeout}
	}
	return nil
}

func (r *HTTPReader) Close() error {
	if r.client != nil {
		r.client.CloseIdleConnections()
	}
	return nil
}

func (r *HTTPReader) Host() string {
	return r.baseURL
}

// GetSysParams records a failed request when the body does not decode
// into usable params, not only on transport errors.
func (r *HTTPReader) GetSysParams(ctx context.Context) (sys *SysParams, err error) {
	defer RecordTimer(ENDPOINT_SYS_PARAMS, r.instrument, &err)()

	body, err := r.get(ctx, ENDPOINT_SYS_PARAMS)
	if err != nil {
		return nil, err
	}
	return parseSysParams(body)
}

func (r *HTTPReader) GetRegParams(ctx context.Context) (params Params, err error) {
	defer RecordTimer(ENDPOINT_REG_PARAMS, r.instrument, &err)()

	body, err := r.get(ctx, ENDPOINT_REG_PARAMS)
	if err != nil {
		return nil, err
	}
	return parseRegParams(body)
}

func (r *HTTPReader) get(ctx context.Context, endpoint string) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("econet300: reader is not open")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/econet/%s", r.baseURL, endpoint), nil)
	if err != nil {
		return nil, err
	}
	if r.username != "" {
		req.SetBasicAuth(r.username, r.password)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("econet300: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func RecordTimer(endpoint string, instrument []Instrument, err *error) func() {
	if instrument == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		var e error
		if err != nil {
			e = *err
		}
		for i := range instrument {
			instrument[i].RecordTime(endpoint, duration, e)
		}
	}
}

func baseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "http://" + host
}
