package rest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/veiloq/sahmk-go/pkg/logging"
)

// DebugTransport is an http.RoundTripper that logs full request and response
// dumps at debug level. Install it via Config.Transport when diagnosing
// provider interactions.
type DebugTransport struct {
	// Base is the underlying round tripper; http.DefaultTransport when nil.
	Base http.RoundTripper

	// MaxBodySize caps how much of a response body is logged. Bodies beyond
	// the cap are truncated in the log only, never in the response.
	MaxBodySize int

	Logger logging.Logger
}

// NewDebugTransport creates a debug transport with a 4KB body log cap.
func NewDebugTransport(logger logging.Logger) *DebugTransport {
	return &DebugTransport{
		MaxBodySize: 4096,
		Logger:      logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := t.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if dump, err := httputil.DumpRequestOut(req, false); err == nil {
		logger.Debug("http request dump", logging.String("dump", string(dump)))
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		logger.Error("http round trip failed",
			logging.String("url", req.URL.String()),
			logging.Error(err),
		)
		return nil, err
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		logger.Warn("failed to read response body for logging", logging.Error(readErr))
		resp.Body = io.NopCloser(bytes.NewReader(nil))
		return resp, nil
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	logBody := body
	if t.MaxBodySize > 0 && len(logBody) > t.MaxBodySize {
		logBody = logBody[:t.MaxBodySize]
	}
	logger.Debug("http response dump",
		logging.String("url", req.URL.String()),
		logging.Int("status", resp.StatusCode),
		logging.String("body", string(logBody)),
	)
	return resp, nil
}
