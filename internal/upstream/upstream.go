package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const ewmaAlpha = 0.2

// Upstream exposes a remote HTTP service as a gateway handler. The opaque
// request payload is forwarded as the request body and the response body
// is returned as the opaque response.
type Upstream struct {
	name   string
	url    *url.URL
	client *http.Client

	mutex            sync.Mutex
	ewmaResponseTime time.Duration
	hasEWMA          bool
}

// New creates an upstream handler for the given service name and URL.
func New(name string, u *url.URL, client *http.Client) *Upstream {
	if client == nil {
		client = &http.Client{}
	}

	return &Upstream{
		name:   name,
		url:    u,
		client: client,
	}
}

// URL returns the upstream's base URL.
func (u *Upstream) URL() *url.URL {
	return u.url
}

// Execute forwards the payload to the upstream over HTTP POST. Payloads
// may be []byte or string; anything else is rejected before any network
// traffic. Non-2xx statuses are handler failures.
func (u *Upstream) Execute(ctx context.Context, req any) (any, error) {
	body, err := payloadBytes(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-Gateway-Service", u.name)

	start := time.Now()
	res, err := u.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	u.recordResponse(time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("upstream returned status %d", res.StatusCode)
	}

	return respBody, nil
}

func payloadBytes(req any) ([]byte, error) {
	switch p := req.(type) {
	case nil:
		return nil, nil
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	default:
		return nil, fmt.Errorf("unsupported payload type %T", req)
	}
}

func (u *Upstream) recordResponse(duration time.Duration) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if !u.hasEWMA {
		u.ewmaResponseTime = duration
		u.hasEWMA = true
		return
	}
	//ewma = (1 - α) * ewma + α * latest
	u.ewmaResponseTime = time.Duration((1-ewmaAlpha)*float64(u.ewmaResponseTime) + ewmaAlpha*float64(duration))
}

// EWMATime returns the exponentially weighted moving average response time.
// Returns 0 if no responses have been recorded yet.
func (u *Upstream) EWMATime() time.Duration {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if !u.hasEWMA {
		return 0
	}

	return u.ewmaResponseTime
}
