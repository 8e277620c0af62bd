// Package fetch performs single bounded-time tile downloads and classifies them.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/satloader/internal/download"

	"github.com/rs/zerolog"
)

// PartSuffix marks a destination that is still being written.
const PartSuffix = ".part"

// Options configures the client.
type Options struct {
	// Timeout bounds the whole attempt: connect, headers and body.
	// Default: 10s
	Timeout time.Duration

	// Headers are sent with every request.
	// Default: DefaultHeaders()
	Headers http.Header

	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

// DefaultOptions returns options with the provider defaults.
func DefaultOptions() Options {
	return Options{
		Timeout: 10 * time.Second,
		Headers: DefaultHeaders(),
	}
}

// Client downloads one URL at a time into a file.
type Client struct {
	client  *http.Client
	headers http.Header
	log     zerolog.Logger
}

// NewClient creates a client. Zero option values fall back to DefaultOptions.
func NewClient(opts Options, log zerolog.Logger) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Headers == nil {
		opts.Headers = def.Headers
	}
	if opts.Transport == nil {
		opts.Transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	return &Client{
		client: &http.Client{
			Transport: opts.Transport,
			Timeout:   opts.Timeout,
		},
		headers: opts.Headers,
		log:     log,
	}
}

// Download fetches url into destination and implements download.Downloader.
//
// Every network condition is reported as an Outcome. The returned error is
// limited to local filesystem failures and cancellation of ctx.
func (c *Client) Download(ctx context.Context, url, destination string) (download.Outcome, error) {
	exists, err := download.FileExists(destination)
	if err != nil {
		return download.Outcome{}, fmt.Errorf("stat %s: %w", destination, err)
	}
	if exists {
		return download.Exists(), nil
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return download.Outcome{}, fmt.Errorf("create tile dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return download.Error(download.CodeProtocol), nil
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return download.Outcome{}, ctxErr
		}
		c.log.Trace().Err(err).Str("url", url).Msg("Request failed")
		return classify(err, download.CodeConnection), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		c.log.Trace().Int("status", resp.StatusCode).Str("url", url).Msg("Unexpected status")
		return download.StatusError(resp.StatusCode), nil
	}

	return c.store(ctx, resp.Body, destination)
}

// store streams body into a part file and renames it to destination when complete.
func (c *Client) store(ctx context.Context, body io.Reader, destination string) (download.Outcome, error) {
	part := destination + PartSuffix

	f, err := os.Create(part)
	if err != nil {
		return download.Outcome{}, fmt.Errorf("create %s: %w", part, err)
	}

	written, copyErr := io.Copy(f, body)
	closeErr := f.Close()

	if copyErr != nil {
		_ = os.Remove(part)

		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return download.Outcome{}, ctxErr
		}

		var pathErr *os.PathError
		if errors.As(copyErr, &pathErr) {
			return download.Outcome{}, fmt.Errorf("write %s: %w", part, copyErr)
		}

		c.log.Trace().Err(copyErr).Int64("written", written).Str("path", destination).Msg("Body transfer failed")
		return classify(copyErr, download.CodeProtocol), nil
	}
	if closeErr != nil {
		_ = os.Remove(part)
		return download.Outcome{}, fmt.Errorf("close %s: %w", part, closeErr)
	}

	if err := os.Rename(part, destination); err != nil {
		_ = os.Remove(part)
		return download.Outcome{}, fmt.Errorf("rename %s: %w", part, err)
	}

	c.log.Trace().Int64("bytes", written).Str("path", destination).Msg("Stored")
	return download.Success(), nil
}

// classify maps a transport error to a timeout or the given fallback code.
func classify(err error, fallback string) download.Outcome {
	if isTimeout(err) {
		return download.Error(download.CodeTimeout)
	}
	return download.Error(fallback)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
