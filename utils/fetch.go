package utils

import (
	"context"
	"fmt"
	"io"
	"os"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// maxMovieSize bounds downloads and stdin reads.
const maxMovieSize = 256 << 20

// Fetcher downloads movies with a browser TLS fingerprint; the game's CDN
// rejects the default Go client hello.
type Fetcher struct {
	client tls_client.HttpClient
}

func NewFetcher(timeoutSeconds int) (*Fetcher, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(timeoutSeconds),
		tls_client.WithClientProfile(profiles.Chrome_133),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithDisableHttp3(),
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}
	return &Fetcher{client: client}, nil
}

func NewFetcherWithClient(client tls_client.HttpClient) *Fetcher {
	return &Fetcher{client: client}
}

func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}
	return readLimited(resp.Body)
}

func setHeaders(req *http.Request) {
	req.Header = http.Header{
		"user-agent":      {"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"},
		"accept":          {"*/*"},
		"accept-language": {"en-US,en;q=0.9"},
		http.HeaderOrderKey: {
			"user-agent",
			"accept",
			"accept-language",
		},
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxMovieSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read movie: %w", err)
	}
	if len(data) > maxMovieSize {
		return nil, fmt.Errorf("movie larger than %d bytes", maxMovieSize)
	}
	return data, nil
}

// ReadInput loads the movie named by cfg.Input: a URL, "-" for stdin, or a path.
func ReadInput(ctx context.Context, cfg *Config, fetcher *Fetcher, stdin io.Reader) ([]byte, error) {
	switch {
	case cfg.IsURL():
		if fetcher == nil {
			var err error
			if fetcher, err = NewFetcher(30); err != nil {
				return nil, err
			}
		}
		return fetcher.Download(ctx, cfg.Input)
	case cfg.IsStdin():
		return readLimited(stdin)
	}

	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cfg.Input, err)
	}
	return data, nil
}

// FormatSize renders n bytes with a decimal unit, as "1.5 MB".
func FormatSize(n int) string {
	units := []string{"B", "kB", "MB", "GB"}
	v := float64(n)
	i := 0
	for v >= 1000 && i < len(units)-1 {
		v /= 1000
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", n, units[0])
	}
	return fmt.Sprintf("%.2f %s", v, units[i])
}
