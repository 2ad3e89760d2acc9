package password

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// DefaultBreachAPIURL is the Have I Been Pwned range endpoint. Only the first
// five characters of the SHA-1 digest ever leave the process (k-anonymity).
const DefaultBreachAPIURL = "https://api.pwnedpasswords.com/range/"

// BreachResult reports whether a password appears in known breach corpora.
type BreachResult struct {
	Breached    bool
	Occurrences int
}

// BreachChecker queries a k-anonymity breach-lookup service.
//
// The checker fails open: any transport or service error is logged and
// reported as "not breached". Availability is deliberately preferred over
// strict enforcement here; blocking registration on a third-party outage is
// worse than occasionally missing a breached password.
type BreachChecker struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// BreachOption configures a BreachChecker.
type BreachOption func(*BreachChecker)

// WithBreachAPIURL overrides the range endpoint, mainly for tests.
func WithBreachAPIURL(url string) BreachOption {
	return func(c *BreachChecker) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithBreachHTTPClient sets a custom HTTP client.
func WithBreachHTTPClient(client *http.Client) BreachOption {
	return func(c *BreachChecker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBreachLogger sets the logger used to record lookup failures.
func WithBreachLogger(log *slog.Logger) BreachOption {
	return func(c *BreachChecker) {
		if log != nil {
			c.logger = log
		}
	}
}

// NewBreachChecker creates a checker against the public HIBP endpoint.
func NewBreachChecker(opts ...BreachOption) *BreachChecker {
	c := &BreachChecker{
		baseURL:    DefaultBreachAPIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check looks the password up in the breach database. The full digest never
// leaves the process; the service receives a 5-character prefix and returns
// all candidate suffixes sharing it.
func (c *BreachChecker) Check(ctx context.Context, password string) BreachResult {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+prefix, nil)
	if err != nil {
		c.failOpen(ctx, err)
		return BreachResult{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.failOpen(ctx, err)
		return BreachResult{}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.failOpen(ctx, fmt.Errorf("unexpected status %d", resp.StatusCode))
		return BreachResult{}
	}

	result, err := scanRange(resp.Body, suffix)
	if err != nil {
		c.failOpen(ctx, err)
		return BreachResult{}
	}
	return result
}

// scanRange scans newline-delimited "SUFFIX:COUNT" pairs for an exact match.
func scanRange(r io.Reader, suffix string) (BreachResult, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		candidate, countStr, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(candidate, suffix) {
			count, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil {
				count = 1
			}
			return BreachResult{Breached: true, Occurrences: count}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return BreachResult{}, err
	}
	return BreachResult{}, nil
}

func (c *BreachChecker) failOpen(ctx context.Context, err error) {
	c.logger.WarnContext(ctx, "breach lookup failed, treating password as not breached",
		logger.Error(err),
		logger.Component("password"),
	)
}
