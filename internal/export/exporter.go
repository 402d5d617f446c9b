package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrUnauthorized is returned when the sheet endpoint rejects the access token
var ErrUnauthorized = errors.New("sheet export unauthorized")

// DateLayout is the date format written to the sheet
const DateLayout = "01/02/2006"

// Record is one flat row appended to the bet sheet
type Record struct {
	Date        time.Time
	Description string
	RetailPrice int
	StakeAmount decimal.Decimal
}

// Row renders the record as sheet cells
func (r Record) Row() []string {
	return []string{
		r.Date.Format(DateLayout),
		r.Description,
		strconv.Itoa(r.RetailPrice),
		r.StakeAmount.StringFixed(2),
	}
}

// TokenSource issues access tokens. refresh forces a new token instead of a cached one.
type TokenSource interface {
	Token(ctx context.Context, refresh bool) (string, error)
}

// Config holds sheet export settings
type Config struct {
	// AppendURL is the values:append endpoint of the target sheet range
	AppendURL string
	Timeout   time.Duration
}

// Exporter appends records to a spreadsheet over HTTP
type Exporter struct {
	http      *http.Client
	appendURL string
	tokens    TokenSource
	logger    zerolog.Logger
}

// NewExporter creates a new sheet exporter
func NewExporter(cfg Config, tokens TokenSource, logger zerolog.Logger) *Exporter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Exporter{
		http:      &http.Client{Timeout: timeout},
		appendURL: cfg.AppendURL,
		tokens:    tokens,
		logger:    logger.With().Str("component", "exporter").Logger(),
	}
}

// Append writes one record. An authorization failure refreshes the token and retries once;
// any other failure is returned to the caller.
func (e *Exporter) Append(ctx context.Context, rec Record) error {
	token, err := e.tokens.Token(ctx, false)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	err = e.append(ctx, token, rec)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	e.logger.Info().Msg("sheet token rejected, refreshing")

	token, err = e.tokens.Token(ctx, true)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	return e.append(ctx, token, rec)
}

type appendRequest struct {
	Values [][]string `json:"values"`
}

func (e *Exporter) append(ctx context.Context, token string, rec Record) error {
	body, err := json.Marshal(appendRequest{Values: [][]string{rec.Row()}})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.appendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("append record: status %d: %s", resp.StatusCode, string(msg))
	}

	e.logger.Info().
		Str("description", rec.Description).
		Int("retail_price", rec.RetailPrice).
		Str("stake", rec.StakeAmount.StringFixed(2)).
		Msg("exported bet")
	return nil
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

func (s StaticToken) Token(context.Context, bool) (string, error) {
	return string(s), nil
}

// ClientCredentials issues tokens from an OAuth2 client-credentials grant. The token is
// cached until it expires; a refresh discards the cached source and requests a new one.
type ClientCredentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client

	mu     sync.Mutex
	source oauth2.TokenSource
}

func (c *ClientCredentials) config() *clientcredentials.Config {
	return &clientcredentials.Config{
		TokenURL:     c.TokenURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
}

func (c *ClientCredentials) Token(ctx context.Context, refresh bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil || refresh {
		// the source keeps its context for later fetches, so it must outlive this call
		sourceCtx := context.WithoutCancel(ctx)
		if c.HTTP != nil {
			sourceCtx = context.WithValue(sourceCtx, oauth2.HTTPClient, c.HTTP)
		}
		c.source = c.config().TokenSource(sourceCtx)
	}

	tok, err := c.source.Token()
	if err != nil {
		c.source = nil
		return "", fmt.Errorf("token request: %w", err)
	}
	return tok.AccessToken, nil
}
