package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() Record {
	return Record{
		Date:        time.Date(2025, 1, 15, 21, 0, 0, 0, time.UTC),
		Description: "Celtics Moneyline Lakers @ Celtics",
		RetailPrice: -120,
		StakeAmount: decimal.NewFromFloat(8.5),
	}
}

// rotatingTokens returns "stale" until refreshed
type rotatingTokens struct {
	refreshes int32
}

func (r *rotatingTokens) Token(_ context.Context, refresh bool) (string, error) {
	if refresh {
		atomic.AddInt32(&r.refreshes, 1)
		return "fresh", nil
	}
	return "stale", nil
}

// TestRecord_Row tests the sheet row layout
func TestRecord_Row(t *testing.T) {
	assert.Equal(t, []string{"01/15/2025", "Celtics Moneyline Lakers @ Celtics", "-120", "8.50"}, testRecord().Row())
}

// TestAppend_Success tests a single successful append
func TestAppend_Success(t *testing.T) {
	var got appendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	e := NewExporter(Config{AppendURL: server.URL}, StaticToken("tok"), zerolog.Nop())

	require.NoError(t, e.Append(context.Background(), testRecord()))
	require.Len(t, got.Values, 1)
	assert.Equal(t, "Celtics Moneyline Lakers @ Celtics", got.Values[0][1])
}

// TestAppend_RefreshesOnceOnUnauthorized tests the single re-authorization retry
func TestAppend_RefreshesOnceOnUnauthorized(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tokens := &rotatingTokens{}
	e := NewExporter(Config{AppendURL: server.URL}, tokens, zerolog.Nop())

	require.NoError(t, e.Append(context.Background(), testRecord()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokens.refreshes))
}

// TestAppend_UnauthorizedTwice tests that a second rejection is returned
func TestAppend_UnauthorizedTwice(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	e := NewExporter(Config{AppendURL: server.URL}, &rotatingTokens{}, zerolog.Nop())

	err := e.Append(context.Background(), testRecord())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestAppend_ServerError tests that other failures are not retried
func TestAppend_ServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := NewExporter(Config{AppendURL: server.URL}, StaticToken("tok"), zerolog.Nop())

	err := e.Append(context.Background(), testRecord())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// TestClientCredentials tests token caching and forced refresh
func TestClientCredentials(t *testing.T) {
	var issued int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		n := atomic.AddInt32(&issued, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "t" + string(rune('0'+n)),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	cc := &ClientCredentials{TokenURL: server.URL, ClientID: "id", ClientSecret: "secret"}
	ctx := context.Background()

	tok, err := cc.Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "t1", tok)

	tok, err = cc.Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "t1", tok)

	tok, err = cc.Token(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "t2", tok)
}

// TestClientCredentials_Failure tests that a rejected grant is returned and not cached
func TestClientCredentials_Failure(t *testing.T) {
	var issued int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&issued, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "ok", "token_type": "Bearer"})
	}))
	defer server.Close()

	cc := &ClientCredentials{TokenURL: server.URL, ClientID: "id", ClientSecret: "secret", HTTP: server.Client()}
	ctx := context.Background()

	_, err := cc.Token(ctx, false)
	require.Error(t, err)

	tok, err := cc.Token(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "ok", tok)
}

// TestAppend_ClientCredentials tests an append authorized through the grant, re-issued after a 401
func TestAppend_ClientCredentials(t *testing.T) {
	var issued int32
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&issued, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "t" + string(rune('0'+n)),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer auth.Close()

	sheet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer sheet.Close()

	cc := &ClientCredentials{TokenURL: auth.URL, ClientID: "id", ClientSecret: "secret"}
	e := NewExporter(Config{AppendURL: sheet.URL}, cc, zerolog.Nop())

	require.NoError(t, e.Append(context.Background(), testRecord()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&issued))
}
