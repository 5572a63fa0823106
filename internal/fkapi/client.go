// Package fkapi is a client for the Football Kit Archive API, the source of
// kit metadata used to pre-fill new items.
package fkapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/footycollect/footycollect-api/internal/config"
)

var ErrUnavailable = errors.New("kit archive API unavailable")

// KitSource is the narrow contract the catalog needs from the kit archive.
type KitSource interface {
	GetKit(ctx context.Context, kitID int) (*Kit, error)
	SearchKits(ctx context.Context, keyword string) ([]KitSummary, error)
	SearchClubs(ctx context.Context, keyword string) ([]Club, error)
	ClubSeasons(ctx context.Context, clubID int) ([]Season, error)
	ClubKits(ctx context.Context, clubID, seasonID int) ([]KitSummary, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *gocache.Cache
}

func NewClient(cfg config.FKAPIConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      gocache.New(ttl, 2*ttl),
	}
}

func cacheKey(endpoint string, params url.Values) string {
	sum := sha256.Sum256([]byte(endpoint + ":" + params.Encode()))
	return "fkapi_" + hex.EncodeToString(sum[:])
}

// get fetches endpoint and caches the raw body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	key := cacheKey(endpoint, params)
	if cached, ok := c.cache.Get(key); ok {
		logrus.WithField("endpoint", endpoint).Debug("FKAPI cache hit")
		return cached.([]byte), nil
	}

	full := c.baseURL + "/api" + endpoint
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	log := logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})
	if resp.StatusCode >= 300 {
		log.Warn("FKAPI request failed")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	log.Debug("FKAPI request completed")

	c.cache.SetDefault(key, body)
	return body, nil
}

// decodeList accepts a bare array or an object wrapping it in "results" or "data".
func decodeList(body []byte, dest interface{}) error {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(body, dest)
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return err
	}
	for _, field := range []string{"results", "data"} {
		if raw, ok := wrapper[field]; ok {
			return json.Unmarshal(raw, dest)
		}
	}
	return nil
}

func (c *Client) GetKit(ctx context.Context, kitID int) (*Kit, error) {
	body, err := c.get(ctx, "/kit-json/"+strconv.Itoa(kitID), nil)
	if err != nil {
		return nil, err
	}
	var kit Kit
	if err := json.Unmarshal(body, &kit); err != nil {
		return nil, fmt.Errorf("decode kit %d: %w", kitID, err)
	}
	return &kit, nil
}

func (c *Client) SearchKits(ctx context.Context, keyword string) ([]KitSummary, error) {
	body, err := c.get(ctx, "/kits/search", url.Values{"keyword": {keyword}})
	if err != nil {
		return nil, err
	}
	kits := make([]KitSummary, 0)
	if err := decodeList(body, &kits); err != nil {
		return nil, fmt.Errorf("decode kit search: %w", err)
	}
	return kits, nil
}

func (c *Client) SearchClubs(ctx context.Context, keyword string) ([]Club, error) {
	body, err := c.get(ctx, "/clubs/search", url.Values{"keyword": {keyword}})
	if err != nil {
		return nil, err
	}
	clubs := make([]Club, 0)
	if err := decodeList(body, &clubs); err != nil {
		return nil, fmt.Errorf("decode club search: %w", err)
	}
	return clubs, nil
}

func (c *Client) ClubSeasons(ctx context.Context, clubID int) ([]Season, error) {
	body, err := c.get(ctx, "/seasons", url.Values{"club_id": {strconv.Itoa(clubID)}})
	if err != nil {
		return nil, err
	}
	seasons := make([]Season, 0)
	if err := decodeList(body, &seasons); err != nil {
		return nil, fmt.Errorf("decode seasons: %w", err)
	}
	return seasons, nil
}

func (c *Client) ClubKits(ctx context.Context, clubID, seasonID int) ([]KitSummary, error) {
	body, err := c.get(ctx, "/kits", url.Values{
		"club_id":   {strconv.Itoa(clubID)},
		"season_id": {strconv.Itoa(seasonID)},
	})
	if err != nil {
		return nil, err
	}
	kits := make([]KitSummary, 0)
	if err := decodeList(body, &kits); err != nil {
		return nil, fmt.Errorf("decode kits: %w", err)
	}
	return kits, nil
}
