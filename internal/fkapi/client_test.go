package fkapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footycollect/footycollect-api/internal/config"
)

const kitJSON = `{
	"id": "123",
	"name": "FC Barcelona 2023-24 Home",
	"description": "Home kit",
	"type": {"name": "Home", "category": "match"},
	"team": {"id": 7, "name": "FC Barcelona", "country": "ES"},
	"season": {"id": 30, "year": "2023-24"},
	"brand": {"id": 1, "name": "Nike"},
	"competition": [{"id": 3, "name": "La Liga"}],
	"colors": [{"name": "CLARET", "color": "#7F1734"}, {"name": "NAVY"}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.FKAPIConfig{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second, CacheTTL: time.Minute})
	return client, &calls
}

func TestGetKitDecodesAndCaches(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/kit-json/123", r.URL.Path)
		w.Write([]byte(kitJSON))
	})

	kit, err := client.GetKit(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, FlexID(123), kit.ID)
	assert.Equal(t, "Home", kit.Type.Name)
	assert.Equal(t, "2023-24", kit.Season.Year)
	require.Len(t, kit.Colors, 2)
	assert.Equal(t, "#7F1734", kit.Colors[0].Hex)

	_, err = client.GetKit(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestSearchKitsAcceptsWrappedResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "barca", r.URL.Query().Get("keyword"))
		w.Write([]byte(`{"results": [{"id": 1, "name": "Kit A"}, {"id": "2", "name": "Kit B"}]}`))
	})

	kits, err := client.SearchKits(context.Background(), "barca")
	require.NoError(t, err)
	require.Len(t, kits, 2)
	assert.Equal(t, FlexID(2), kits[1].ID)
}

func TestClubKitsBareArray(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("club_id"))
		assert.Equal(t, "30", r.URL.Query().Get("season_id"))
		w.Write([]byte(`[{"id": 5, "name": "Away"}]`))
	})

	kits, err := client.ClubKits(context.Background(), 7, 30)
	require.NoError(t, err)
	assert.Len(t, kits, 1)
}

func TestErrorStatusIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SearchClubs(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestKitTypeAcceptsString(t *testing.T) {
	var kt KitType
	require.NoError(t, kt.UnmarshalJSON([]byte(`"Third"`)))
	assert.Equal(t, "Third", kt.Name)
}
