package http

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kahvecikaan/catalog-browser/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketStreamsSessionEventsAndRecordsViewport(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, catalogOf(5)))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	hc := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := hc.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	base, _ := url.Parse(srv.URL)
	cookies := jar.Cookies(base)
	require.Len(t, cookies, 1)

	header := http.Header{}
	header.Set("Cookie", cookies[0].String())
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	// another session's events are not delivered
	other, err := http.Post(srv.URL+"/list/toggle", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	other.Body.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "viewport", "width": 375}))

	assert.Eventually(t, func() bool {
		resp, err := hc.Get(srv.URL + "/api/state")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var state browser.State
		if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
			return false
		}
		return state.ViewportWidth == 375 && state.Narrow && state.ListVisible
	}, time.Second, 10*time.Millisecond)

	resp, err = hc.PostForm(srv.URL+"/select/3", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		EventType string          `json:"event-type"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "visibility_changed", msg.EventType, "the toggle of the other session is filtered out")
	assert.JSONEq(t, `{"visible": false}`, string(msg.Data))

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "product_selected", msg.EventType)
	assert.JSONEq(t, `{"product_id": "3", "location": "/product/3", "collapsed": true}`, string(msg.Data))
}

func TestWebSocketIgnoresMalformedMessages(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, catalogOf(1)))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "unknown"}))

	// the connection survives
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "viewport", "width": 1024}))
	assert.NoError(t, conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)))
}
