package control_api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"push-to-talk-typer/logging"
)

type fakeController struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (c *fakeController) StartRemote() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.started++
}

func (c *fakeController) StopRemote() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped++
}

func (c *fakeController) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.started, c.stopped
}

func newTestServer(t *testing.T) (*Server, *fakeController, *httptest.Server) {
	t.Helper()

	ctrl := &fakeController{}

	s, err := New(&Config{
		Controller: ctrl,
		Hub:        NewHub(logging.NewNop()),
		APIKey:     "secret",
		Host:       "127.0.0.1",
		Port:       0,
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)

	return s, ctrl, ts
}

func TestServer_Auth(t *testing.T) {
	t.Run("missing api key is rejected", func(t *testing.T) {
		_, _, ts := newTestServer(t)

		resp, err := http.Post(ts.URL+"/start_listening", "text/plain", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("index needs no auth", func(t *testing.T) {
		_, _, ts := newTestServer(t)

		resp, err := http.Get(ts.URL + "/")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || string(body) != "Ahoy!" {
			t.Errorf("unexpected index response: %d %q", resp.StatusCode, body)
		}
	})
}

func authedPost(t *testing.T, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "secret")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	return resp
}

func TestServer_StartStopListening(t *testing.T) {
	_, ctrl, ts := newTestServer(t)

	resp := authedPost(t, ts.URL+"/start_listening")
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start_listening: %d", resp.StatusCode)
	}

	resp = authedPost(t, ts.URL+"/stop_listening")
	resp.Body.Close()

	started, stopped := ctrl.counts()
	if started != 1 || stopped != 1 {
		t.Errorf("expected 1 start and 1 stop, got %d/%d", started, stopped)
	}
}

func TestServer_ResultsWebsocket(t *testing.T) {
	s, ctrl, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/results"

	header := http.Header{}
	header.Set("Authorization", "secret")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	s.hub.Publish("hello from the mic")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg transcriptMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}

	if msg.Text != "hello from the mic" {
		t.Errorf("unexpected transcript: %q", msg.Text)
	}

	// Last client leaving stops remote listening.
	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, stopped := ctrl.counts(); stopped >= 1 {
			return
		}

		time.Sleep(time.Millisecond)
	}

	t.Errorf("expected StopRemote after the last client disconnected")
}
