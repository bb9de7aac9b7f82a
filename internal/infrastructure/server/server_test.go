package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/aura-go/internal/application/dispatch"
	"github.com/doeshing/aura-go/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubDispatcher struct {
	mu      sync.Mutex
	texts   []string
	gate    chan struct{}
	started chan string
}

func (d *stubDispatcher) Dispatch(_ context.Context, text string, _ ...dispatch.Option) dispatch.Outcome {
	if d.started != nil {
		d.started <- text
	}
	if d.gate != nil {
		<-d.gate
	}
	d.mu.Lock()
	d.texts = append(d.texts, text)
	n := len(d.texts)
	d.mu.Unlock()
	return dispatch.Outcome{
		ID:      fmt.Sprintf("cmd-%d", n),
		Handler: "echo",
		Result:  domain.Success("echo: " + text),
	}
}

func (d *stubDispatcher) HandlerInfo() map[string]domain.HandlerInfo {
	return map[string]domain.HandlerInfo{"echo": {Category: domain.CategoryOther}}
}

func (d *stubDispatcher) seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.texts...)
}

func startServer(t *testing.T, d Dispatcher) (string, func()) {
	t.Helper()
	s := New(d, Options{QueueSize: 2})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()
	return ln.Addr().String(), func() {
		cancel()
		require.NoError(t, <-errc)
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	d := &stubDispatcher{}
	addr, stop := startServer(t, d)
	defer stop()

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	for _, text := range []string{"open chrome", "call amma", "set timer for 5 minutes"} {
		require.NoError(t, conn.WriteJSON(Request{Text: text, Mode: "voice"}))
		var got Response
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, domain.StatusSuccess, got.Status)
		assert.Equal(t, "echo: "+text, got.Message)
		assert.Equal(t, "echo", got.Handler)
		assert.NotEmpty(t, got.ID)
	}
	assert.Equal(t, []string{"open chrome", "call amma", "set timer for 5 minutes"}, d.seen())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var bad Response
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Equal(t, domain.StatusError, bad.Status)
	assert.Len(t, d.seen(), 3)
}

func TestSubmitFullQueueIsBusy(t *testing.T) {
	d := &stubDispatcher{gate: make(chan struct{}), started: make(chan string, 4)}
	s := New(d, Options{QueueSize: 1})

	ctx, cancel := context.WithCancel(context.Background())
	workDone := make(chan error, 1)
	go func() { workDone <- s.Work(ctx) }()

	results := make(chan Response, 2)
	go func() { results <- s.Submit(context.Background(), Request{Text: "first"}) }()
	require.Equal(t, "first", <-d.started)

	go func() { results <- s.Submit(context.Background(), Request{Text: "second"}) }()
	require.Eventually(t, func() bool { return len(s.jobs) == 1 }, time.Second, time.Millisecond)

	busy := s.Submit(context.Background(), Request{Text: "third"})
	assert.Equal(t, domain.StatusWarning, busy.Status)
	assert.Equal(t, busyMessage, busy.Message)

	close(d.gate)
	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		got[(<-results).Message] = true
	}
	assert.Equal(t, map[string]bool{"echo: first": true, "echo: second": true}, got)
	assert.Equal(t, []string{"first", "second"}, d.seen())

	cancel()
	require.NoError(t, <-workDone)
}

func TestSubmitAfterShutdown(t *testing.T) {
	s := New(&stubDispatcher{}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Work(ctx))

	resp := s.Submit(context.Background(), Request{Text: "hello"})
	assert.Equal(t, domain.StatusError, resp.Status)
}

func TestHealthz(t *testing.T) {
	s := New(&stubDispatcher{}, Options{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["handlers"])
}

func TestNewDefaults(t *testing.T) {
	s := New(&stubDispatcher{}, Options{})
	assert.Equal(t, domain.DefaultServeAddr, s.Addr())
	assert.Equal(t, domain.DefaultQueueSize, cap(s.jobs))
}
