package signal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type handshake struct {
	token  string
	bearer string
}

// fakeServer accepts one websocket and exposes its traffic on channels.
type fakeServer struct {
	*httptest.Server
	handshakes chan handshake
	inbound    chan core.SignalMessage
	outbound   chan core.SignalMessage
	drop       chan struct{}
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		handshakes: make(chan handshake, 1),
		inbound:    make(chan core.SignalMessage, 16),
		outbound:   make(chan core.SignalMessage, 16),
		drop:       make(chan struct{}),
	}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.handshakes <- handshake{token: r.URL.Query().Get("token"), bearer: r.Header.Get("Authorization")}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		go func() {
			for {
				var msg core.SignalMessage
				if err := ws.ReadJSON(&msg); err != nil {
					return
				}
				fs.inbound <- msg
			}
		}()
		for {
			select {
			case msg := <-fs.outbound:
				if err := ws.WriteJSON(msg); err != nil {
					return
				}
			case <-fs.drop:
				return
			}
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.URL, "http") + "/ws/signaling"
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	var zero T
	return zero
}

func TestClient_ConnectSendsToken(t *testing.T) {
	fs := newFakeServer(t)
	c := New(WithPingPeriod(0))
	defer c.Close()

	if err := c.Connect(t.Context(), fs.wsURL(), "tok-1"); err != nil {
		t.Fatal(err)
	}
	hs := recv(t, fs.handshakes)
	if hs.token != "tok-1" || hs.bearer != "Bearer tok-1" {
		t.Errorf("handshake = %+v", hs)
	}
	if err := c.Connect(t.Context(), fs.wsURL(), "tok-1"); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect = %v, want ErrAlreadyConnected", err)
	}
}

func TestClient_SendStampsEnvelope(t *testing.T) {
	fs := newFakeServer(t)
	c := New(WithPingPeriod(0))
	defer c.Close()
	if err := c.Connect(t.Context(), fs.wsURL(), ""); err != nil {
		t.Fatal(err)
	}

	payload, _ := json.Marshal(core.SDPPayload{SDP: "v=0"})
	if err := c.Send(core.SignalMessage{Type: core.SignalOffer, ChannelName: "room", SenderID: "u1", Payload: payload}); err != nil {
		t.Fatal(err)
	}
	got := recv(t, fs.inbound)
	if got.Type != core.SignalOffer || got.ChannelName != "room" || got.SenderID != "u1" {
		t.Errorf("message = %+v", got)
	}
	if got.SessionID != c.SessionID() {
		t.Errorf("session id = %q, want %q", got.SessionID, c.SessionID())
	}
	if got.Timestamp == 0 {
		t.Error("timestamp not set")
	}
	var p core.SDPPayload
	if err := json.Unmarshal(got.Payload, &p); err != nil || p.SDP != "v=0" {
		t.Errorf("payload = %s (%v)", got.Payload, err)
	}
}

func TestClient_DeliversInboundAndAdoptsSessionID(t *testing.T) {
	fs := newFakeServer(t)
	c := New(WithPingPeriod(0))
	defer c.Close()

	got := make(chan core.SignalMessage, 4)
	c.OnMessage(func(m core.SignalMessage) { got <- m })
	if err := c.Connect(t.Context(), fs.wsURL(), ""); err != nil {
		t.Fatal(err)
	}

	fs.outbound <- core.SignalMessage{Type: core.SignalConnectionAck, SessionID: "server-sid"}
	if m := recv(t, got); m.Type != core.SignalConnectionAck {
		t.Fatalf("first message = %+v", m)
	}
	if c.SessionID() != "server-sid" {
		t.Errorf("SessionID = %q, want server-sid", c.SessionID())
	}

	fs.outbound <- core.SignalMessage{Type: core.SignalUserJoined, SenderID: "u2"}
	if m := recv(t, got); m.Type != core.SignalUserJoined || m.SenderID != "u2" {
		t.Errorf("second message = %+v", m)
	}
}

func TestClient_HandlerPanicKeepsReading(t *testing.T) {
	fs := newFakeServer(t)
	c := New(WithPingPeriod(0))
	defer c.Close()

	got := make(chan string, 2)
	c.OnMessage(func(m core.SignalMessage) {
		if m.Type == core.SignalPing {
			panic("boom")
		}
		got <- m.Type
	})
	if err := c.Connect(t.Context(), fs.wsURL(), ""); err != nil {
		t.Fatal(err)
	}
	fs.outbound <- core.SignalMessage{Type: core.SignalPing}
	fs.outbound <- core.SignalMessage{Type: core.SignalPong}
	if typ := recv(t, got); typ != core.SignalPong {
		t.Errorf("type = %q, want pong", typ)
	}
}

func TestClient_ConnectionLostReportsError(t *testing.T) {
	fs := newFakeServer(t)
	c := New(WithPingPeriod(0))
	defer c.Close()

	got := make(chan core.SignalMessage, 1)
	c.OnMessage(func(m core.SignalMessage) { got <- m })
	if err := c.Connect(t.Context(), fs.wsURL(), ""); err != nil {
		t.Fatal(err)
	}
	close(fs.drop)

	m := recv(t, got)
	if m.Type != core.SignalError || !strings.HasPrefix(m.Error, "connection lost") {
		t.Errorf("message = %+v", m)
	}
	deadline := time.Now().Add(2 * time.Second)
	for c.Send(core.SignalMessage{Type: core.SignalPing}) == nil {
		if time.Now().After(deadline) {
			t.Fatal("send still accepted after connection loss")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClient_SendStates(t *testing.T) {
	c := New()
	if err := c.Send(core.SignalMessage{Type: core.SignalPing}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send before Connect = %v", err)
	}

	c.send = make(chan []byte, 1)
	if err := c.Send(core.SignalMessage{Type: core.SignalPing}); err != nil {
		t.Fatal(err)
	}
	if err := c.Send(core.SignalMessage{Type: core.SignalPing}); !errors.Is(err, ErrBackpressure) {
		t.Errorf("Send on full queue = %v, want ErrBackpressure", err)
	}

	c.Close()
	c.Close()
	if err := c.Send(core.SignalMessage{Type: core.SignalPing}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v", err)
	}
	if err := c.Connect(t.Context(), "ws://127.0.0.1:1", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("Connect after Close = %v", err)
	}
}

func TestClient_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New()
	defer c.Close()
	err := c.Connect(t.Context(), "ws"+strings.TrimPrefix(srv.URL, "http"), "t")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Connect = %v, want 404 failure", err)
	}
}
