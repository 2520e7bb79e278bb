package orch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/core/mocks"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/goccy/go-json"
	"github.com/pion/webrtc/v4"
	"go.uber.org/mock/gomock"
)

var testOffer = webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0\r\n"}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ConnectionTimeout = 500 * time.Millisecond
	cfg.PollInterval = 2 * time.Millisecond
	cfg.StatsInterval = 10 * time.Millisecond
	return cfg
}

type harness struct {
	o    *Orchestrator
	neg  *mocks.MockNegotiator
	sink *mocks.MockEventSink
	obs  core.NegotiatorObserver
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		neg:  mocks.NewMockNegotiator(ctrl),
		sink: mocks.NewMockEventSink(ctrl),
	}
	h.neg.EXPECT().SetObserver(gomock.Any()).Do(func(ob core.NegotiatorObserver) { h.obs = ob })
	h.neg.EXPECT().Initialize().Return(nil)

	o, err := New(cfg, func(core.NegotiatorConfig) core.Negotiator { return h.neg }, append([]Option{WithSink(h.sink)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.o = o
	t.Cleanup(o.stopWorker)
	return h
}

func (h *harness) expectNegotiation() {
	h.neg.EXPECT().CreatePeerConnection().Return(nil)
	h.neg.EXPECT().AddLocalStreams().Return(nil)
	h.neg.EXPECT().CreateOffer().Return(core.CompletedTask(testOffer, nil))
	h.neg.EXPECT().SetLocalDescription(testOffer).Return(core.CompletedTask(struct{}{}, nil))
}

func (h *harness) expectJoinEvents(channel, userID string) {
	gomock.InOrder(
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnecting, domain.ReasonJoining),
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnected, domain.ReasonJoinSuccess),
		h.sink.EXPECT().OnJoinChannelSuccess(channel, userID, gomock.Any()).Do(func(_, _ string, elapsed time.Duration) {
			if elapsed < 0 {
				panic(fmt.Sprintf("negative elapsed %v", elapsed))
			}
		}),
	)
}

func (h *harness) expectUnwind() {
	h.neg.EXPECT().RemoveLocalStreams()
	h.neg.EXPECT().ClosePeerConnection()
}

func (h *harness) expectLeaveEvents() {
	gomock.InOrder(
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateDisconnected, domain.ReasonLeaveChannel),
		h.sink.EXPECT().OnLeaveChannel(),
	)
}

func (h *harness) join(t *testing.T) {
	t.Helper()
	h.expectNegotiation()
	h.expectJoinEvents("c", "u")
	if code := h.o.JoinChannel(t.Context(), "t", "c", "u"); code != domain.CodeOK {
		t.Fatalf("JoinChannel = %v, want ok", code)
	}
}

func TestNew_InitializeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	neg := mocks.NewMockNegotiator(ctrl)
	neg.EXPECT().SetObserver(gomock.Any())
	neg.EXPECT().Initialize().Return(errors.New("unsupported codec"))
	neg.EXPECT().Cleanup()

	o, err := New(testConfig(), func(core.NegotiatorConfig) core.Negotiator { return neg })
	if err == nil || o != nil {
		t.Fatalf("New = %v, %v; want construction error", o, err)
	}
}

func TestNew_NilFactory(t *testing.T) {
	if _, err := New(testConfig(), nil); !errors.Is(err, ErrNoNegotiatorFactory) {
		t.Errorf("err = %v, want ErrNoNegotiatorFactory", err)
	}
}

func TestNew_PassesDerivedNegotiatorConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	neg := mocks.NewMockNegotiator(ctrl)
	neg.EXPECT().SetObserver(gomock.Any())
	neg.EXPECT().Initialize().Return(nil)

	cfg := testConfig()
	var got core.NegotiatorConfig
	if _, err := New(cfg, func(nc core.NegotiatorConfig) core.Negotiator { got = nc; return neg }); err != nil {
		t.Fatal(err)
	}
	if len(got.ICEServers) != len(cfg.STUNServers) || got.AudioCodec != "opus" {
		t.Errorf("negotiator config = %+v", got)
	}
}

func TestJoinChannel_InvalidArguments(t *testing.T) {
	long := strings.Repeat("x", domain.MaxIdentityLen+1)
	cases := []struct {
		name                   string
		token, channel, userID string
	}{
		{"empty token", "", "c", "u"},
		{"empty channel", "t", "", "u"},
		{"empty user", "t", "c", ""},
		{"long channel", "t", long, "u"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t, testConfig())
			if code := h.o.JoinChannel(t.Context(), c.token, c.channel, c.userID); code != domain.CodeInvalidArgument {
				t.Errorf("code = %v, want %v", code, domain.CodeInvalidArgument)
			}
			if st := h.o.ConnectionState(); st != domain.StateDisconnected {
				t.Errorf("state = %v, want disconnected", st)
			}
			if h.o.IsInChannel() {
				t.Error("in channel after rejected join")
			}
		})
	}
}

func TestJoinChannel_Success(t *testing.T) {
	h := newHarness(t, testConfig())
	h.join(t)

	if !h.o.IsInChannel() {
		t.Error("IsInChannel = false after join")
	}
	if got := h.o.CurrentChannel(); got != "c" {
		t.Errorf("CurrentChannel = %q", got)
	}
	if got := h.o.CurrentUserID(); got != "u" {
		t.Errorf("CurrentUserID = %q", got)
	}
	if st := h.o.ConnectionState(); st != domain.StateConnected {
		t.Errorf("state = %v, want connected", st)
	}

	h.expectUnwind()
	h.expectLeaveEvents()
	h.o.LeaveChannel()
}

func TestJoinChannel_Twice(t *testing.T) {
	h := newHarness(t, testConfig())
	h.join(t)

	if code := h.o.JoinChannel(t.Context(), "t2", "other", "u2"); code != domain.CodeAlreadyInChannel {
		t.Errorf("second join = %v, want %v", code, domain.CodeAlreadyInChannel)
	}
	m := h.o.Membership()
	if m.Channel != "c" || m.UserID != "u" || m.Token != "t" {
		t.Errorf("membership changed to %+v", m)
	}

	h.expectUnwind()
	h.expectLeaveEvents()
	h.o.LeaveChannel()
}

func TestLeaveChannel_NeverJoined(t *testing.T) {
	h := newHarness(t, testConfig())
	if code := h.o.LeaveChannel(); code != domain.CodeOK {
		t.Errorf("LeaveChannel = %v, want ok", code)
	}
	if code := h.o.LeaveChannel(); code != domain.CodeOK {
		t.Errorf("second LeaveChannel = %v, want ok", code)
	}
}

func TestLeaveChannel_AfterJoin(t *testing.T) {
	h := newHarness(t, testConfig())
	h.join(t)

	h.expectUnwind()
	h.expectLeaveEvents()
	if code := h.o.LeaveChannel(); code != domain.CodeOK {
		t.Fatalf("LeaveChannel = %v", code)
	}
	if h.o.IsInChannel() {
		t.Error("still in channel")
	}
	if st := h.o.ConnectionState(); st != domain.StateDisconnected {
		t.Errorf("state = %v", st)
	}
	if h.o.worker != nil {
		t.Error("worker still registered after leave")
	}
}

func TestLeaveChannel_WorkerExitedBeforeReturn(t *testing.T) {
	cfg := testConfig()
	cfg.EnableStats = true
	h := newHarness(t, cfg)

	h.neg.EXPECT().GetStats().DoAndReturn(func() *core.Task[domain.RtcStats] {
		return core.CompletedTask(domain.RtcStats{TxBytes: 1000, RxBytes: 2000, RTTMs: 12}, nil)
	}).AnyTimes()

	var (
		mu    sync.Mutex
		count int
		first = make(chan domain.RtcStats, 1)
	)
	h.sink.EXPECT().OnRtcStats(gomock.Any()).Do(func(s domain.RtcStats) {
		mu.Lock()
		count++
		mu.Unlock()
		select {
		case first <- s:
		default:
		}
	}).AnyTimes()

	h.join(t)

	select {
	case s := <-first:
		if s.RTTMs != 12 || s.TxBytes != 1000 {
			t.Errorf("stats = %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no stats emitted while connected")
	}

	h.expectUnwind()
	h.expectLeaveEvents()
	h.o.LeaveChannel()

	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(5 * cfg.StatsInterval)
	mu.Lock()
	defer mu.Unlock()
	if count != after {
		t.Errorf("stats emitted after leave returned: %d -> %d", after, count)
	}
}

func TestClose_WhileJoinedLeavesFirst(t *testing.T) {
	h := newHarness(t, testConfig())
	h.join(t)

	h.expectUnwind()
	h.expectLeaveEvents()
	h.neg.EXPECT().Cleanup()
	h.o.Close()
	h.o.Close()

	if h.o.IsInChannel() {
		t.Error("still in channel after Close")
	}
	if code := h.o.JoinChannel(t.Context(), "t", "c", "u"); code != domain.CodeNotInitialized {
		t.Errorf("join after Close = %v, want %v", code, domain.CodeNotInitialized)
	}
	if err := h.o.MuteLocalAudio(true); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("MuteLocalAudio after Close = %v", err)
	}
}

func TestClose_WaitsForInFlightJoin(t *testing.T) {
	h := newHarness(t, testConfig())
	offer := core.NewTask[webrtc.SessionDescription]()
	inOffer := make(chan struct{})
	h.neg.EXPECT().CreatePeerConnection().Return(nil)
	h.neg.EXPECT().AddLocalStreams().Return(nil)
	h.neg.EXPECT().CreateOffer().DoAndReturn(func() *core.Task[webrtc.SessionDescription] {
		close(inOffer)
		return offer
	})
	h.neg.EXPECT().SetLocalDescription(testOffer).Return(core.CompletedTask(struct{}{}, nil))
	h.expectUnwind()
	h.neg.EXPECT().Cleanup()
	gomock.InOrder(
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnecting, domain.ReasonJoining),
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnected, domain.ReasonJoinSuccess),
		h.sink.EXPECT().OnJoinChannelSuccess("c", "u", gomock.Any()),
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateDisconnected, domain.ReasonLeaveChannel),
		h.sink.EXPECT().OnLeaveChannel(),
	)

	joined := make(chan domain.ResultCode, 1)
	go func() { joined <- h.o.JoinChannel(t.Context(), "t", "c", "u") }()
	<-inOffer

	closed := make(chan struct{})
	go func() {
		h.o.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while a join was negotiating")
	case <-time.After(20 * time.Millisecond):
	}

	offer.Complete(testOffer, nil)
	if code := <-joined; code != domain.CodeOK {
		t.Fatalf("JoinChannel = %v", code)
	}
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close never returned")
	}
	if h.o.IsInChannel() {
		t.Error("in channel after Close")
	}
	if st := h.o.ConnectionState(); st != domain.StateDisconnected {
		t.Errorf("state = %v, want disconnected", st)
	}
}

func TestLeaveChannel_TeardownErrorDeliveredWithoutLocks(t *testing.T) {
	h := newHarness(t, testConfig())
	h.join(t)

	h.neg.EXPECT().RemoveLocalStreams()
	h.neg.EXPECT().ClosePeerConnection().Do(func() {
		h.obs.OnError(errors.New("close peer connection: transport busy"))
	})
	var locked bool
	gomock.InOrder(
		h.sink.EXPECT().OnError(domain.CodeNegotiatorError, gomock.Any()).Do(func(domain.ResultCode, string) {
			if h.o.opMu.TryLock() {
				h.o.opMu.Unlock()
			} else {
				locked = true
			}
		}),
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateDisconnected, domain.ReasonLeaveChannel),
		h.sink.EXPECT().OnLeaveChannel(),
	)
	if code := h.o.LeaveChannel(); code != domain.CodeOK {
		t.Fatalf("LeaveChannel = %v", code)
	}
	if locked {
		t.Error("sink called with opMu held")
	}
}

func TestJoinChannel_Failures(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name   string
		setup  func(h *harness)
		want   domain.ResultCode
		worker bool
	}{
		{
			name: "peer connection",
			setup: func(h *harness) {
				h.neg.EXPECT().CreatePeerConnection().Return(boom)
			},
			want: domain.CodePeerConnectionFailed,
		},
		{
			name: "local streams",
			setup: func(h *harness) {
				h.neg.EXPECT().CreatePeerConnection().Return(nil)
				h.neg.EXPECT().AddLocalStreams().Return(boom)
			},
			want: domain.CodeLocalStreamsFailed,
		},
		{
			name: "offer",
			setup: func(h *harness) {
				h.neg.EXPECT().CreatePeerConnection().Return(nil)
				h.neg.EXPECT().AddLocalStreams().Return(nil)
				h.neg.EXPECT().CreateOffer().Return(core.FailedTask[webrtc.SessionDescription](boom))
			},
			want: domain.CodeNegotiationFailed,
		},
		{
			name: "local description",
			setup: func(h *harness) {
				h.neg.EXPECT().CreatePeerConnection().Return(nil)
				h.neg.EXPECT().AddLocalStreams().Return(nil)
				h.neg.EXPECT().CreateOffer().Return(core.CompletedTask(testOffer, nil))
				h.neg.EXPECT().SetLocalDescription(testOffer).Return(core.FailedTask[struct{}](boom))
			},
			want: domain.CodeNegotiationFailed,
		},
		{
			name: "timeout",
			setup: func(h *harness) {
				h.neg.EXPECT().CreatePeerConnection().Return(nil)
				h.neg.EXPECT().AddLocalStreams().Return(nil)
				h.neg.EXPECT().CreateOffer().Return(core.NewTask[webrtc.SessionDescription]())
			},
			want: domain.CodeNegotiationTimeout,
		},
		{
			name: "fault",
			setup: func(h *harness) {
				h.neg.EXPECT().CreatePeerConnection().Return(nil)
				h.neg.EXPECT().AddLocalStreams().DoAndReturn(func() error { panic("native fault") })
			},
			want: domain.CodeJoinFault,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.ConnectionTimeout = 50 * time.Millisecond
			h := newHarness(t, cfg)
			c.setup(h)
			h.expectUnwind()
			gomock.InOrder(
				h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnecting, domain.ReasonJoining),
				h.sink.EXPECT().OnConnectionStateChanged(domain.StateFailed, domain.ReasonJoinFailed),
				h.sink.EXPECT().OnError(c.want, gomock.Any()),
			)

			if code := h.o.JoinChannel(t.Context(), "t", "c", "u"); code != c.want {
				t.Fatalf("JoinChannel = %v, want %v", code, c.want)
			}
			if h.o.IsInChannel() {
				t.Error("membership kept after failed join")
			}
			if st := h.o.ConnectionState(); st != domain.StateFailed {
				t.Errorf("state = %v, want failed", st)
			}
			if h.o.worker != nil {
				t.Error("worker left running after failed join")
			}

			// Failed -> Disconnected only through an explicit leave.
			h.sink.EXPECT().OnConnectionStateChanged(domain.StateDisconnected, domain.ReasonLeaveChannel)
			if code := h.o.LeaveChannel(); code != domain.CodeOK {
				t.Errorf("LeaveChannel after failure = %v", code)
			}
			if st := h.o.ConnectionState(); st != domain.StateDisconnected {
				t.Errorf("state after leave = %v", st)
			}
		})
	}
}

func TestJoinChannel_SinkPanicDoesNotEscape(t *testing.T) {
	h := newHarness(t, testConfig())
	h.expectNegotiation()
	h.sink.EXPECT().OnConnectionStateChanged(gomock.Any(), gomock.Any()).Do(func(domain.ConnectionState, domain.StateReason) {
		panic("host bug")
	}).Times(2)
	h.sink.EXPECT().OnJoinChannelSuccess("c", "u", gomock.Any())

	if code := h.o.JoinChannel(t.Context(), "t", "c", "u"); code != domain.CodeOK {
		t.Fatalf("JoinChannel = %v", code)
	}
	if st := h.o.bridge.Stats(); st.Faults != 2 || st.Delivered != 1 {
		t.Errorf("bridge stats = %+v", st)
	}

	h.expectUnwind()
	h.expectLeaveEvents()
	h.o.LeaveChannel()
}

func TestSetSink_Replace(t *testing.T) {
	h := newHarness(t, testConfig())
	h.join(t)

	next := mocks.NewMockEventSink(gomock.NewController(t))
	h.o.SetSink(next)
	next.EXPECT().OnConnectionStateChanged(domain.StateReconnecting, domain.ReasonInterrupted)
	h.obs.OnPeerConnectionChange(webrtc.PeerConnectionStateDisconnected)
}

func TestSetSinkNil_JoinStillSucceeds(t *testing.T) {
	h := newHarness(t, testConfig())
	h.o.SetSink(nil)
	h.expectNegotiation()
	if code := h.o.JoinChannel(t.Context(), "t", "c", "u"); code != domain.CodeOK {
		t.Fatalf("JoinChannel = %v", code)
	}
	if got := h.o.bridge.Stats().Dropped; got != 3 {
		t.Errorf("dropped = %d, want 3", got)
	}
}

func TestObserver_PeerStateMapping(t *testing.T) {
	h := newHarness(t, testConfig())
	h.join(t)

	gomock.InOrder(
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateReconnecting, domain.ReasonInterrupted),
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnected, domain.ReasonRecovered),
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateFailed, domain.ReasonTransportFailed),
		h.sink.EXPECT().OnError(domain.CodeTransportFailed, gomock.Any()),
	)
	h.obs.OnPeerConnectionChange(webrtc.PeerConnectionStateDisconnected)
	h.obs.OnPeerConnectionChange(webrtc.PeerConnectionStateDisconnected)
	h.obs.OnPeerConnectionChange(webrtc.PeerConnectionStateConnected)
	h.obs.OnPeerConnectionChange(webrtc.PeerConnectionStateFailed)
	h.obs.OnPeerConnectionChange(webrtc.PeerConnectionStateFailed)

	// Leave from a joined but failed session still tears down.
	h.expectUnwind()
	h.expectLeaveEvents()
	if code := h.o.LeaveChannel(); code != domain.CodeOK {
		t.Errorf("LeaveChannel = %v", code)
	}
}

func TestObserver_MediaEvents(t *testing.T) {
	h := newHarness(t, testConfig())
	h.join(t)

	h.sink.EXPECT().OnFirstLocalVideoFrame(640, 480, gomock.Any())
	h.sink.EXPECT().OnFirstRemoteVideoDecoded("bob", 1280, 720, gomock.Any())
	h.sink.EXPECT().OnUserOffline("bob", domain.OfflineDropped)
	h.sink.EXPECT().OnError(domain.CodeNegotiatorError, "ice restart failed")

	h.obs.OnLocalStreamAdded(core.FrameInfo{Width: 640, Height: 480})
	h.obs.OnRemoteStreamAdded("bob", "video")
	h.obs.OnFirstRemoteVideoFrame("bob", core.FrameInfo{Width: 1280, Height: 720})
	h.obs.OnRemoteStreamRemoved("bob")
	h.obs.OnError(errors.New("ice restart failed"))
	// No signaling configured: candidates go nowhere.
	h.obs.OnICECandidate(webrtc.ICECandidateInit{Candidate: "candidate:1"})
}

func TestMediaPassThrough(t *testing.T) {
	h := newHarness(t, testConfig())
	surface := domain.Surface{ID: "s1", Width: 320, Height: 240}

	h.neg.EXPECT().SetupLocalVideo(surface)
	h.neg.EXPECT().SetupRemoteVideo(surface, "bob")
	h.neg.EXPECT().MuteLocalAudio(true)
	h.neg.EXPECT().EnableLocalVideo(false)

	if err := h.o.SetupLocalVideo(surface); err != nil {
		t.Error(err)
	}
	if err := h.o.SetupRemoteVideo(surface, "bob"); err != nil {
		t.Error(err)
	}
	if err := h.o.SetupRemoteVideo(surface, ""); err == nil {
		t.Error("empty remote user accepted")
	}
	if err := h.o.MuteLocalAudio(true); err != nil {
		t.Error(err)
	}
	if err := h.o.EnableLocalVideo(false); err != nil {
		t.Error(err)
	}
}

// signalType matches outbound signaling messages by type.
type signalType string

func (s signalType) Matches(x any) bool {
	msg, ok := x.(core.SignalMessage)
	return ok && msg.Type == string(s)
}

func (s signalType) String() string { return "signal of type " + string(s) }

func TestJoinChannel_WithSignaling(t *testing.T) {
	ctrl := gomock.NewController(t)
	sig := mocks.NewMockSignalTransport(ctrl)
	cfg := testConfig()
	h := newHarness(t, cfg, WithSignaling(func() core.SignalTransport { return sig }))

	var inbound func(core.SignalMessage)
	sig.EXPECT().OnMessage(gomock.Any()).Do(func(fn func(core.SignalMessage)) { inbound = fn })
	sig.EXPECT().Connect(gomock.Any(), cfg.SignalingURL, "t").Return(nil)
	gomock.InOrder(
		sig.EXPECT().Send(signalType(core.SignalJoinChannel)).Return(nil),
		sig.EXPECT().Send(signalType(core.SignalOffer)).Do(func(msg core.SignalMessage) {
			var p core.SDPPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil || p.SDP != testOffer.SDP {
				panic(fmt.Sprintf("offer payload %s", msg.Payload))
			}
		}).Return(nil),
	)
	h.join(t)

	answer := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0\r\nanswer"}
	applied := make(chan struct{})
	h.neg.EXPECT().SetRemoteDescription(answer).DoAndReturn(func(webrtc.SessionDescription) *core.Task[struct{}] {
		close(applied)
		return core.CompletedTask(struct{}{}, nil)
	})
	h.neg.EXPECT().AddIceCandidate("candidate:remote", "0", uint16(0)).Return(nil)
	h.sink.EXPECT().OnUserJoined("bob")
	h.sink.EXPECT().OnUserOffline("bob", domain.OfflineQuit)
	h.sink.EXPECT().OnError(domain.CodeSignalingError, "room full")
	sig.EXPECT().Send(signalType(core.SignalPong)).Return(nil)
	sig.EXPECT().Send(signalType(core.SignalICECandidate)).Return(nil)

	inbound(core.SignalMessage{Type: core.SignalAnswer, SenderID: "bob", Payload: json.RawMessage(`{"sdp":"v=0\r\nanswer"}`)})
	inbound(core.SignalMessage{Type: core.SignalICECandidate, SenderID: "bob", Payload: json.RawMessage(`{"candidate":"candidate:remote","sdpMid":"0","sdpMLineIndex":0}`)})
	inbound(core.SignalMessage{Type: core.SignalUserJoined, SenderID: "bob"})
	inbound(core.SignalMessage{Type: core.SignalUserJoined, SenderID: "u"})
	inbound(core.SignalMessage{Type: core.SignalUserLeft, SenderID: "bob"})
	inbound(core.SignalMessage{Type: core.SignalError, Error: "room full"})
	inbound(core.SignalMessage{Type: core.SignalPing})
	h.obs.OnICECandidate(webrtc.ICECandidateInit{Candidate: "candidate:local"})

	select {
	case <-applied:
	case <-time.After(time.Second):
		t.Fatal("answer not applied")
	}

	sig.EXPECT().Send(signalType(core.SignalLeaveChannel)).Return(nil)
	sig.EXPECT().Close()
	h.expectUnwind()
	h.expectLeaveEvents()
	h.o.LeaveChannel()

	// Messages arriving after leave belong to a stale transport.
	inbound(core.SignalMessage{Type: core.SignalUserJoined, SenderID: "carol"})
}

func TestJoinChannel_EventsDuringJoinFollowConnecting(t *testing.T) {
	ctrl := gomock.NewController(t)
	sig := mocks.NewMockSignalTransport(ctrl)
	cfg := testConfig()
	h := newHarness(t, cfg, WithSignaling(func() core.SignalTransport { return sig }))

	// Both events are raised from other goroutines while the join is still
	// negotiating.
	raise := func(fn func()) {
		done := make(chan struct{})
		go func() {
			defer close(done)
			fn()
		}()
		<-done
	}
	var inbound func(core.SignalMessage)
	sig.EXPECT().OnMessage(gomock.Any()).Do(func(fn func(core.SignalMessage)) { inbound = fn })
	sig.EXPECT().Connect(gomock.Any(), cfg.SignalingURL, "t").DoAndReturn(func(context.Context, string, string) error {
		raise(func() { inbound(core.SignalMessage{Type: core.SignalUserJoined, SenderID: "bob"}) })
		return nil
	})
	sig.EXPECT().Send(signalType(core.SignalJoinChannel)).Return(nil)
	sig.EXPECT().Send(signalType(core.SignalOffer)).Return(nil)
	h.neg.EXPECT().CreatePeerConnection().Return(nil)
	h.neg.EXPECT().AddLocalStreams().Return(nil)
	h.neg.EXPECT().CreateOffer().DoAndReturn(func() *core.Task[webrtc.SessionDescription] {
		raise(func() { h.obs.OnLocalStreamAdded(core.FrameInfo{Width: 640, Height: 480}) })
		return core.CompletedTask(testOffer, nil)
	})
	h.neg.EXPECT().SetLocalDescription(testOffer).Return(core.CompletedTask(struct{}{}, nil))

	gomock.InOrder(
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnecting, domain.ReasonJoining),
		h.sink.EXPECT().OnUserJoined("bob"),
		h.sink.EXPECT().OnFirstLocalVideoFrame(640, 480, gomock.Any()),
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnected, domain.ReasonJoinSuccess),
		h.sink.EXPECT().OnJoinChannelSuccess("c", "u", gomock.Any()),
	)
	if code := h.o.JoinChannel(t.Context(), "t", "c", "u"); code != domain.CodeOK {
		t.Fatalf("JoinChannel = %v", code)
	}

	// Once the join has returned, events are delivered immediately again.
	h.sink.EXPECT().OnUserOffline("bob", domain.OfflineQuit)
	inbound(core.SignalMessage{Type: core.SignalUserLeft, SenderID: "bob"})

	sig.EXPECT().Send(signalType(core.SignalLeaveChannel)).Return(nil)
	sig.EXPECT().Close()
	h.expectUnwind()
	h.expectLeaveEvents()
	h.o.LeaveChannel()
}

func TestJoinChannel_SignalingConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sig := mocks.NewMockSignalTransport(ctrl)
	h := newHarness(t, testConfig(), WithSignaling(func() core.SignalTransport { return sig }))

	h.neg.EXPECT().CreatePeerConnection().Return(nil)
	h.neg.EXPECT().AddLocalStreams().Return(nil)
	sig.EXPECT().OnMessage(gomock.Any())
	sig.EXPECT().Connect(gomock.Any(), gomock.Any(), "t").Return(errors.New("dial refused"))
	sig.EXPECT().Close()
	h.expectUnwind()
	gomock.InOrder(
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateConnecting, domain.ReasonJoining),
		h.sink.EXPECT().OnConnectionStateChanged(domain.StateFailed, domain.ReasonJoinFailed),
		h.sink.EXPECT().OnError(domain.CodeSignalingFailed, gomock.Any()),
	)

	if code := h.o.JoinChannel(t.Context(), "t", "c", "u"); code != domain.CodeSignalingFailed {
		t.Errorf("JoinChannel = %v, want %v", code, domain.CodeSignalingFailed)
	}
}

func TestStatsWindow_Bitrate(t *testing.T) {
	var w statsWindow
	t0 := time.Unix(100, 0)

	s := domain.RtcStats{TxBytes: 1000, RxBytes: 1000}
	w.apply(t0, &s)
	if s.TxKBitrate != 0 {
		t.Errorf("first sample bitrate = %d, want 0", s.TxKBitrate)
	}

	s = domain.RtcStats{TxBytes: 126000, RxBytes: 63500}
	w.apply(t0.Add(time.Second), &s)
	if s.TxKBitrate != 1000 || s.RxKBitrate != 500 {
		t.Errorf("bitrate = %d/%d, want 1000/500", s.TxKBitrate, s.RxKBitrate)
	}

	s = domain.RtcStats{TxBytes: 10, RxBytes: 10}
	w.apply(t0.Add(2*time.Second), &s)
	if s.TxKBitrate != 0 || s.RxKBitrate != 0 {
		t.Errorf("counter reset bitrate = %d/%d, want 0/0", s.TxKBitrate, s.RxKBitrate)
	}
}
