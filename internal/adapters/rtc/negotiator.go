// Package rtc implements core.Negotiator on top of pion/webrtc.
package rtc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/google/uuid"
	"github.com/pion/ice/v4"
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

var (
	ErrNotInitialized   = errors.New("negotiator not initialized")
	ErrNoPeerConnection = errors.New("no peer connection")
	ErrNoLocalStreams   = errors.New("local streams not added")
)

const (
	iceDisconnectedTimeout = 5 * time.Second
	iceFailedTimeout       = 25 * time.Second
	iceKeepAlive           = 2 * time.Second
)

// Negotiator owns one pion peer connection at a time and the local tracks fed
// by a core.MediaIO.
type Negotiator struct {
	cfg    core.NegotiatorConfig
	media  core.MediaIO
	logger zerolog.Logger

	tasks conc.WaitGroup

	mu                 sync.Mutex
	api                *webrtc.API
	audioCap, videoCap webrtc.RTPCodecCapability
	initialized        bool
	observer           core.NegotiatorObserver
	pc                 *webrtc.PeerConnection
	streamID           string
	audio, video       *webrtc.TrackLocalStaticSample
	senders            []*webrtc.RTPSender
	streamCancel       context.CancelFunc
	remote             map[string]int
}

func New(cfg core.NegotiatorConfig, media core.MediaIO) *Negotiator {
	return &Negotiator{
		cfg:      cfg,
		media:    media,
		logger:   log.With().Str("module", "rtc").Logger(),
		observer: nopObserver{},
		remote:   make(map[string]int),
	}
}

// Factory returns a core.NegotiatorFactory that gives every negotiator its own
// media device.
func Factory(newMedia func() core.MediaIO) core.NegotiatorFactory {
	return func(cfg core.NegotiatorConfig) core.Negotiator {
		return New(cfg, newMedia())
	}
}

func (n *Negotiator) SetObserver(ob core.NegotiatorObserver) {
	if ob == nil {
		ob = nopObserver{}
	}
	n.mu.Lock()
	n.observer = ob
	n.mu.Unlock()
}

func (n *Negotiator) obs() core.NegotiatorObserver {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.observer
}

// Initialize builds the pion API: codecs, default interceptors and ICE
// settings.
func (n *Negotiator) Initialize() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.initialized {
		return nil
	}
	if n.media == nil {
		return fmt.Errorf("%w: no media device", ErrNotInitialized)
	}

	me := &webrtc.MediaEngine{}
	audioCap, videoCap, err := registerCodecs(me, n.cfg.AudioCodec, n.cfg.VideoCodec)
	if err != nil {
		return err
	}
	ir := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(me, ir); err != nil {
		return fmt.Errorf("register interceptors: %w", err)
	}

	se := webrtc.SettingEngine{LoggerFactory: newLoggerFactory(zerolog.WarnLevel)}
	se.SetICETimeouts(iceDisconnectedTimeout, iceFailedTimeout, iceKeepAlive)
	if !n.cfg.EnableMulticastDNS {
		se.SetICEMulticastDNSMode(ice.MulticastDNSModeDisabled)
	}

	n.api = webrtc.NewAPI(
		webrtc.WithMediaEngine(me),
		webrtc.WithInterceptorRegistry(ir),
		webrtc.WithSettingEngine(se),
	)
	n.audioCap, n.videoCap = audioCap, videoCap
	n.initialized = true

	n.logger.Info().
		Str("audio", audioCap.MimeType).
		Str("video", videoCap.MimeType).
		Bool("hw_accel", n.cfg.EnableHardwareAcceleration).
		Bool("audio_processing", n.cfg.EnableAudioProcessing).
		Int("ice_servers", len(n.cfg.ICEServers)).
		Msg("negotiator initialized")
	return nil
}

// Cleanup closes the peer connection and waits for every outstanding task.
func (n *Negotiator) Cleanup() {
	n.ClosePeerConnection()
	if r := n.tasks.WaitAndRecover(); r != nil {
		n.logger.Error().Err(r.AsError()).Msg("negotiator task panicked")
	}
	n.mu.Lock()
	n.initialized = false
	n.api = nil
	n.mu.Unlock()
	n.logger.Info().Msg("negotiator cleaned up")
}

func iceServers(specs []domain.IceServerSpec) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(specs))
	for _, s := range specs {
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out
}

func (n *Negotiator) CreatePeerConnection() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.initialized {
		return ErrNotInitialized
	}
	if n.pc != nil {
		n.logger.Debug().Msg("peer connection already exists")
		return nil
	}

	pc, err := n.api.NewPeerConnection(webrtc.Configuration{
		ICEServers:   iceServers(n.cfg.ICEServers),
		SDPSemantics: webrtc.SDPSemanticsUnifiedPlan,
	})
	if err != nil {
		return fmt.Errorf("new peer connection: %w", err)
	}

	pc.OnSignalingStateChange(func(s webrtc.SignalingState) {
		n.obs().OnSignalingChange(s)
	})
	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		n.obs().OnICEConnectionChange(s)
	})
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		n.obs().OnPeerConnectionChange(s)
	})
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			n.obs().OnICEGatheringComplete()
			return
		}
		n.obs().OnICECandidate(c.ToJSON())
	})
	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		n.onTrack(pc, track)
	})

	n.pc = pc
	n.logger.Info().Msg("peer connection created")
	return nil
}

func (n *Negotiator) onTrack(pc *webrtc.PeerConnection, track *webrtc.TrackRemote) {
	streamID := track.StreamID()
	kind := track.Kind()
	n.logger.Info().
		Str("kind", kind.String()).
		Str("track_id", track.ID()).
		Str("stream_id", streamID).
		Msg("OnTrack received")

	n.mu.Lock()
	n.remote[streamID]++
	added := n.remote[streamID] == 1
	n.mu.Unlock()
	if added {
		n.obs().OnRemoteStreamAdded(streamID, kind.String())
	}

	n.tasks.Go(func() { n.readTrack(pc, track) })
}

// readTrack feeds remote RTP into the renderer of the track's stream until the
// track ends.
func (n *Negotiator) readTrack(pc *webrtc.PeerConnection, track *webrtc.TrackRemote) {
	streamID := track.StreamID()
	wantFirst := track.Kind() == webrtc.RTPCodecTypeVideo
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				n.logger.Debug().Err(err).Str("stream_id", streamID).Msg("remote track ended")
			}
			break
		}
		frame := n.media.Render(streamID, pkt)
		if wantFirst {
			wantFirst = false
			n.obs().OnFirstRemoteVideoFrame(streamID, frame)
		}
	}

	n.mu.Lock()
	n.remote[streamID]--
	removed := n.remote[streamID] <= 0
	if removed {
		delete(n.remote, streamID)
	}
	current := n.pc == pc
	n.mu.Unlock()

	// Tracks ending because we closed the connection are not remote removals.
	if removed && current {
		n.obs().OnRemoteStreamRemoved(streamID)
	}
}

// ClosePeerConnection removes local streams and closes the connection.
func (n *Negotiator) ClosePeerConnection() {
	n.RemoveLocalStreams()

	n.mu.Lock()
	pc := n.pc
	n.pc = nil
	n.mu.Unlock()
	if pc == nil {
		return
	}
	if err := pc.Close(); err != nil {
		n.logger.Error().Err(err).Msg("close error")
		n.obs().OnError(fmt.Errorf("close peer connection: %w", err))
		return
	}
	n.logger.Info().Msg("peer connection closed")
}

// AddLocalStreams creates the local audio and video tracks, attaches them to
// the peer connection and starts capture.
func (n *Negotiator) AddLocalStreams() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pc == nil {
		return ErrNoPeerConnection
	}
	if n.audio != nil {
		return nil
	}

	streamID := uuid.NewString()
	audio, err := webrtc.NewTrackLocalStaticSample(n.audioCap, "audio", streamID)
	if err != nil {
		return fmt.Errorf("audio track: %w", err)
	}
	video, err := webrtc.NewTrackLocalStaticSample(n.videoCap, "video", streamID)
	if err != nil {
		return fmt.Errorf("video track: %w", err)
	}

	senders := make([]*webrtc.RTPSender, 0, 2)
	for _, tr := range []*webrtc.TrackLocalStaticSample{audio, video} {
		s, err := n.pc.AddTrack(tr)
		if err != nil {
			for _, added := range senders {
				_ = n.pc.RemoveTrack(added)
			}
			return fmt.Errorf("add %s track: %w", tr.Kind(), err)
		}
		senders = append(senders, s)
	}
	if err := n.media.StartCapture(audio, video); err != nil {
		for _, s := range senders {
			_ = n.pc.RemoveTrack(s)
		}
		return fmt.Errorf("start capture: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.streamID, n.audio, n.video, n.senders, n.streamCancel = streamID, audio, video, senders, cancel

	for _, s := range senders {
		n.tasks.Go(func() { drainRTCP(s) })
	}
	first := n.media.FirstLocalFrame()
	n.tasks.Go(func() {
		select {
		case f, ok := <-first:
			if ok {
				n.obs().OnLocalStreamAdded(f)
			}
		case <-ctx.Done():
		}
	})

	n.logger.Info().Str("stream_id", streamID).Msg("local streams added")
	return nil
}

// drainRTCP reads incoming RTCP so interceptors keep working. It returns when
// the sender is stopped.
func drainRTCP(s *webrtc.RTPSender) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := s.Read(buf); err != nil {
			return
		}
	}
}

func (n *Negotiator) RemoveLocalStreams() {
	n.mu.Lock()
	if n.audio == nil {
		n.mu.Unlock()
		return
	}
	pc, senders, cancel := n.pc, n.senders, n.streamCancel
	n.audio, n.video, n.senders, n.streamCancel, n.streamID = nil, nil, nil, nil, ""
	n.mu.Unlock()

	cancel()
	n.media.StopCapture()
	if pc != nil {
		for _, s := range senders {
			if err := pc.RemoveTrack(s); err != nil {
				n.logger.Debug().Err(err).Msg("remove track")
			}
		}
	}
	n.logger.Info().Msg("local streams removed")
}

func (n *Negotiator) ready() (*webrtc.PeerConnection, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pc == nil {
		return nil, ErrNoPeerConnection
	}
	if n.audio == nil {
		return nil, ErrNoLocalStreams
	}
	return n.pc, nil
}

func (n *Negotiator) peer() (*webrtc.PeerConnection, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pc == nil {
		return nil, ErrNoPeerConnection
	}
	return n.pc, nil
}

func (n *Negotiator) CreateOffer() *core.Task[webrtc.SessionDescription] {
	pc, err := n.ready()
	if err != nil {
		return core.FailedTask[webrtc.SessionDescription](err)
	}
	t := core.NewTask[webrtc.SessionDescription]()
	n.tasks.Go(func() {
		offer, err := pc.CreateOffer(nil)
		t.Complete(offer, err)
	})
	return t
}

func (n *Negotiator) CreateAnswer() *core.Task[webrtc.SessionDescription] {
	pc, err := n.ready()
	if err != nil {
		return core.FailedTask[webrtc.SessionDescription](err)
	}
	t := core.NewTask[webrtc.SessionDescription]()
	n.tasks.Go(func() {
		answer, err := pc.CreateAnswer(nil)
		t.Complete(answer, err)
	})
	return t
}

func (n *Negotiator) SetLocalDescription(desc webrtc.SessionDescription) *core.Task[struct{}] {
	pc, err := n.peer()
	if err != nil {
		return core.FailedTask[struct{}](err)
	}
	t := core.NewTask[struct{}]()
	n.tasks.Go(func() {
		t.Complete(struct{}{}, pc.SetLocalDescription(desc))
	})
	return t
}

func (n *Negotiator) SetRemoteDescription(desc webrtc.SessionDescription) *core.Task[struct{}] {
	pc, err := n.peer()
	if err != nil {
		return core.FailedTask[struct{}](err)
	}
	t := core.NewTask[struct{}]()
	n.tasks.Go(func() {
		t.Complete(struct{}{}, pc.SetRemoteDescription(desc))
	})
	return t
}

func (n *Negotiator) AddIceCandidate(candidate, sdpMid string, sdpMLineIndex uint16) error {
	pc, err := n.peer()
	if err != nil {
		return err
	}
	ci := webrtc.ICECandidateInit{Candidate: candidate, SDPMLineIndex: &sdpMLineIndex}
	if sdpMid != "" {
		ci.SDPMid = &sdpMid
	}
	return pc.AddICECandidate(ci)
}

func (n *Negotiator) SetupLocalVideo(surface domain.Surface) {
	n.media.AttachRenderer(core.LocalTarget, surface)
}

func (n *Negotiator) SetupRemoteVideo(surface domain.Surface, userID string) {
	n.media.AttachRenderer(userID, surface)
}

func (n *Negotiator) MuteLocalAudio(muted bool) { n.media.MuteAudio(muted) }

func (n *Negotiator) EnableLocalVideo(enabled bool) { n.media.EnableVideo(enabled) }

// GetStats sums transport byte counters and reports the round trip time of
// the nominated candidate pair.
func (n *Negotiator) GetStats() *core.Task[domain.RtcStats] {
	pc, err := n.peer()
	if err != nil {
		return core.FailedTask[domain.RtcStats](err)
	}
	t := core.NewTask[domain.RtcStats]()
	n.tasks.Go(func() {
		var out domain.RtcStats
		for _, s := range pc.GetStats() {
			switch v := s.(type) {
			case webrtc.TransportStats:
				out.TxBytes += v.BytesSent
				out.RxBytes += v.BytesReceived
			case webrtc.ICECandidatePairStats:
				if v.Nominated {
					out.RTTMs = int64(v.CurrentRoundTripTime * 1000)
				}
			}
		}
		t.Complete(out, nil)
	})
	return t
}

func (n *Negotiator) IsConnected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pc != nil && n.audio != nil
}

type nopObserver struct{}

func (nopObserver) OnSignalingChange(webrtc.SignalingState)           {}
func (nopObserver) OnICEConnectionChange(webrtc.ICEConnectionState)   {}
func (nopObserver) OnPeerConnectionChange(webrtc.PeerConnectionState) {}
func (nopObserver) OnICECandidate(webrtc.ICECandidateInit)            {}
func (nopObserver) OnICEGatheringComplete()                           {}
func (nopObserver) OnLocalStreamAdded(core.FrameInfo)                 {}
func (nopObserver) OnRemoteStreamAdded(string, string)                {}
func (nopObserver) OnRemoteStreamRemoved(string)                      {}
func (nopObserver) OnFirstRemoteVideoFrame(string, core.FrameInfo)    {}
func (nopObserver) OnError(error)                                     {}
