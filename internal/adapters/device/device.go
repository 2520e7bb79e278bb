// Package device is the local capture and render device behind the
// negotiator. Audio capture produces Opus silence frames; video capture
// announces its first frame at the configured capture size. Remote media is
// accounted per renderer target.
package device

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNoAudioTrack = errors.New("audio track is nil")

const (
	FrameInterval = 20 * time.Millisecond

	DefaultWidth  = 640
	DefaultHeight = 480
)

// opusSilence is one 20ms Opus frame of silence.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

type renderer struct {
	surface domain.Surface
	packets atomic.Uint64
	bytes   atomic.Uint64
}

// RenderStats is the traffic seen by one renderer target.
type RenderStats struct {
	Surface domain.Surface
	Packets uint64
	Bytes   uint64
}

type Device struct {
	logger        zerolog.Logger
	width, height int

	samples atomic.Uint64

	mu           sync.Mutex
	active       bool
	audioMuted   bool
	videoEnabled bool
	cancel       context.CancelFunc
	done         chan struct{}
	first        chan core.FrameInfo
	renderers    map[string]*renderer
}

type Option func(*Device)

// WithCaptureSize sets the size reported for local video frames.
func WithCaptureSize(width, height int) Option {
	return func(d *Device) { d.width, d.height = width, height }
}

func New(opts ...Option) *Device {
	d := &Device{
		logger:       log.With().Str("module", "device").Logger(),
		width:        DefaultWidth,
		height:       DefaultHeight,
		videoEnabled: true,
		first:        make(chan core.FrameInfo, 1),
		renderers:    make(map[string]*renderer),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// StartCapture starts the capture pump. Starting an active device is a no-op.
func (d *Device) StartCapture(audio, video *webrtc.TrackLocalStaticSample) error {
	if audio == nil {
		return ErrNoAudioTrack
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.active = true
	d.cancel = cancel
	d.done = make(chan struct{})
	d.first = make(chan core.FrameInfo, 1)

	go d.pump(ctx, audio, video != nil, d.first, d.done)
	d.logger.Info().Bool("video", video != nil).Msg("capture started")
	return nil
}

func (d *Device) pump(ctx context.Context, audio *webrtc.TrackLocalStaticSample, hasVideo bool, first chan core.FrameInfo, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	announced := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		muted, videoOn := d.audioMuted, d.videoEnabled
		d.mu.Unlock()

		if !muted {
			if err := audio.WriteSample(media.Sample{Data: opusSilence, Duration: FrameInterval}); err != nil {
				d.logger.Debug().Err(err).Msg("write audio sample")
			} else {
				d.samples.Add(1)
			}
		}
		if hasVideo && videoOn && !announced {
			announced = true
			first <- core.FrameInfo{Width: d.width, Height: d.height}
		}
	}
}

// StopCapture stops the pump and waits for it to exit.
func (d *Device) StopCapture() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	cancel, done := d.cancel, d.done
	d.active = false
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	cancel()
	<-done
	d.logger.Info().Uint64("audio_samples", d.samples.Load()).Msg("capture stopped")
}

// FirstLocalFrame yields the first local video frame of the current capture.
func (d *Device) FirstLocalFrame() <-chan core.FrameInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.first
}

func (d *Device) MuteAudio(muted bool) {
	d.mu.Lock()
	d.audioMuted = muted
	d.mu.Unlock()
	d.logger.Debug().Bool("muted", muted).Msg("audio mute")
}

func (d *Device) EnableVideo(enabled bool) {
	d.mu.Lock()
	d.videoEnabled = enabled
	d.mu.Unlock()
	d.logger.Debug().Bool("enabled", enabled).Msg("video enable")
}

// AttachRenderer binds surface to target, replacing any earlier binding.
func (d *Device) AttachRenderer(target string, surface domain.Surface) {
	d.mu.Lock()
	d.renderers[target] = &renderer{surface: surface}
	d.mu.Unlock()
	d.logger.Info().Str("target", target).Str("surface", surface.ID).Msg("renderer attached")
}

// Render accounts pkt to target. Packets for targets without a renderer are
// counted under a renderer created on the fly with an unknown surface.
func (d *Device) Render(target string, pkt *rtp.Packet) core.FrameInfo {
	d.mu.Lock()
	r, ok := d.renderers[target]
	if !ok {
		r = &renderer{}
		d.renderers[target] = r
	}
	d.mu.Unlock()

	r.packets.Add(1)
	if pkt != nil {
		r.bytes.Add(uint64(len(pkt.Payload)))
	}
	return core.FrameInfo{Width: r.surface.Width, Height: r.surface.Height}
}

// RenderStats returns the traffic seen by target.
func (d *Device) RenderStats(target string) (RenderStats, bool) {
	d.mu.Lock()
	r, ok := d.renderers[target]
	d.mu.Unlock()
	if !ok {
		return RenderStats{}, false
	}
	return RenderStats{Surface: r.surface, Packets: r.packets.Load(), Bytes: r.bytes.Load()}, true
}

// AudioSamples is the number of audio samples written since creation.
func (d *Device) AudioSamples() uint64 { return d.samples.Load() }

func (d *Device) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}
