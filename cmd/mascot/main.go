// Terminal mascot demo: renders the engine's per-frame snapshot with tcell
// and feeds the audio pipeline from a beep tone generator whose gain is
// modulated by keypresses (audible spikes trigger gestures)
package main

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/emotive/audio"
	"github.com/lixenwraith/emotive/engine"
	"github.com/lixenwraith/emotive/event"
	"github.com/lixenwraith/emotive/particle"
	"github.com/lixenwraith/emotive/status"
)

const (
	renderFPS     = 30
	sampleRate    = beep.SampleRate(44100)
	burstGain     = 0.9
	idleGain      = 0.05
	burstHold     = 150 * time.Millisecond
	coreRadiusX   = 3.0
	particleGlyph = '•'
)

// gainStreamer scales a source streamer's amplitude through a shared gain
// control; the demo's stand-in for a microphone picking up loud moments
// Two instances share one control: one feeds the speaker, one the analyser
type gainStreamer struct {
	src  beep.Streamer
	gain *status.AtomicFloat
}

func (g *gainStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.src.Stream(samples)
	v := g.gain.Get()
	for i := 0; i < n; i++ {
		samples[i][0] *= v
		samples[i][1] *= v
	}
	return n, ok
}

func (g *gainStreamer) Err() error { return nil }

type app struct {
	screen tcell.Screen
	eng    *engine.Engine
	gain   *status.AtomicFloat

	speakerSrc  beep.Streamer
	particleBuf []particle.Particle

	emotions   []string
	gestures   []string
	gestureIdx int
	paused     bool

	lastSpikeNano atomic.Int64
}

func newApp() (*app, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	eng := engine.New(engine.Config{})

	gain := &status.AtomicFloat{}
	gain.Set(idleGain)

	analyserTone, err := generators.SinTone(sampleRate, 220)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	speakerTone, err := generators.SinTone(sampleRate, 220)
	if err != nil {
		screen.Fini()
		return nil, err
	}

	analyserSrc := &gainStreamer{src: analyserTone, gain: gain}
	if err := eng.InitializeAudio(audio.NewStreamAnalyser(analyserSrc, 0)); err != nil {
		screen.Fini()
		return nil, err
	}

	a := &app{
		screen:     screen,
		eng:        eng,
		gain:       gain,
		speakerSrc: &gainStreamer{src: speakerTone, gain: gain},
		emotions:   eng.AvailableEmotions(),
		gestures:   eng.AvailableGestures(),
	}
	eng.Bus().On(event.TypeVolumeSpike, func(ev event.Event) {
		a.lastSpikeNano.Store(time.Now().UnixNano())
	})

	return a, nil
}

func (a *app) run() {
	a.eng.Start()
	defer a.eng.Destroy()
	defer a.screen.Fini()

	// Audible feedback is optional; the analyser works without a device
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err == nil {
		speaker.Play(a.speakerSrc)
	}

	quit := make(chan struct{})
	go a.inputLoop(quit)

	ticker := time.NewTicker(time.Second / renderFPS)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			a.draw()
		}
	}
}

func (a *app) inputLoop(quit chan struct{}) {
	for {
		ev := a.screen.PollEvent()
		switch tev := ev.(type) {
		case *tcell.EventResize:
			// Size is re-queried on the render goroutine each frame
			a.screen.Sync()

		case *tcell.EventKey:
			switch {
			case tev.Key() == tcell.KeyEscape || tev.Rune() == 'q':
				close(quit)
				return

			case tev.Rune() >= '1' && tev.Rune() <= '9':
				idx := int(tev.Rune() - '1')
				if idx < len(a.emotions) {
					a.eng.SetEmotion(a.emotions[idx], "", 800*time.Millisecond)
				}

			case tev.Rune() == 'g':
				a.eng.ExecuteGesture(a.gestures[a.gestureIdx])
				a.gestureIdx = (a.gestureIdx + 1) % len(a.gestures)

			case tev.Rune() == 'c':
				a.eng.Chain("bounce", "spin", "pulse")

			case tev.Rune() == ' ':
				// Loud moment: the gain burst becomes a volume spike which
				// auto-triggers the spike gesture
				a.gain.Set(burstGain)
				gain := a.gain
				time.AfterFunc(burstHold, func() { gain.Set(idleGain) })

			case tev.Rune() == 'p':
				a.paused = !a.paused
				if a.paused {
					a.eng.Pause()
				} else {
					a.eng.Resume()
				}
			}
		}
	}
}

func toColor(r, g, b uint8) tcell.Color {
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (a *app) draw() {
	snap := a.eng.Snapshot(a.particleBuf[:0])
	a.particleBuf = snap.Particles

	a.screen.Clear()
	w, h := a.screen.Size()

	cx := float64(w)/2 + snap.Transform.OffsetX*2
	cy := float64(h)/2 + snap.Transform.OffsetY

	pr, pg, pb := snap.Properties.PrimaryColor.RGB255()
	sr, sg, sb := snap.Properties.SecondaryColor.RGB255()
	coreStyle := tcell.StyleDefault.Foreground(toColor(pr, pg, pb))
	partStyle := tcell.StyleDefault.Foreground(toColor(sr, sg, sb))

	// Core: filled ellipse scaled by emotion size and gesture transform
	rx := coreRadiusX * snap.Properties.CoreSize * snap.Transform.Scale
	ry := rx / 2
	for dy := -int(ry) - 1; dy <= int(ry)+1; dy++ {
		for dx := -int(rx) - 1; dx <= int(rx)+1; dx++ {
			nx := float64(dx) / rx
			ny := float64(dy) / ry
			if nx*nx+ny*ny <= 1.0 {
				a.screen.SetContent(int(cx)+dx, int(cy)+dy, '█', nil, coreStyle)
			}
		}
	}

	// Particles, anchored at the core
	for _, p := range snap.Particles {
		x := int(cx + p.X*2)
		y := int(cy + p.Y)
		if x >= 0 && x < w && y >= 0 && y < h {
			a.screen.SetContent(x, y, particleGlyph, nil, partStyle)
		}
	}

	a.drawStatus(snap, w, h)
	a.screen.Show()
}

func (a *app) drawStatus(snap engine.Snapshot, w, h int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)

	line := fmt.Sprintf("emotion:%s gesture:%s fps:%.0f particles:%d step:%d  [1-9]emotion [g]esture [c]hain [space]spike [p]ause [q]uit",
		snap.State.Emotion, snap.State.Gesture, snap.Metrics.FPS,
		len(snap.Particles), snap.Metrics.PerformanceDegradation)

	if time.Since(time.Unix(0, a.lastSpikeNano.Load())) < 300*time.Millisecond {
		line += "  SPIKE"
	}

	for i, r := range line {
		if i >= w {
			break
		}
		a.screen.SetContent(i, h-1, r, nil, style)
	}
}

func main() {
	a, err := newApp()
	if err != nil {
		log.Printf("init failed: %v", err)
		os.Exit(1)
	}
	a.run()
}
