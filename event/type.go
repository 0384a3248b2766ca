package event

import (
	"time"
)

// Type identifies an engine event
type Type int

const (
	// TypeEmotionChanged signals emotion transition start
	// Trigger: emotion.Machine.SetEmotion
	// Consumer: renderer, particle tinting | Payload: *EmotionChangedPayload
	TypeEmotionChanged Type = iota

	// TypeGestureStarted signals an active gesture beginning
	// Trigger: gesture.System on dequeue/execute
	// Consumer: renderer, emotion.Machine (state mirror) | Payload: *GesturePayload
	TypeGestureStarted

	// TypeGestureCompleted signals active gesture completion
	// Trigger: gesture.System when progress has held 1.0 for a full tick
	// Consumer: emotion.Machine (state mirror) | Payload: *GesturePayload
	TypeGestureCompleted

	// TypeGestureChainStarted signals a validated chain being queued
	// Trigger: gesture.System.Chain
	// Consumer: renderer | Payload: *GestureChainPayload
	TypeGestureChainStarted

	// TypeAudioLevelUpdate carries the smoothed audio level each update
	// Trigger: audio.LevelProcessor | Payload: *AudioLevelPayload
	TypeAudioLevelUpdate

	// TypeVolumeSpike signals a debounced level excursion
	// Trigger: audio.LevelProcessor
	// Consumer: gesture auto-trigger, renderer | Payload: *VolumeSpikePayload
	TypeVolumeSpike

	// TypeBeatDetected carries a BPM estimate from spike regularity
	// Trigger: audio.LevelProcessor | Payload: *BeatPayload
	TypeBeatDetected

	// TypeAudioError signals an analyser failure; audio features degrade,
	// engine continues
	// Trigger: audio.LevelProcessor | Payload: *AudioErrorPayload
	TypeAudioError

	// TypePerformanceWarning signals one quality degradation step
	// Trigger: engine.Monitor | Payload: *PerformancePayload
	TypePerformanceWarning

	// TypePerformanceRecovered signals one quality recovery step
	// Trigger: engine.Monitor | Payload: *PerformancePayload
	TypePerformanceRecovered

	// TypeCallbackError signals a registration disabled after a panic or
	// returned error inside the frame loop
	// Trigger: engine.Scheduler | Payload: *CallbackErrorPayload
	TypeCallbackError

	// typeCount marks the end of the enum; keep last
	typeCount
)

// Event is a single dispatched event with metadata
type Event struct {
	Type      Type
	Payload   any
	Timestamp time.Time
}
