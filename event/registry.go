package event

import (
	"reflect"
)

var (
	nameToType    = make(map[string]Type)
	typeToName    = make(map[Type]string)
	typeToPayload = make(map[Type]reflect.Type)
	registryInit  = false
)

// RegisterType maps a string name to a Type and its payload struct type
// payloadInstance is a pointer to the payload struct, or nil for payload-less
// events
func RegisterType(name string, t Type, payloadInstance any) {
	nameToType[name] = t
	typeToName[t] = name
	if payloadInstance != nil {
		rt := reflect.TypeOf(payloadInstance)
		if rt.Kind() == reflect.Ptr {
			rt = rt.Elem()
		}
		typeToPayload[t] = rt
	}
}

// TypeByName returns the Type for a given name
func TypeByName(name string) (Type, bool) {
	t, ok := nameToType[name]
	return t, ok
}

// Name returns the string name for a Type
func Name(t Type) string {
	return typeToName[t]
}

// NewPayloadStruct returns a pointer to a zero-value payload struct for the
// type, or nil if the event carries no payload
func NewPayloadStruct(t Type) any {
	rt, ok := typeToPayload[t]
	if !ok {
		return nil
	}
	return reflect.New(rt).Interface()
}

// InitRegistry populates the registry; called by NewBus, idempotent
func InitRegistry() {
	if registryInit {
		return
	}
	registryInit = true

	RegisterType("emotionChanged", TypeEmotionChanged, &EmotionChangedPayload{})
	RegisterType("gestureStarted", TypeGestureStarted, &GesturePayload{})
	RegisterType("gestureCompleted", TypeGestureCompleted, &GesturePayload{})
	RegisterType("gestureChainStarted", TypeGestureChainStarted, &GestureChainPayload{})
	RegisterType("audioLevelUpdate", TypeAudioLevelUpdate, &AudioLevelPayload{})
	RegisterType("volumeSpike", TypeVolumeSpike, &VolumeSpikePayload{})
	RegisterType("beatDetected", TypeBeatDetected, &BeatPayload{})
	RegisterType("audioProcessingError", TypeAudioError, &AudioErrorPayload{})
	RegisterType("performanceWarning", TypePerformanceWarning, &PerformancePayload{})
	RegisterType("performanceRecovered", TypePerformanceRecovered, &PerformancePayload{})
	RegisterType("callbackError", TypeCallbackError, &CallbackErrorPayload{})
}
