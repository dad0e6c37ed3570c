// Package tutor holds the cost-shaping heuristics for Razia's responses:
// which chat tier a message deserves and whether it is worth synthesizing
// audio at all. These run before any quota check and are independent of
// quota state — a "no" here consumes nothing.
package tutor

import (
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
)

// Signals describe the conversational context of an incoming message.
type Signals struct {
	// WantsDetailed is set when the user explicitly asked for a detailed
	// or advanced explanation.
	WantsDetailed bool `json:"detailed"`
	// Complex is set by the client when the message needs deep reasoning
	// (long-form correction, nuanced grammar).
	Complex bool `json:"complex"`
}

// SelectModel picks a chat tier. The bias is toward the efficient tier;
// premium is reserved for explicit signals of need.
func SelectModel(sig Signals) string {
	if sig.WantsDetailed || sig.Complex {
		return ledger.ModelPremiumChat
	}
	return ledger.ModelEfficientChat
}

// TTSPreferences are the user's audio settings as sent by the client.
type TTSPreferences struct {
	AutoTTS     bool `json:"autoTTS"`
	OnDemandTTS bool `json:"onDemandTTS"`
}

// Message categories that always get audio: hearing these is the lesson.
var alwaysSynthesize = map[string]bool{
	"new_vocabulary_word":      true,
	"pronunciation_correction": true,
	"cultural_context":         true,
	"grammar_example":          true,
	"speaking_practice":        true,
}

// Message categories that never get audio, whatever the preferences.
var neverSynthesize = map[string]bool{
	"simple_acknowledgment": true,
	"repeated_content":      true,
	"system_message":        true,
	"error_message":         true,
}

// ShouldSynthesize decides whether a message gets audio. Teachable
// moments always do, low-value messages never do, and everything else
// follows the user's audio preferences (default off). The returned
// reason is reported to the client when synthesis is skipped.
func ShouldSynthesize(messageType string, prefs TTSPreferences) (bool, string) {
	if alwaysSynthesize[messageType] {
		return true, ""
	}
	if neverSynthesize[messageType] {
		return false, "message type " + messageType + " does not get audio"
	}
	if prefs.AutoTTS || prefs.OnDemandTTS {
		return true, ""
	}
	return false, "audio is off in user preferences"
}
