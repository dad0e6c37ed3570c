package tutor

import (
	"testing"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
)

func TestSelectModel_DefaultsToEfficient(t *testing.T) {
	if got := SelectModel(Signals{}); got != ledger.ModelEfficientChat {
		t.Errorf("Expected efficient tier by default, got %s", got)
	}
}

func TestSelectModel_EscalatesOnSignal(t *testing.T) {
	if got := SelectModel(Signals{WantsDetailed: true}); got != ledger.ModelPremiumChat {
		t.Errorf("Expected premium tier for detailed request, got %s", got)
	}
	if got := SelectModel(Signals{Complex: true}); got != ledger.ModelPremiumChat {
		t.Errorf("Expected premium tier for complex message, got %s", got)
	}
}

func TestShouldSynthesize_TeachableMoments(t *testing.T) {
	off := TTSPreferences{}
	for _, mt := range []string{
		"new_vocabulary_word",
		"pronunciation_correction",
		"cultural_context",
		"grammar_example",
		"speaking_practice",
	} {
		ok, _ := ShouldSynthesize(mt, off)
		if !ok {
			t.Errorf("Expected %s to always synthesize", mt)
		}
	}
}

func TestShouldSynthesize_LowValueNever(t *testing.T) {
	on := TTSPreferences{AutoTTS: true, OnDemandTTS: true}
	for _, mt := range []string{
		"simple_acknowledgment",
		"repeated_content",
		"system_message",
		"error_message",
	} {
		ok, reason := ShouldSynthesize(mt, on)
		if ok {
			t.Errorf("Expected %s to never synthesize", mt)
		}
		if reason == "" {
			t.Errorf("Expected a reason for skipping %s", mt)
		}
	}
}

func TestShouldSynthesize_GeneralFollowsPreferences(t *testing.T) {
	if ok, reason := ShouldSynthesize("main_response", TTSPreferences{}); ok || reason == "" {
		t.Errorf("Expected main_response with no prefs to skip with a reason, got ok=%v reason=%q", ok, reason)
	}
	if ok, _ := ShouldSynthesize("main_response", TTSPreferences{AutoTTS: true}); !ok {
		t.Errorf("Expected autoTTS to enable synthesis")
	}
	if ok, _ := ShouldSynthesize("main_response", TTSPreferences{OnDemandTTS: true}); !ok {
		t.Errorf("Expected onDemandTTS to enable synthesis")
	}
	// Unknown categories are treated like general responses.
	if ok, _ := ShouldSynthesize("something_new", TTSPreferences{}); ok {
		t.Errorf("Expected unknown category with no prefs to skip")
	}
}
