package usage

import (
	"fmt"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
)

// RequestType categorizes what a caller is about to spend money on.
type RequestType string

const (
	RequestPremiumChat  RequestType = "premium-chat"
	RequestSpeech       RequestType = "speech-synthesis"
	RequestConversation RequestType = "conversation"
)

// Limits is the static per-deployment quota configuration. A single
// Limits value is injected into both the display path and the
// enforcement path so the two can never drift.
type Limits struct {
	DailyConversationTurns   int     `json:"daily_conversation_turns"`
	MonthlyPremiumModelCalls int     `json:"monthly_premium_model_calls"`
	MonthlyTTSUnits          int     `json:"monthly_tts_units"`
	MonthlyCostAlertUSD      float64 `json:"monthly_cost_alert_usd"`
}

func DefaultLimits() Limits {
	return Limits{
		DailyConversationTurns:   50,
		MonthlyPremiumModelCalls: 20,
		MonthlyTTSUnits:          10000,
		MonthlyCostAlertUSD:      10.00,
	}
}

type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	// OutcomeAllowedDegraded is the explicit fail-open branch: the ledger
	// could not be read, so the request proceeds unchecked.
	OutcomeAllowedDegraded    Outcome = "allowed_degraded"
	OutcomeDeniedWithFallback Outcome = "denied_with_fallback"
	OutcomeDeniedWithMessage  Outcome = "denied"
)

// Decision is the result of a quota check. Denials are normal structured
// data, never errors; Message is written to be shown to the user verbatim.
type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Fallback string  `json:"fallback,omitempty"`
	Message  string  `json:"message,omitempty"`
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed || d.Outcome == OutcomeAllowedDegraded
}

// Degraded is the decision used when the ledger is unavailable during a
// pre-request check. A monitoring outage must never block the product.
func Degraded() Decision {
	return Decision{Outcome: OutcomeAllowedDegraded}
}

// Evaluate applies the quota rules in a fixed order. The order is a
// deliberate tie-break: per-resource denials (premium, TTS) take
// precedence over the global daily cap, which is checked last and
// applies to every request type.
func Evaluate(requestType RequestType, monthly MonthlyStats, daily DailyStats, limits Limits) Decision {
	if requestType == RequestPremiumChat && monthly.PremiumModelCalls >= limits.MonthlyPremiumModelCalls {
		return Decision{
			Outcome:  OutcomeDeniedWithFallback,
			Fallback: ledger.ModelEfficientChat,
			Message:  "Monthly premium limit reached. Razia will use the efficient model for the rest of the month.",
		}
	}

	if requestType == RequestSpeech && monthly.TTSUnits >= limits.MonthlyTTSUnits {
		return Decision{
			Outcome: OutcomeDeniedWithMessage,
			Message: "Monthly audio limit reached. Audio responses will be back at the start of next month.",
		}
	}

	if daily.ConversationTurns >= limits.DailyConversationTurns {
		return Decision{
			Outcome: OutcomeDeniedWithMessage,
			Message: "Daily conversation limit reached. Come back tomorrow to keep practicing with Razia.",
		}
	}

	return Decision{Outcome: OutcomeAllowed}
}

// Warnings returns advisory messages for the user. Warnings never block
// a request and never influence Evaluate.
func Warnings(monthly MonthlyStats, limits Limits) []string {
	var warnings []string
	if monthly.TotalCost > limits.MonthlyCostAlertUSD {
		warnings = append(warnings, fmt.Sprintf(
			"Heavy usage this month ($%.2f). Some features may be limited to keep the service sustainable.",
			monthly.TotalCost,
		))
	}
	return warnings
}
