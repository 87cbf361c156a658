// model/decision.go
package model

// Policy is the process-wide gate configuration, loaded once at startup.
type Policy struct {
	TokenMint      string  `json:"token_mint"`
	MinTokenAmount float64 `json:"min_token_amount"`
	// GraceMargin widens the revocation side of the threshold: a user whose
	// balance sits in [MinTokenAmount-GraceMargin, MinTokenAmount) is still
	// denied but flagged WithinGrace, so scheduled sweeps do not alert on a
	// balance oscillating at the boundary. Zero disables the margin.
	GraceMargin float64 `json:"grace_margin"`
}

// AccessDecision is the outcome of one access evaluation. Decisions are
// transient; each evaluation is independent and supersedes prior ones.
type AccessDecision struct {
	Granted bool `json:"granted"`
	// Balance is meaningful only when HasBalance is true. No omitempty:
	// a zero balance with HasBalance set is a real answer and must stay
	// distinguishable from an absent one.
	Balance    float64 `json:"balance"`
	HasBalance bool    `json:"has_balance"`
	// Unavailable marks a soft failure: every balance source failed and no
	// cached value existed. Callers must not take destructive membership
	// action on it.
	Unavailable bool    `json:"unavailable,omitempty"`
	Shortfall   float64 `json:"shortfall,omitempty"`
	WithinGrace bool    `json:"within_grace,omitempty"`
	Rationale   string  `json:"rationale"`
}

// AccessEvent is the event-bus payload published after every evaluation
// that was triggered by a user command or a scheduled sweep.
type AccessEvent struct {
	User     UserRecord     `json:"user"`
	Decision AccessDecision `json:"decision"`
	Trigger  string         `json:"trigger"`
}

// Evaluation triggers carried on AccessEvent.
const (
	TriggerRegistration = "registration"
	TriggerVerify       = "verify"
	TriggerVIPRequest   = "vip_request"
	TriggerManualCheck  = "manual_check"
	TriggerUserSweep    = "user_sweep"
	TriggerChannelAudit = "channel_audit"
)
