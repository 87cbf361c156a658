// audit/model.go
package audit

import "time"

type DecisionLog struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Wallet    string    `json:"wallet,omitempty"`
	Trigger   string    `json:"trigger"`
	Granted   bool      `json:"granted"`
	Balance   float64   `json:"balance,omitempty"`
	Rationale string    `json:"rationale"`
}
