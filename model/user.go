// model/user.go
package model

// UserRecord is one registered user in the membership registry. A user
// holds at most one wallet at a time; re-registering overwrites it.
type UserRecord struct {
	ID       string `json:"id"`
	Wallet   string `json:"wallet"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

// ShortWallet renders a wallet address in the trimmed first8...last8 form
// used in user-facing and admin-facing messages.
func ShortWallet(wallet string) string {
	if len(wallet) <= 16 {
		return wallet
	}
	return wallet[:8] + "..." + wallet[len(wallet)-8:]
}
