// Package scopes names the permissions carried in buyer access tokens.
package scopes

const (
	ChatRead  = "chat:read"
	ChatWrite = "chat:write"
	ChatAll   = "chat:*"
)

// Descriptions documents each scope for token issuers.
var Descriptions = map[string]string{
	ChatRead:  "Read conversation history and the active panel",
	ChatWrite: "Send messages to the shopping assistant and close panels",
}

// BuyerDefault is granted to every signed-in buyer.
var BuyerDefault = []string{ChatRead, ChatWrite}
