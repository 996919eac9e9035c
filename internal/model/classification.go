package model

import "strings"

// Classification is the outcome of inspecting a user-agent string.
type Classification struct {
	IsBot    bool
	Identity string // bot identity label; empty for browser traffic
}

// BotKey identifies one bot instance: a crawler identity running on one
// source IP. Multiple machines under the same identity get distinct keys.
type BotKey struct {
	Identity string
	IP       string
}

// String renders the key in the "Identity|IP" form used by path exports.
func (k BotKey) String() string {
	return k.Identity + "|" + k.IP
}

// ParseBotKey splits an "Identity|IP" string back into a BotKey.
// Only the first separator splits; identity labels never contain '|'.
func ParseBotKey(s string) (BotKey, bool) {
	identity, ip, ok := strings.Cut(s, "|")
	if !ok {
		return BotKey{}, false
	}
	return BotKey{Identity: identity, IP: ip}, true
}
