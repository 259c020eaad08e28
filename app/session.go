package app

import "github.com/CrestNiraj12/kabinka/domain"

// Session exposes the active account and cached server metadata.
type Session interface {
	// Current returns the active account, or false when browsing anonymously.
	Current() (domain.AccountSession, bool)

	// Domain returns the active account's domain or the anonymous default.
	Domain() string

	// InstanceInfo returns cached metadata for domain.
	InstanceInfo(domain string) (domain.Instance, bool)
}

// Preferences stores user-toggleable behavior flags.
type Preferences interface {
	Bool(key string, def bool) bool
	SetBool(key string, v bool) error
}
