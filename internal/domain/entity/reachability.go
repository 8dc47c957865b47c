package entity

type ReachabilityState string

const (
	ReachabilityStart              ReachabilityState = "start"
	ReachabilityAuthSwitchDetected ReachabilityState = "auth-switch-detected"
	ReachabilityOAuthInProgress    ReachabilityState = "oauth-in-progress"
	ReachabilityReady              ReachabilityState = "ready"
	ReachabilityReadyUnconfirmed   ReachabilityState = "ready-unconfirmed"
)

func (s ReachabilityState) Terminal() bool {
	return s == ReachabilityReady || s == ReachabilityReadyUnconfirmed
}
