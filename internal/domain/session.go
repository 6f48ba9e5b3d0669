package domain

type ConnectionState string

const (
	StateConnected      ConnectionState = "CONNECTED"
	StateDisconnected   ConnectionState = "DISCONNECTED"
	StateNoneConnection ConnectionState = "NONE_CONNECTION"
)

type Balance struct {
	CurrentAmount  float64
	TotalCollected float64
}

// AccountSession is the resolved identity of one account plus the heartbeat
// state owned by that account's loop. It is never shared between accounts.
type AccountSession struct {
	Token     string
	Label     string
	AccountID string
	Name      string
	// BrowserID is minted once at resolution and reused on every ping.
	BrowserID string
	Proxy     string

	State               ConnectionState
	ConsecutiveFailures int
	LastKnownScore      float64
	// ResolvedScore is the score reported by the session endpoint. It is
	// shown to the operator but does not seed heartbeat smoothing.
	ResolvedScore float64
	Balance       Balance
}

func NewAccountSession(credential Credential, accountID, browserID string) *AccountSession {
	return &AccountSession{
		Token:     credential.Token,
		Label:     credential.DisplayName(),
		AccountID: accountID,
		BrowserID: browserID,
		Proxy:     credential.Proxy,
		State:     StateNoneConnection,
	}
}

// MarkConnected records a validated success and returns the score to report.
func (s *AccountSession) MarkConnected(reported float64, smooth bool) float64 {
	score := SmoothScore(reported, s.LastKnownScore, smooth)
	if score > 0 {
		s.LastKnownScore = score
	}

	s.State = StateConnected
	s.ConsecutiveFailures = 0

	return score
}

// MarkDisconnected records one failed attempt and returns the new failure count.
func (s *AccountSession) MarkDisconnected() int {
	s.State = StateDisconnected
	s.ConsecutiveFailures++
	return s.ConsecutiveFailures
}

// Logout invalidates the session. A logged-out session keeps no account id.
func (s *AccountSession) Logout() {
	s.State = StateNoneConnection
	s.AccountID = ""
}

func (s *AccountSession) LoggedOut() bool {
	return s.State == StateNoneConnection && s.AccountID == ""
}
