package application

import "github.com/bnema/nodepay-cli/internal/domain"

type AccountOutcome string

const (
	OutcomeResolveFailed AccountOutcome = "resolve_failed"
	OutcomeAborted       AccountOutcome = "aborted"
	OutcomeStopped       AccountOutcome = "stopped"
	OutcomePanicked      AccountOutcome = "panicked"
)

type AccountReport struct {
	Label     string
	Proxy     string
	AccountID string
	Name      string
	Resolved  bool
	State     domain.ConnectionState
	Score     float64
	Failures  int
	Ticks     int
	Outcome   AccountOutcome
	Reason    string
}

type RunReport struct {
	Accounts      []AccountReport
	Total         int
	Resolved      int
	ResolveFailed int
	Aborted       int
	Stopped       int
	Panicked      int
}

func NewRunReport(accounts []AccountReport) RunReport {
	report := RunReport{Accounts: accounts, Total: len(accounts)}
	for _, account := range accounts {
		if account.Resolved {
			report.Resolved++
		}

		switch account.Outcome {
		case OutcomeResolveFailed:
			report.ResolveFailed++
		case OutcomeAborted:
			report.Aborted++
		case OutcomeStopped:
			report.Stopped++
		case OutcomePanicked:
			report.Panicked++
		}
	}

	return report
}
