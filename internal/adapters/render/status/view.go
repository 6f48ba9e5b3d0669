package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/nodepay-cli/internal/application"
	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const scoreBarWidth = 24

type RenderOptions struct {
	StartedAt time.Time
	Now       time.Time
}

func renderReport(report application.RunReport, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Nodepay Run Report"),
		s.header.Render(summaryLine(report, opts)),
	}

	if len(report.Accounts) == 0 {
		lines = append(lines, s.empty.Render("No accounts ran."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, account := range report.Accounts {
		lines = append(lines, s.section.Render(renderAccount(account, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func summaryLine(report application.RunReport, opts RenderOptions) string {
	line := fmt.Sprintf("accounts: %d  resolved: %d  resolve failed: %d  aborted: %d  stopped: %d",
		report.Total, report.Resolved, report.ResolveFailed, report.Aborted, report.Stopped)
	if report.Panicked > 0 {
		line += fmt.Sprintf("  panicked: %d", report.Panicked)
	}
	if !opts.StartedAt.IsZero() && !opts.Now.IsZero() {
		line += "  ran for " + opts.Now.Sub(opts.StartedAt).Round(time.Second).String()
	}

	return line
}

func renderAccount(account application.AccountReport, s styles) string {
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.account.Render(accountTitle(account)),
			" ",
			stateBadge(account.State, s),
		),
		s.detail.Render(fmt.Sprintf("proxy: %s", account.Proxy)),
	}

	if account.Resolved {
		parts = append(parts, scoreLine(account.Score, s))
		parts = append(parts, s.detail.Render(fmt.Sprintf("ticks: %d  failures: %d", account.Ticks, account.Failures)))
	}

	parts = append(parts, outcomeLine(account, s))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func accountTitle(account application.AccountReport) string {
	name := strings.TrimSpace(account.Name)
	switch {
	case name != "" && account.AccountID != "":
		return fmt.Sprintf("%s: %s (%s)", account.Label, name, account.AccountID)
	case account.AccountID != "":
		return fmt.Sprintf("%s (%s)", account.Label, account.AccountID)
	default:
		return account.Label
	}
}

func stateBadge(state domain.ConnectionState, s styles) string {
	switch state {
	case domain.StateConnected:
		return s.connected.Render("[" + string(state) + "]")
	case domain.StateDisconnected:
		return s.lost.Render("[" + string(state) + "]")
	default:
		return s.idle.Render("[" + string(domain.StateNoneConnection) + "]")
	}
}

func scoreLine(score float64, s styles) string {
	percent := clampPercent(score)
	scoreStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.scoreKey.Render("ip score:"),
		" ",
		renderProgressBar(percent, scoreBarWidth, s),
		" ",
		scoreStyle.Render(fmt.Sprintf("%3.0f", percent)),
	)
}

func outcomeLine(account application.AccountReport, s styles) string {
	outcome := string(account.Outcome)
	if outcome == "" {
		outcome = "unknown"
	}
	if account.Reason != "" {
		outcome = fmt.Sprintf("%s (%s)", outcome, account.Reason)
	}

	line := "outcome: " + outcome
	switch account.Outcome {
	case application.OutcomeStopped:
		return s.detail.Render(line)
	default:
		return s.warning.Render(line)
	}
}

func renderAccounts(credentials []domain.Credential, s styles) string {
	lines := []string{
		s.title.Render("Nodepay Accounts"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(credentials))),
	}

	if len(credentials) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for i, credential := range credentials {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			s.account.Render(fmt.Sprintf("%2d. %s", i+1, credential.DisplayName())),
			"  ",
			s.detail.Render("token "+domain.TruncateToken(credential.Token)),
			"  ",
			s.detail.Render("proxy "+domain.ProxyHost(credential.Proxy)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderClaims(summary application.ClaimSummary, s styles) string {
	line := fmt.Sprintf("claimed: %d  not claimed: %d", summary.Claimed, summary.Failed)
	if summary.Failed > 0 {
		return lipgloss.JoinVertical(lipgloss.Left, s.title.Render("Daily Claim"), s.warning.Render(line))
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.title.Render("Daily Claim"), s.detail.Render(line))
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, faded at min and bright white at max.
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
