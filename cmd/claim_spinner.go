package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/nodepay-cli/internal/application"
	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type claimProgressMsg application.ClaimProgress

type claimRoundDoneMsg struct {
	summary application.ClaimSummary
}

// claimProgressModel shows a spinner with a running count while one claim
// round is in flight.
type claimProgressModel struct {
	spinner  spinner.Model
	total    int
	claimed  int
	last     application.ClaimProgress
	round    tea.Cmd
	summary  application.ClaimSummary
	finished bool

	countStyle lipgloss.Style
	okStyle    lipgloss.Style
	missStyle  lipgloss.Style
}

func newClaimProgressModel(total int, round tea.Cmd) claimProgressModel {
	return claimProgressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		total:      total,
		round:      round,
		countStyle: lipgloss.NewStyle().Bold(true),
		okStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		missStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

func (m claimProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.round)
}

func (m claimProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case claimProgressMsg:
		m.last = application.ClaimProgress(msg)
		if msg.Claimed {
			m.claimed++
		}
		return m, nil
	case claimRoundDoneMsg:
		m.finished = true
		m.summary = msg.summary
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m claimProgressModel) View() string {
	if m.finished {
		return ""
	}

	line := fmt.Sprintf("%s Claiming rewards %s, %d claimed",
		m.spinner.View(),
		m.countStyle.Render(fmt.Sprintf("%d/%d", m.last.Done, m.total)),
		m.claimed)

	if m.last.Account != "" {
		result := m.okStyle.Render("claimed")
		if !m.last.Claimed {
			result = m.missStyle.Render("not claimed")
		}
		line += fmt.Sprintf("  (%s: %s)", m.last.Account, result)
	}

	return line
}

// runClaimRound claims for every account while drawing progress to output.
func runClaimRound(ctx context.Context, output io.Writer, claims *application.ClaimService, credentials []domain.Credential) (application.ClaimSummary, error) {
	var p *tea.Program
	round := func() tea.Msg {
		summary := claims.WithProgress(func(progress application.ClaimProgress) {
			p.Send(claimProgressMsg(progress))
		}).ClaimAll(ctx, credentials)
		return claimRoundDoneMsg{summary: summary}
	}

	p = tea.NewProgram(
		newClaimProgressModel(len(credentials), round),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return application.ClaimSummary{}, err
	}

	result, ok := finalModel.(claimProgressModel)
	if !ok {
		return application.ClaimSummary{}, fmt.Errorf("unexpected final claim model type %T", finalModel)
	}

	return result.summary, nil
}
