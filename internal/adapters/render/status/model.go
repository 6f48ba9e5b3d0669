package status

import (
	"errors"
	"io"

	"github.com/bnema/nodepay-cli/internal/application"
	"github.com/bnema/nodepay-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	view   func(styles) string
	styles styles
	output string
}

func newModel(view func(styles) string) model {
	return model{
		view:   view,
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = m.view(m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render draws the end-of-run report of every account.
func Render(report application.RunReport, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderReport(report, opts, s)
	})
}

// RenderAccounts draws the configured accounts without their tokens.
func RenderAccounts(credentials []domain.Credential) (string, error) {
	return run(func(s styles) string {
		return renderAccounts(credentials, s)
	})
}

// RenderClaims draws the outcome of one claim round.
func RenderClaims(summary application.ClaimSummary) (string, error) {
	return run(func(s styles) string {
		return renderClaims(summary, s)
	})
}

func run(view func(styles) string) (string, error) {
	p := tea.NewProgram(
		newModel(view),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
