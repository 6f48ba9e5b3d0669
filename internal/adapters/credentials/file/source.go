package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports"
	"go.uber.org/zap"
)

// Source reads one token per line and, optionally, one proxy per line.
// Tokens and proxies are paired by line position.
type Source struct {
	tokensPath  string
	proxiesPath string
	logger      *zap.Logger
}

var _ ports.CredentialSource = (*Source)(nil)

// NewSource builds a file source. An empty proxiesPath runs every account
// without a proxy.
func NewSource(tokensPath, proxiesPath string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Source{tokensPath: tokensPath, proxiesPath: proxiesPath, logger: logger}
}

func (s *Source) Load(ctx context.Context) ([]domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens, err := readLines(s.tokensPath)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("token file %s: %w", s.tokensPath, domain.ErrNoCredentials)
	}

	proxies, err := s.loadProxies()
	if err != nil {
		return nil, err
	}

	credentials := domain.PairCredentials(tokens, proxies)
	if len(proxies) > 0 && len(proxies) < len(credentials) {
		s.logger.Warn("fewer proxies than tokens, remaining accounts connect directly",
			zap.Int("tokens", len(credentials)),
			zap.Int("proxies", len(proxies)))
	}

	return credentials, nil
}

func (s *Source) loadProxies() ([]string, error) {
	if s.proxiesPath == "" {
		return nil, nil
	}

	lines, err := readLines(s.proxiesPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("proxy file not found, running without proxies", zap.String("path", s.proxiesPath))
			return nil, nil
		}
		return nil, fmt.Errorf("read proxy file: %w", err)
	}

	// Slots stay aligned with token lines: a skipped proxy line leaves its
	// account direct instead of moving later proxies up.
	proxies := make([]string, len(lines))
	firstLine := make(map[string]int, len(lines))
	for i, line := range lines {
		proxy, err := domain.ParseProxy(line)
		if err != nil {
			// The line may carry a password, so only its position is logged.
			s.logger.Warn("skipping invalid proxy line, its account connects directly",
				zap.Int("line", i+1), zap.Error(err))
			continue
		}
		if first, ok := firstLine[proxy]; ok {
			s.logger.Warn("skipping duplicate proxy line, its account connects directly",
				zap.Int("line", i+1), zap.Int("first_line", first))
			continue
		}
		firstLine[proxy] = i + 1
		proxies[i] = proxy
	}

	return proxies, nil
}

// readLines returns the trimmed non-empty lines of path, skipping # comments.
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	return lines, scanner.Err()
}
