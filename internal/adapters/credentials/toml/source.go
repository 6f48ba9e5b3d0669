package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	accountsPathKey    = "accounts.path"
	accountsFileMode   = 0o600
	accountsDirMode    = 0o700
	accountsConfigDir  = ".config/np"
	accountsConfigFile = "accounts.toml"
	tempFilePattern    = ".accounts-*.toml.tmp"
)

var errEmptyToken = errors.New("account token is empty")

// Source keeps labelled accounts, each with an optional proxy, in a TOML
// file.
type Source struct {
	accountsPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CredentialSource = (*Source)(nil)

func NewSource(cfg *viper.Viper) (*Source, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	accountsPath := cfg.GetString(accountsPathKey)
	if accountsPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		accountsPath = filepath.Join(homeDir, accountsConfigDir, accountsConfigFile)
	}

	accountsPath, err := normalizeAccountsPath(accountsPath)
	if err != nil {
		return nil, err
	}

	return &Source{accountsPath: accountsPath, mu: lockForPath(accountsPath)}, nil
}

func (s *Source) Path() string {
	return s.accountsPath
}

// Load returns the stored accounts. A missing or empty file reports
// domain.ErrNoCredentials.
func (s *Source) Load(ctx context.Context) ([]domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return nil, err
	}

	credentials := make([]domain.Credential, 0, len(file.Accounts))
	seenProxies := make(map[string]string, len(file.Accounts))
	for i, entry := range file.Accounts {
		credential, err := fromSchema(entry)
		if err != nil {
			return nil, fmt.Errorf("account %d in %s: %w", i+1, s.accountsPath, err)
		}
		if credential.Proxy != "" {
			if owner, ok := seenProxies[credential.Proxy]; ok {
				return nil, fmt.Errorf("accounts %s and %s share proxy %s", owner, credential.DisplayName(), domain.ProxyHost(credential.Proxy))
			}
			seenProxies[credential.Proxy] = credential.DisplayName()
		}
		credentials = append(credentials, credential)
	}

	if len(credentials) == 0 {
		return nil, fmt.Errorf("accounts file %s: %w", s.accountsPath, domain.ErrNoCredentials)
	}

	return credentials, nil
}

// Save adds the account, or replaces the stored account with the same token.
// A proxy already used by another stored account is rejected.
func (s *Source) Save(ctx context.Context, credential domain.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded, err := toSchema(credential)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return err
	}

	if encoded.Proxy != "" {
		for _, entry := range file.Accounts {
			if entry.Token == encoded.Token {
				continue
			}
			if stored, err := fromSchema(entry); err == nil && stored.Proxy == encoded.Proxy {
				return fmt.Errorf("proxy %s is already used by account %s", domain.ProxyHost(encoded.Proxy), stored.DisplayName())
			}
		}
	}

	updated := false
	for i := range file.Accounts {
		if file.Accounts[i].Token == encoded.Token {
			file.Accounts[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Accounts = append(file.Accounts, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.writeSchema(file)
}

// Remove deletes the accounts whose label matches, or whose token matches
// when no label does. It reports whether anything was removed.
func (s *Source) Remove(ctx context.Context, labelOrToken string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := strings.TrimSpace(labelOrToken)
	if key == "" {
		return false, errors.New("account label or token is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return false, err
	}

	kept := file.Accounts[:0]
	for _, entry := range file.Accounts {
		if entry.Label == key || entry.Token == key {
			continue
		}
		kept = append(kept, entry)
	}
	if len(kept) == len(file.Accounts) {
		return false, nil
	}
	file.Accounts = kept

	return true, s.writeSchema(file)
}

func (s *Source) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(s.accountsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read accounts file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode accounts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (s *Source) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.accountsPath), accountsDirMode); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.accountsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp accounts file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp accounts file: %w", err)
	}

	if err := tempFile.Chmod(accountsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp accounts file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp accounts file: %w", err)
	}

	if err := os.Rename(tempName, s.accountsPath); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	cleanup = false
	return nil
}

func normalizeAccountsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve accounts path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(credential domain.Credential) (accountSchema, error) {
	token := strings.TrimSpace(credential.Token)
	if token == "" {
		return accountSchema{}, errEmptyToken
	}

	proxy := ""
	if strings.TrimSpace(credential.Proxy) != "" {
		parsed, err := domain.ParseProxy(credential.Proxy)
		if err != nil {
			return accountSchema{}, err
		}
		proxy = parsed
	}

	return accountSchema{
		Label: strings.TrimSpace(credential.Label),
		Token: token,
		Proxy: proxy,
	}, nil
}

func fromSchema(entry accountSchema) (domain.Credential, error) {
	token := strings.TrimSpace(entry.Token)
	if token == "" {
		return domain.Credential{}, errEmptyToken
	}

	credential := domain.Credential{Label: strings.TrimSpace(entry.Label), Token: token}
	if strings.TrimSpace(entry.Proxy) != "" {
		proxy, err := domain.ParseProxy(entry.Proxy)
		if err != nil {
			return domain.Credential{}, err
		}
		credential.Proxy = proxy
	}

	return credential, nil
}
