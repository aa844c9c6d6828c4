// Package credentials provides the credential sources used to build the
// Cost Explorer client.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/repository"
	"github.com/diillson/aws-cost-sentinel-go/internal/shared/types"
)

// Prompter asks the operator for a value.
type Prompter interface {
	Prompt(label string, secret bool) (string, error)
}

// FileStore keeps static access keys in a local JSON file. On first use, when
// the file does not exist, the keys are requested from the operator and saved.
type FileStore struct {
	path     string
	prompter Prompter
}

// NewFileStore cria um FileStore. prompter pode ser nil, caso em que a ausência
// do arquivo é um erro.
func NewFileStore(path string, prompter Prompter) *FileStore {
	if path == "" {
		path = types.DefaultCredentialsFile
	}
	return &FileStore{path: path, prompter: prompter}
}

var _ repository.CredentialProvider = (*FileStore)(nil)

// Path returns the location of the credentials file.
func (s *FileStore) Path() string {
	return s.path
}

// Credentials loads the stored keys, prompting for them when the file is missing.
func (s *FileStore) Credentials(ctx context.Context) (entity.Credentials, error) {
	creds, err := s.Load()
	if err == nil {
		return creds, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return entity.Credentials{}, err
	}
	if s.prompter == nil {
		return entity.Credentials{}, types.ErrMissingCredentials
	}

	return s.PromptAndSave(ctx)
}

// Load reads the credentials file.
func (s *FileStore) Load() (entity.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return entity.Credentials{}, err
	}

	var creds entity.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return entity.Credentials{}, fmt.Errorf("error parsing credentials file %s: %w", s.path, err)
	}
	if !creds.IsStatic() {
		return entity.Credentials{}, fmt.Errorf("credentials file %s: %w", s.path, types.ErrMissingCredentials)
	}

	return creds, nil
}

// Save writes the credentials file, readable only by the current user.
func (s *FileStore) Save(creds entity.Credentials) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("error creating credentials directory '%s': %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(creds, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("error writing credentials file: %w", err)
	}
	return nil
}

// PromptAndSave asks for both keys and stores them, replacing any existing file.
func (s *FileStore) PromptAndSave(ctx context.Context) (entity.Credentials, error) {
	if s.prompter == nil {
		return entity.Credentials{}, types.ErrMissingCredentials
	}
	if err := ctx.Err(); err != nil {
		return entity.Credentials{}, err
	}

	accessKey, err := s.prompter.Prompt("AWS Access Key ID", false)
	if err != nil {
		return entity.Credentials{}, fmt.Errorf("error reading access key: %w", err)
	}
	secretKey, err := s.prompter.Prompt("AWS Secret Access Key", true)
	if err != nil {
		return entity.Credentials{}, fmt.Errorf("error reading secret key: %w", err)
	}

	creds := entity.Credentials{
		AccessKeyID:     strings.TrimSpace(accessKey),
		SecretAccessKey: strings.TrimSpace(secretKey),
	}
	if !creds.IsStatic() {
		return entity.Credentials{}, types.ErrMissingCredentials
	}

	if err := s.Save(creds); err != nil {
		return entity.Credentials{}, err
	}
	return creds, nil
}

// ProfileProvider defers to the shared AWS configuration (environment,
// ~/.aws files, SSO, instance roles), optionally pinned to a named profile.
type ProfileProvider struct {
	profile string
}

// NewProfileProvider cria um ProfileProvider. Um perfil vazio usa a cadeia padrão.
func NewProfileProvider(profile string) *ProfileProvider {
	return &ProfileProvider{profile: profile}
}

var _ repository.CredentialProvider = (*ProfileProvider)(nil)

func (p *ProfileProvider) Credentials(ctx context.Context) (entity.Credentials, error) {
	return entity.Credentials{Profile: p.profile}, nil
}
