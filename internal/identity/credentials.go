package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/pkg/config"
	"github.com/mvalledor/stocktrace-backend/pkg/db"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/security"
)

// CredentialProvider is the shipped Provider implementation: an Argon2id
// credential table in the same store. Swappable for a hosted identity service
// without touching the identity service itself.
type CredentialProvider struct {
	db          *gorm.DB
	passwordCfg config.PasswordConfig
}

func NewCredentialProvider(conn *gorm.DB, passwordCfg config.PasswordConfig) (*CredentialProvider, error) {
	if conn == nil {
		return nil, errors.New("database connection required")
	}
	return &CredentialProvider{db: conn, passwordCfg: passwordCfg}, nil
}

// CreateAccount stores a credential for the email and returns the account id.
func (p *CredentialProvider) CreateAccount(ctx context.Context, email, password string) (uuid.UUID, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return uuid.Nil, ErrBadCredentials
	}

	hash, err := security.HashPassword(password, p.passwordCfg)
	if err != nil {
		return uuid.Nil, err
	}

	credential := models.Credential{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: hash,
	}
	if err := p.db.WithContext(ctx).Create(&credential).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return uuid.Nil, ErrAccountExists
		}
		return uuid.Nil, err
	}
	return credential.ID, nil
}

// Authenticate verifies the email/password pair and returns the account id.
func (p *CredentialProvider) Authenticate(ctx context.Context, email, password string) (uuid.UUID, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return uuid.Nil, ErrBadCredentials
	}

	var credential models.Credential
	if err := p.db.WithContext(ctx).Where("email = ?", normalized).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrBadCredentials
		}
		return uuid.Nil, err
	}

	valid, err := security.VerifyPassword(password, credential.PasswordHash)
	if err != nil {
		return uuid.Nil, err
	}
	if !valid {
		return uuid.Nil, ErrBadCredentials
	}
	return credential.ID, nil
}

// EndSession is a no-op for the credential provider; session state lives in
// the session manager, which the identity service revokes separately.
func (p *CredentialProvider) EndSession(ctx context.Context, accountID uuid.UUID) error {
	return nil
}
