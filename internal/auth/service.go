package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mserebryaakov/delivery-panel/internal/kvstore"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*Token, error)
	UpdateCredentials(ctx context.Context, input CredentialsInput) error
	ParseToken(token string) (string, error)
}

type authService struct {
	kv       kvstore.Store
	secret   []byte
	ttl      time.Duration
	username string
	hash     []byte
	cost     int
	logger   *logrus.Entry
	now      func() time.Time
}

// NewService checks credentials in this order: the pair stored in the
// key-value store, then opts.Username/PasswordHash, then admin/admin123.
func NewService(kv kvstore.Store, opts Options, log *logrus.Entry) (AuthService, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}

	hash := []byte(opts.PasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(DefaultPassword), opts.Cost)
		if err != nil {
			return nil, fmt.Errorf("hash default password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}

	return &authService{
		kv:       kv,
		secret:   opts.Secret,
		ttl:      opts.TTL,
		username: opts.Username,
		hash:     hash,
		cost:     opts.Cost,
		logger:   log,
		now:      time.Now,
	}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*Token, error) {
	if err := s.check(ctx, username, password); err != nil {
		if errors.Is(err, errInvalidCredentials) {
			s.logger.Warnf("failed login for %q", username)
			return nil, unauthorized("usuário ou senha inválidos", err)
		}
		return nil, apperror.Server("falha ao verificar credenciais", err)
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperror.Server("falha ao gerar token", err)
	}

	s.logger.Infof("%s logged in", username)
	return &Token{Token: signed, ExpiresAt: expires, Username: username}, nil
}

func (s *authService) UpdateCredentials(ctx context.Context, input CredentialsInput) error {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return apperror.Validation("usuário é obrigatório")
	}
	if len(input.NewPassword) < 6 {
		return apperror.Validation("a senha deve ter pelo menos 6 caracteres")
	}

	current, hash, err := s.credentials(ctx)
	if err != nil {
		return apperror.Server("falha ao carregar credenciais", err)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(input.CurrentPassword)) != nil {
		return unauthorized("senha atual incorreta", errInvalidCredentials)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.cost)
	if err != nil {
		return apperror.Server("falha ao salvar credenciais", err)
	}
	if err := kvstore.Set(ctx, s.kv, keyUsername, username); err != nil {
		return apperror.Server("falha ao salvar credenciais", err)
	}
	if err := kvstore.Set(ctx, s.kv, keyPassword, string(newHash)); err != nil {
		return apperror.Server("falha ao salvar credenciais", err)
	}

	s.logger.Infof("credentials changed from %s to %s", current, username)
	return nil
}

// ParseToken returns the username the token was issued to.
func (s *authService) ParseToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", unauthorized("sessão inválida ou expirada", fmt.Errorf("%w: %v", errInvalidToken, err))
	}
	return claims.Subject, nil
}

func (s *authService) check(ctx context.Context, username, password string) error {
	valid, hash, err := s.credentials(ctx)
	if err != nil {
		return err
	}
	if username != valid || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return errInvalidCredentials
	}
	return nil
}

// credentials returns the stored pair when there is one. Each half falls
// back on its own, the way the panel always treated them.
func (s *authService) credentials(ctx context.Context) (string, []byte, error) {
	username := s.username
	hash := s.hash

	var stored string
	err := kvstore.Get(ctx, s.kv, keyUsername, &stored)
	switch {
	case err == nil && stored != "":
		username = stored
	case err != nil && !errors.Is(err, kvstore.ErrNotFound):
		return "", nil, err
	}

	stored = ""
	err = kvstore.Get(ctx, s.kv, keyPassword, &stored)
	switch {
	case err == nil && stored != "":
		hash = []byte(stored)
	case err != nil && !errors.Is(err, kvstore.ErrNotFound):
		return "", nil, err
	}

	return username, hash, nil
}

func unauthorized(message string, err error) *apperror.AppError {
	return apperror.NewError(apperror.UnauthorizedAppError, message, http.StatusUnauthorized, err)
}
