package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	apperrors "github.com/brightwash/catalog-server/internal/errors"
	"github.com/brightwash/catalog-server/internal/model"
	"github.com/brightwash/catalog-server/internal/repository"
	"github.com/brightwash/catalog-server/internal/token"
	"github.com/brightwash/catalog-server/internal/util"
)


type SetupInput struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string
	User  *model.AdminUser
}

type AuthService struct {
	admins repository.AdminUserRepository
	tokens *token.Manager
}

func NewAuthService(admins repository.AdminUserRepository, tokens *token.Manager) *AuthService {
	return &AuthService{admins: admins, tokens: tokens}
}

// dummyHash is compared against when the username is unknown so that both
// login failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := util.HashPassword("catalog-login-placeholder")
	return hash
})

// Setup creates the first admin account. It fails with SETUP_COMPLETED once
// any admin exists, before the input is looked at.
func (s *AuthService) Setup(ctx context.Context, in SetupInput) (*model.AdminUser, error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if count > 0 {
		return nil, apperrors.SetupCompleted()
	}

	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in); err != nil {
		if hasTag(err, "max") {
			return nil, apperrors.InvalidInput("username", "must be at most 255 characters")
		}
		return nil, apperrors.ValidationError("Username and password are required")
	}
	if len([]rune(in.Password)) < minPasswordLength {
		return nil, apperrors.ValidationError("Password must be at least 8 characters long")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperrors.ValidationError("Password must be at most 72 bytes long")
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password").WithCause(err)
	}

	user, err := s.admins.CreateFirst(ctx, in.Username, hash)
	if errors.Is(err, repository.ErrAdminExists) {
		return nil, apperrors.SetupCompleted()
	}
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return user, nil
}

// Login checks the credentials and issues a token. Unknown usernames and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, apperrors.ValidationError("Username and password are required")
	}

	user, err := s.admins.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		util.CheckPasswordHash(in.Password, dummyHash())
		return nil, apperrors.InvalidCredentials()
	}
	if !util.CheckPasswordHash(in.Password, user.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	signed, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token").WithCause(err)
	}
	return &LoginResult{Token: signed, User: user}, nil
}

// Verify validates a bearer token and returns its claims.
func (s *AuthService) Verify(tokenString string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if errors.Is(err, token.ErrExpiredToken) {
		return nil, apperrors.TokenExpired().WithCause(err)
	}
	if err != nil {
		return nil, apperrors.InvalidToken().WithCause(err)
	}
	return claims, nil
}
