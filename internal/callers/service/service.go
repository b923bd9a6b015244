package service

import (
	"context"
	"errors"
	"time"

	"prospect_backend/internal/callers/password"
	"prospect_backend/internal/callers/repository"
	"prospect_backend/internal/callers/token"
	"prospect_backend/internal/callers/transport"
	"prospect_backend/platform/apperr"
	"prospect_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

const accessTokenType = "access"

type Service struct {
	repo *repository.Repository
	cfg  config.AuthConfig
}

func New(repo *repository.Repository, cfg config.AuthConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (transport.TokenPairResponse, error) {
	caller, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return transport.TokenPairResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(caller.PasswordHash, plainPassword); err != nil {
		return transport.TokenPairResponse{}, apperr.Unauthorized("invalid credentials")
	}
	return s.issueTokens(ctx, caller)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (transport.TokenPairResponse, error) {
	hash := token.HashSHA256(refreshToken)
	callerID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return transport.TokenPairResponse{}, apperr.Unauthorized("token invalid")
	}
	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return transport.TokenPairResponse{}, apperr.Unauthorized("token expired")
	}

	// Rotate: the presented token is single use.
	_ = s.repo.RevokeRefreshToken(ctx, hash)

	caller, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return transport.TokenPairResponse{}, apperr.Unauthorized("token invalid")
	}
	return s.issueTokens(ctx, caller)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// Create registers an operator account. Admin only; the route enforces it.
func (s *Service) Create(ctx context.Context, req transport.CreateCallerRequest) (transport.CallerResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.CallerResponse{}, err
	}

	caller, err := s.repo.Create(ctx, repository.CreateParams{
		Email:           req.Email,
		Name:            req.Name,
		PasswordHash:    hash,
		Roles:           req.Roles,
		BaseLatitude:    req.BaseLatitude,
		BaseLongitude:   req.BaseLongitude,
		DefaultRadiusKm: req.DefaultRadiusKm,
	})
	if err != nil {
		return transport.CallerResponse{}, err
	}
	return toResponse(caller), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CallerResponse, error) {
	caller, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CallerResponse{}, apperr.NotFound("caller not found")
		}
		return transport.CallerResponse{}, err
	}
	return toResponse(caller), nil
}

func (s *Service) List(ctx context.Context) ([]transport.CallerResponse, error) {
	callers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.CallerResponse, 0, len(callers))
	for _, caller := range callers {
		responses = append(responses, toResponse(caller))
	}
	return responses, nil
}

// UpdateTerritory moves the caller's home base and default radius.
func (s *Service) UpdateTerritory(ctx context.Context, id uuid.UUID, req transport.UpdateTerritoryRequest) (transport.CallerResponse, error) {
	caller, err := s.repo.UpdateTerritory(ctx, id, req.BaseLatitude, req.BaseLongitude, req.DefaultRadiusKm)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CallerResponse{}, apperr.NotFound("caller not found")
		}
		return transport.CallerResponse{}, err
	}
	return toResponse(caller), nil
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	caller, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFound("caller not found")
	}
	if err := password.Compare(caller.PasswordHash, current); err != nil {
		return apperr.Unauthorized("invalid credentials")
	}

	hash, err := password.Hash(next)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	return s.repo.RevokeAllRefreshTokens(ctx, id)
}

func (s *Service) issueTokens(ctx context.Context, caller repository.Caller) (transport.TokenPairResponse, error) {
	accessToken, err := s.signJWT(caller.ID, caller.Roles)
	if err != nil {
		return transport.TokenPairResponse{}, err
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return transport.TokenPairResponse{}, err
	}

	hash := token.HashSHA256(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, caller.ID, hash, expiresAt); err != nil {
		return transport.TokenPairResponse{}, err
	}

	return transport.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Caller:       toResponse(caller),
	}, nil
}

func (s *Service) signJWT(callerID uuid.UUID, roles []string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   callerID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toResponse(c repository.Caller) transport.CallerResponse {
	return transport.CallerResponse{
		ID:              c.ID,
		Email:           c.Email,
		Name:            c.Name,
		Roles:           c.Roles,
		BaseLatitude:    c.BaseLatitude,
		BaseLongitude:   c.BaseLongitude,
		DefaultRadiusKm: c.DefaultRadiusKm,
		CreatedAt:       c.CreatedAt,
	}
}
