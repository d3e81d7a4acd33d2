package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"red-reserve/internal/adapters/persistence/models"
	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/config"
	"red-reserve/internal/pkg/jwt"
	"red-reserve/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyUsed   = errors.New("email already used")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
)

// AuthService handles signup, login and token lifecycle for donors and
// hospitals
type AuthService struct {
	store repositories.Store
	cfg   *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(store repositories.Store, cfg *config.Config) *AuthService {
	return &AuthService{store: store, cfg: cfg}
}

// DonorSignupInput represents donor signup input
type DonorSignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// HospitalSignupInput represents hospital signup input
type HospitalSignupInput struct {
	Name     string `json:"name" validate:"required"`
	License  string `json:"license"`
	Contact  string `json:"contact" validate:"required"`
	Pincode  string `json:"pincode" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput represents login input for either actor
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// DonorSignup registers a new donor. Emails are stored lowercased so
// uniqueness is case-insensitive.
func (s *AuthService) DonorSignup(ctx context.Context, input *DonorSignupInput) error {
	email := normalizeEmail(input.Email)

	exists, err := s.store.Donors().ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailAlreadyUsed
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return err
	}

	donor := &models.Donor{
		Email:    email,
		Password: hashed,
	}
	if err := s.store.Donors().Create(ctx, donor); err != nil {
		return err
	}

	log.Printf("✅ Donor registered: %s", donor.Email)
	return nil
}

// DonorLogin authenticates a donor and issues a token pair
func (s *AuthService) DonorLogin(ctx context.Context, input *LoginInput) (*TokenPair, error) {
	donor, err := s.store.Donors().GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, donor.Password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, donor.ID, donor.Email, jwt.RoleDonor, "")
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Donor logged in: %s", donor.Email)
	return tokens, nil
}

// HospitalSignup registers a new hospital
func (s *AuthService) HospitalSignup(ctx context.Context, input *HospitalSignupInput) error {
	email := normalizeEmail(input.Email)

	exists, err := s.store.Hospitals().ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailAlreadyUsed
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return err
	}

	hospital := &models.Hospital{
		Name:     strings.TrimSpace(input.Name),
		License:  strings.TrimSpace(input.License),
		Contact:  strings.TrimSpace(input.Contact),
		Pincode:  strings.TrimSpace(input.Pincode),
		Address:  strings.TrimSpace(input.Address),
		Email:    email,
		Password: hashed,
	}
	if err := s.store.Hospitals().Create(ctx, hospital); err != nil {
		return err
	}

	log.Printf("✅ Hospital registered: %s (%s)", hospital.Name, hospital.Email)
	return nil
}

// HospitalLogin authenticates a hospital and issues a token pair
func (s *AuthService) HospitalLogin(ctx context.Context, input *LoginInput) (*TokenPair, error) {
	hospital, err := s.store.Hospitals().GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, hospital.Password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, hospital.ID, hospital.Email, jwt.RoleHospital, hospital.Name)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Hospital logged in: %s", hospital.Email)
	return tokens, nil
}

// RefreshToken rotates a refresh token and issues a fresh pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	tokenHash := password.HashToken(refreshToken)
	stored, err := s.store.RefreshTokens().GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if stored.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if stored.IsExpired() {
		return nil, ErrTokenExpired
	}

	var email, hospitalName string
	switch claims.Role {
	case jwt.RoleDonor:
		donor, err := s.store.Donors().GetByID(ctx, claims.SubjectID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		email = donor.Email
	case jwt.RoleHospital:
		hospital, err := s.store.Hospitals().GetByID(ctx, claims.SubjectID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		email = hospital.Email
		hospitalName = hospital.Name
	default:
		return nil, ErrInvalidToken
	}

	// Token rotation: the old refresh token is dead once used
	if err := s.store.RefreshTokens().Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, claims.SubjectID, email, claims.Role, hospitalName)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for %s %s", claims.Role, email)
	return tokens, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.store.RefreshTokens().RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}
	log.Printf("✅ Session logged out")
	return nil
}

// LogoutAll revokes every refresh token for a donor or hospital
func (s *AuthService) LogoutAll(ctx context.Context, role string, subjectID uint) error {
	if err := s.store.RefreshTokens().RevokeAllBySubject(ctx, role, subjectID); err != nil {
		return err
	}
	log.Printf("✅ All sessions revoked for %s ID %d", role, subjectID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// issueTokens generates and stores a token pair for a subject
func (s *AuthService) issueTokens(ctx context.Context, subjectID uint, email, role, hospitalName string) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		subjectID, email, role, hospitalName,
		s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		subjectID, role, uuid.New().String(),
		s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	token := &models.RefreshToken{
		SubjectType: role,
		SubjectID:   subjectID,
		TokenHash:   password.HashToken(refreshToken),
		ExpiresAt:   jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	if err := s.store.RefreshTokens().Create(ctx, token); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
