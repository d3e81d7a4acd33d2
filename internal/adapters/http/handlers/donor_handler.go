package handlers

import (
	"errors"
	"time"

	"red-reserve/internal/config"
	"red-reserve/internal/core/domain"
	"red-reserve/internal/core/services"
	"red-reserve/internal/pkg/password"
	"red-reserve/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonorHandler handles donor endpoints
type DonorHandler struct {
	authService      *services.AuthService
	donorService     *services.DonorService
	lifecycleService *services.LifecycleService
	cfg              *config.Config
}

// NewDonorHandler creates a new donor handler
func NewDonorHandler(
	authService *services.AuthService,
	donorService *services.DonorService,
	lifecycleService *services.LifecycleService,
	cfg *config.Config,
) *DonorHandler {
	return &DonorHandler{
		authService:      authService,
		donorService:     donorService,
		lifecycleService: lifecycleService,
		cfg:              cfg,
	}
}

// SignupRequest represents signup request body
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AcceptRequest represents an accept request body
type AcceptRequest struct {
	RequestID string `json:"requestId"`
}

// Signup handles donor registration
// @Summary Register new donor
// @Tags Donor
// @Accept json
// @Produce json
// @Param body body SignupRequest true "Signup data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donor/signup [post]
func (h *DonorHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}
	if !password.ValidatePassword(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	err := h.authService.DonorSignup(c.Context(), &services.DonorSignupInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyUsed) {
			return response.Conflict(c, "Email already used")
		}
		return response.InternalServerError(c, "Failed to register donor")
	}

	return response.Created(c, "Donor registered successfully", nil)
}

// Login handles donor login
// @Summary Login donor
// @Tags Donor
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /donor/login [post]
func (h *DonorHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	tokens, err := h.authService.DonorLogin(c.Context(), &services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return response.Unauthorized(c, "Incorrect credentials")
		}
		return response.InternalServerError(c, "Failed to login")
	}

	setAuthCookies(c, h.cfg, tokens)
	return response.Success(c, "Login successful", fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// CreateProfile handles profile creation (full replace)
// @Summary Create donor profile
// @Tags Donor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donor/createprofile [post]
func (h *DonorHandler) CreateProfile(c *fiber.Ctx) error {
	var input services.CreateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.FirstName == "" || input.LastName == "" || input.Phone == "" ||
		input.Pincode == "" || input.Gender == "" || input.Age <= 0 || input.BloodGroup == "" {
		return response.BadRequest(c, "All profile fields are required")
	}

	err := h.donorService.CreateProfile(c.Context(), subjectID(c), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDonorNotFound):
			return response.NotFound(c, "Donor not found")
		case errors.Is(err, domain.ErrInvalidGender):
			return response.BadRequest(c, "Gender must be male or female")
		default:
			return response.InternalServerError(c, "Failed to save profile")
		}
	}

	return response.Success(c, "Profile saved", nil)
}

// UpdateProfile handles partial profile updates
// @Summary Update donor profile
// @Tags Donor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donor/updateprofile [post]
func (h *DonorHandler) UpdateProfile(c *fiber.Ctx) error {
	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.donorService.UpdateProfile(c.Context(), subjectID(c), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDonorNotFound):
			return response.NotFound(c, "Donor not found")
		case errors.Is(err, domain.ErrProfileNotFound):
			return response.NotFound(c, "Profile does not exist")
		case errors.Is(err, domain.ErrInvalidGender):
			return response.BadRequest(c, "Gender must be male or female")
		default:
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	return response.Success(c, "Profile updated", nil)
}

// GetProfile returns the donor's profile
// @Summary Get donor profile
// @Tags Donor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donor/profile [get]
func (h *DonorHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.donorService.GetProfile(c.Context(), subjectID(c))
	if err != nil {
		if errors.Is(err, domain.ErrDonorNotFound) || errors.Is(err, domain.ErrProfileNotFound) {
			return response.NotFound(c, "Profile does not exist")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}
	return response.Success(c, "", profile)
}

// MatchingRequests returns open requests compatible with the donor
// @Summary List matching open blood requests
// @Tags Donor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /donor/requests [get]
func (h *DonorHandler) MatchingRequests(c *fiber.Ctx) error {
	requests, err := h.donorService.MatchingRequests(c.Context(), subjectID(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDonorNotFound):
			return response.NotFound(c, "Donor not found")
		case errors.Is(err, domain.ErrProfileIncomplete):
			return response.BadRequest(c, "Profile incomplete")
		default:
			return response.InternalServerError(c, "Failed to load requests")
		}
	}
	return response.Success(c, "", requests)
}

// Accept handles a donor accepting a blood request
// @Summary Accept a blood request
// @Tags Donor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AcceptRequest true "Request ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donor/accept [post]
func (h *DonorHandler) Accept(c *fiber.Ctx) error {
	var req AcceptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RequestID == "" {
		return response.BadRequest(c, "requestId is required")
	}

	err := h.lifecycleService.Accept(c.Context(), subjectID(c), req.RequestID, time.Now())
	if err != nil {
		var cooldown *domain.CooldownActiveError
		switch {
		case errors.As(err, &cooldown):
			return response.Forbidden(c, "In cooldown until "+cooldown.Until.Format("Mon Jan 2 2006"))
		case errors.Is(err, domain.ErrDonorNotFound):
			return response.NotFound(c, "Donor not found")
		case errors.Is(err, domain.ErrRequestNotFound):
			return response.NotFound(c, "Request not found")
		case errors.Is(err, domain.ErrProfileIncomplete):
			return response.BadRequest(c, "Profile incomplete")
		default:
			return response.InternalServerError(c, "Failed to accept request")
		}
	}

	return response.Success(c, "Request accepted", nil)
}

// LastDonation returns the donor's most recent donation
// @Summary Get last donation
// @Tags Donor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donor/lastdonation [get]
func (h *DonorHandler) LastDonation(c *fiber.Ctx) error {
	info, err := h.donorService.LastDonation(c.Context(), subjectID(c))
	if err != nil {
		if errors.Is(err, domain.ErrDonorNotFound) || errors.Is(err, domain.ErrProfileNotFound) {
			return response.NotFound(c, "Donor not found or profile missing")
		}
		return response.InternalServerError(c, "Failed to load last donation")
	}
	if info.LastDonation == nil {
		return response.Success(c, "No donation record found", info)
	}
	return response.Success(c, "Last donation retrieved successfully", info)
}

// Cooldown returns the donor's cooldown end date, null when not in
// cooldown history
// @Summary Get cooldown end date
// @Tags Donor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /donor/cooldown [get]
func (h *DonorHandler) Cooldown(c *fiber.Ctx) error {
	end, err := h.donorService.CooldownEnd(c.Context(), subjectID(c))
	if err != nil {
		if errors.Is(err, domain.ErrDonorNotFound) {
			return response.NotFound(c, "Donor not found")
		}
		return response.InternalServerError(c, "Failed to load cooldown")
	}
	return response.Success(c, "", fiber.Map{"cooldown": end})
}

// Refresh handles token refresh
// @Summary Refresh tokens
// @Tags Donor
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /donor/refresh [post]
func (h *DonorHandler) Refresh(c *fiber.Ctx) error {
	return refreshTokens(c, h.authService, h.cfg)
}

// Logout revokes the presented refresh token
// @Summary Logout
// @Tags Donor
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /donor/logout [post]
func (h *DonorHandler) Logout(c *fiber.Ctx) error {
	return logout(c, h.authService, h.cfg)
}
