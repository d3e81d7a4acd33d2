package handlers

import (
	"errors"

	"red-reserve/internal/config"
	"red-reserve/internal/core/domain"
	"red-reserve/internal/core/services"
	"red-reserve/internal/pkg/password"
	"red-reserve/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HospitalHandler handles hospital endpoints
type HospitalHandler struct {
	authService      *services.AuthService
	hospitalService  *services.HospitalService
	lifecycleService *services.LifecycleService
	cfg              *config.Config
}

// NewHospitalHandler creates a new hospital handler
func NewHospitalHandler(
	authService *services.AuthService,
	hospitalService *services.HospitalService,
	lifecycleService *services.LifecycleService,
	cfg *config.Config,
) *HospitalHandler {
	return &HospitalHandler{
		authService:      authService,
		hospitalService:  hospitalService,
		lifecycleService: lifecycleService,
		cfg:              cfg,
	}
}

// HospitalSignupRequest represents hospital signup request body
type HospitalSignupRequest struct {
	Name     string `json:"name"`
	License  string `json:"license"`
	Contact  string `json:"contact"`
	Pincode  string `json:"pincode"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BloodRequestRequest represents a new blood request body
type BloodRequestRequest struct {
	BloodType     string   `json:"bloodtype"`
	EligibleTypes []string `json:"eligibletypes"`
	Units         int      `json:"units"`
	Contact       string   `json:"contact"`
}

// RequestIDRequest carries a request ID in the body
type RequestIDRequest struct {
	ID string `json:"id"`
}

// Signup handles hospital registration
// @Summary Register new hospital
// @Tags Hospital
// @Accept json
// @Produce json
// @Param body body HospitalSignupRequest true "Signup data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /hospital/signup [post]
func (h *HospitalHandler) Signup(c *fiber.Ctx) error {
	var req HospitalSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" ||
		req.Contact == "" || req.Pincode == "" || req.Address == "" {
		return response.BadRequest(c, "Missing required fields")
	}
	if !password.ValidatePassword(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	err := h.authService.HospitalSignup(c.Context(), &services.HospitalSignupInput{
		Name:     req.Name,
		License:  req.License,
		Contact:  req.Contact,
		Pincode:  req.Pincode,
		Address:  req.Address,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyUsed) {
			return response.Conflict(c, "Email already used")
		}
		return response.InternalServerError(c, "Failed to register hospital")
	}

	return response.Created(c, "Hospital registered successfully", nil)
}

// Login handles hospital login
// @Summary Login hospital
// @Tags Hospital
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /hospital/login [post]
func (h *HospitalHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	tokens, err := h.authService.HospitalLogin(c.Context(), &services.LoginInput{
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

// CreateRequest posts a new blood request
// @Summary Post a blood request
// @Tags Hospital
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body BloodRequestRequest true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /hospital/bloodrequest [post]
func (h *HospitalHandler) CreateRequest(c *fiber.Ctx) error {
	var req BloodRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BloodType == "" || req.Units <= 0 || len(req.EligibleTypes) == 0 || req.Contact == "" {
		return response.BadRequest(c, "Missing required fields")
	}

	request, err := h.hospitalService.CreateRequest(c.Context(), subjectID(c), &services.CreateRequestInput{
		BloodType:     req.BloodType,
		EligibleTypes: req.EligibleTypes,
		Units:         req.Units,
		Contact:       req.Contact,
	})
	if err != nil {
		if errors.Is(err, domain.ErrHospitalNotFound) {
			return response.NotFound(c, "Hospital not found")
		}
		return response.InternalServerError(c, "Failed to create request")
	}

	return response.Created(c, "Blood request posted", request)
}

// Fulfill marks a request as fulfilled (idempotent). Any hospital may
// fulfill any request; the distinct cross-hospital route shares this
// handler.
// @Summary Fulfill a blood request
// @Tags Hospital
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body RequestIDRequest true "Request ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /hospital/fulfillrequest [post]
func (h *HospitalHandler) Fulfill(c *fiber.Ctx) error {
	var req RequestIDRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ID == "" {
		return response.BadRequest(c, "id is required")
	}

	if err := h.lifecycleService.Fulfill(c.Context(), req.ID); err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			return response.NotFound(c, "Request not found")
		}
		return response.InternalServerError(c, "Failed to fulfill request")
	}

	return response.Success(c, "Request fulfilled", nil)
}

// OpenRequests lists the hospital's own open requests
// @Summary List own open requests
// @Tags Hospital
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /hospital/requests [get]
func (h *HospitalHandler) OpenRequests(c *fiber.Ctx) error {
	requests, err := h.hospitalService.OpenRequests(c.Context(), subjectID(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to load requests")
	}
	return response.Success(c, "", requests)
}

// History lists the hospital's fulfilled requests
// @Summary List own fulfilled requests
// @Tags Hospital
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /hospital/history [get]
func (h *HospitalHandler) History(c *fiber.Ctx) error {
	requests, err := h.hospitalService.FulfilledRequests(c.Context(), subjectID(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to load history")
	}
	return response.Success(c, "", requests)
}

// Others lists open requests from other hospitals
// @Summary List other hospitals' open requests
// @Tags Hospital
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /hospital/others [get]
func (h *HospitalHandler) Others(c *fiber.Ctx) error {
	requests, err := h.hospitalService.OthersOpenRequests(c.Context(), subjectID(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to load requests")
	}
	return response.Success(c, "", requests)
}

// Responders returns donor details for each response to a request
// @Summary List responses to a request
// @Tags Hospital
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body RequestIDRequest true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /hospital/responses [post]
func (h *HospitalHandler) Responders(c *fiber.Ctx) error {
	var req RequestIDRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ID == "" {
		return response.BadRequest(c, "id is required")
	}

	details, err := h.hospitalService.RequestResponders(c.Context(), req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			return response.NotFound(c, "Request not found")
		}
		return response.InternalServerError(c, "Failed to load responses")
	}

	return response.Success(c, "", details)
}

// Refresh handles token refresh
// @Summary Refresh tokens
// @Tags Hospital
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /hospital/refresh [post]
func (h *HospitalHandler) Refresh(c *fiber.Ctx) error {
	return refreshTokens(c, h.authService, h.cfg)
}

// Logout revokes the presented refresh token
// @Summary Logout
// @Tags Hospital
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /hospital/logout [post]
func (h *HospitalHandler) Logout(c *fiber.Ctx) error {
	return logout(c, h.authService, h.cfg)
}
