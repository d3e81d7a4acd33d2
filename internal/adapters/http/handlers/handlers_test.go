package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"red-reserve/internal/adapters/http/handlers"
	"red-reserve/internal/adapters/http/routes"
	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/config"
	"red-reserve/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelope mirrors response.Response with raw data for per-test decoding
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestApp() *fiber.App {
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}

	store := repositories.NewMemoryStore()
	authService := services.NewAuthService(store, cfg)
	donorService := services.NewDonorService(store)
	hospitalService := services.NewHospitalService(store)
	lifecycleService := services.NewLifecycleService(store)

	donorHandler := handlers.NewDonorHandler(authService, donorService, lifecycleService, cfg)
	hospitalHandler := handlers.NewHospitalHandler(authService, hospitalService, lifecycleService, cfg)

	app := fiber.New()
	api := app.Group("/api")
	routes.SetupDonorRoutes(api.Group("/donor"), donorHandler, cfg)
	routes.SetupHospitalRoutes(api.Group("/hospital"), hospitalHandler, cfg)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func loginToken(t *testing.T, app *fiber.App, path, email, pass string) string {
	t.Helper()

	status, env := doJSON(t, app, http.MethodPost, path, "", fiber.Map{
		"email": email, "password": pass,
	})
	require.Equal(t, http.StatusOK, status)

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	app := newTestApp()

	// Hospital and donor onboarding
	status, _ := doJSON(t, app, http.MethodPost, "/api/hospital/signup", "", fiber.Map{
		"name": "City General", "contact": "5550400", "pincode": "560006",
		"address": "1 Hospital Rd", "email": "city@example.org", "password": "ward-keeper",
	})
	require.Equal(t, http.StatusCreated, status)
	hospitalToken := loginToken(t, app, "/api/hospital/login", "city@example.org", "ward-keeper")

	status, _ = doJSON(t, app, http.MethodPost, "/api/donor/signup", "", fiber.Map{
		"email": "asha@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, status)
	donorToken := loginToken(t, app, "/api/donor/login", "asha@example.com", "correct-horse")

	// Protected routes reject missing and cross-role tokens
	status, env := doJSON(t, app, http.MethodGet, "/api/donor/requests", "", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, env.Success)

	status, _ = doJSON(t, app, http.MethodGet, "/api/hospital/requests", donorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Hospital posts a request
	status, env = doJSON(t, app, http.MethodPost, "/api/hospital/bloodrequest", hospitalToken, fiber.Map{
		"bloodtype": "O+", "eligibletypes": []string{"O+", "O-"},
		"units": 2, "contact": "5550400",
	})
	require.Equal(t, http.StatusCreated, status)

	var posted struct {
		ID           string `json:"id"`
		HospitalName string `json:"hospitalname"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &posted))
	require.NotEmpty(t, posted.ID)
	assert.Equal(t, "City General", posted.HospitalName)

	// Accepting without a profile is rejected
	status, _ = doJSON(t, app, http.MethodPost, "/api/donor/accept", donorToken, fiber.Map{
		"requestId": posted.ID,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/donor/createprofile", donorToken, fiber.Map{
		"firstname": "Asha", "lastname": "Rao", "phone": "5550100",
		"pincode": "560001", "gender": "female", "age": 29, "bloodgroup": "O+",
	})
	require.Equal(t, http.StatusOK, status)

	// The request shows up in the donor's matching feed
	status, env = doJSON(t, app, http.MethodGet, "/api/donor/requests", donorToken, nil)
	require.Equal(t, http.StatusOK, status)

	var feed []struct {
		ID           string `json:"id"`
		HospitalName string `json:"hospitalname"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, posted.ID, feed[0].ID)

	// First accept succeeds, the immediate retry hits the cooldown
	status, _ = doJSON(t, app, http.MethodPost, "/api/donor/accept", donorToken, fiber.Map{
		"requestId": posted.ID,
	})
	require.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, app, http.MethodPost, "/api/donor/accept", donorToken, fiber.Map{
		"requestId": posted.ID,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, env.Error, "In cooldown until")

	status, env = doJSON(t, app, http.MethodGet, "/api/donor/cooldown", donorToken, nil)
	require.Equal(t, http.StatusOK, status)
	var cooldown struct {
		Cooldown *string `json:"cooldown"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cooldown))
	assert.NotNil(t, cooldown.Cooldown)

	// Hospital sees the responder
	status, env = doJSON(t, app, http.MethodPost, "/api/hospital/responses", hospitalToken, fiber.Map{
		"id": posted.ID,
	})
	require.Equal(t, http.StatusOK, status)

	var responders []struct {
		Name      string `json:"name"`
		BloodType string `json:"bloodtype"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &responders))
	require.Len(t, responders, 1)
	assert.Equal(t, "Asha Rao", responders[0].Name)
	assert.Equal(t, "O+", responders[0].BloodType)

	// Fulfill is idempotent and moves the request into history
	for i := 0; i < 2; i++ {
		status, _ = doJSON(t, app, http.MethodPost, "/api/hospital/fulfillrequest", hospitalToken, fiber.Map{
			"id": posted.ID,
		})
		require.Equal(t, http.StatusOK, status)
	}

	status, env = doJSON(t, app, http.MethodGet, "/api/hospital/requests", hospitalToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	assert.Empty(t, feed)

	status, env = doJSON(t, app, http.MethodGet, "/api/hospital/history", hospitalToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, posted.ID, feed[0].ID)
}

func TestAcceptUnknownRequestOverHTTP(t *testing.T) {
	app := newTestApp()

	status, _ := doJSON(t, app, http.MethodPost, "/api/donor/signup", "", fiber.Map{
		"email": "ravi@example.com", "password": "long-enough",
	})
	require.Equal(t, http.StatusCreated, status)
	token := loginToken(t, app, "/api/donor/login", "ravi@example.com", "long-enough")

	status, _ = doJSON(t, app, http.MethodPost, "/api/donor/createprofile", token, fiber.Map{
		"firstname": "Ravi", "lastname": "Kumar", "phone": "5550200",
		"pincode": "560002", "gender": "male", "age": 34, "bloodgroup": "B-",
	})
	require.Equal(t, http.StatusOK, status)

	status, env := doJSON(t, app, http.MethodPost, "/api/donor/accept", token, fiber.Map{
		"requestId": "no-such-request",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)

	// The failed accept must not start a cooldown
	status, env = doJSON(t, app, http.MethodGet, "/api/donor/cooldown", token, nil)
	require.Equal(t, http.StatusOK, status)
	var cooldown struct {
		Cooldown *string `json:"cooldown"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cooldown))
	assert.Nil(t, cooldown.Cooldown)
}
