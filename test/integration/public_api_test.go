package integration

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"leave-auth-be/internal/bootstrap"
	"leave-auth-be/internal/config"
	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/server"
	"leave-auth-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelope mirrors the serverutils response wrapper for decoding.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func TestPublicRequestAPI(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	cfg := config.Load()

	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	srv := server.New(cfg, container)
	app := srv.GetApp()

	athleteName := "HTTP Athlete " + uuid.New().String()[:8]
	createBody := dto.CreateRequestRequest{
		AthleteName:       athleteName,
		Email:             "http-test@example.com",
		BirthDate:         "2011-05-20",
		Phone:             "11900003333",
		Category:          "Sub14",
		GuardianName:      "HTTP Guardian",
		GuardianPhone:     "11900004444",
		DepartureDate:     "2030-02-01",
		DepartureTime:     "08:00",
		ReturnDate:        "2030-02-02",
		ReturnTime:        "20:00",
		ReasonDestination: "HTTP integration trip",
	}

	var publicCode string

	t.Run("Create request", func(t *testing.T) {
		body, _ := json.Marshal(createBody)
		req := httptest.NewRequest("POST", "/api/public/requests", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)

		var result envelope[dto.CreateRequestResponse]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Success)
		assert.NotEmpty(t, result.Data.PublicCode)
		publicCode = result.Data.PublicCode
	})

	defer func() {
		if publicCode != "" {
			db.Exec("DELETE FROM authorization_requests WHERE public_code = ?", publicCode)
		}
	}()

	t.Run("Create request rejects bad dates", func(t *testing.T) {
		bad := createBody
		bad.ReturnDate = "2030-01-31"
		body, _ := json.Marshal(bad)
		req := httptest.NewRequest("POST", "/api/public/requests", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("Track by code", func(t *testing.T) {
		require.NotEmpty(t, publicCode)

		req := httptest.NewRequest("GET", "/api/public/requests/"+publicCode, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result envelope[dto.PublicRequestResponse]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, athleteName, result.Data.AthleteName)
		assert.Equal(t, "pending_supervisor", result.Data.GeneralStatus)
	})

	t.Run("Track unknown code", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/public/requests/AUTH-2026-000000-ZZZZ", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("Protected routes require auth", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/requests", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})
}
