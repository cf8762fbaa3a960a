package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key")
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID) string {
	t.Helper()
	token, err := jwtSvc.GenerateAccessToken(userID, 15*time.Minute)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app http.Handler, jwtSvc *services.JWTService, userID uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(t, jwtSvc, userID))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)
	return rec
}

func activeCapsule(userA, userB uuid.UUID) *models.Capsule {
	joined := time.Now()
	return &models.Capsule{
		ID:         uuid.New(),
		UserA:      userA,
		UserB:      &userB,
		Status:     models.CapsuleStatusActive,
		InviteCode: "ABCD2345",
		CreatedAt:  joined.Add(-time.Hour),
		JoinedAt:   &joined,
		UpdatedAt:  joined,
	}
}
