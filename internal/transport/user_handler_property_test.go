package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/testutil"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func newUserHandler(t *testing.T) (*UserHandler, service.UserService) {
	db := testutil.NewDB(t)
	userService := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		config.JWTConfig{Secret: "test-secret"},
	)
	return NewUserHandler(userService, zap.NewNop()), userService
}

func postJSON(handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func fewerRuns() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	return parameters
}

// Feature: storefront, Property 3: Invalid registration data is rejected
func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := gopter.NewProperties(fewerRuns())

	properties.Property("registration with invalid data returns validation errors", prop.ForAll(
		func(invalidCase int) bool {
			handler, _ := newUserHandler(t)

			var reqBody RegisterRequest
			switch invalidCase % 4 {
			case 0:
				reqBody = RegisterRequest{Email: "", Password: "ValidPass123", Name: "John"}
			case 1:
				reqBody = RegisterRequest{Email: "not-an-email", Password: "ValidPass123", Name: "John"}
			case 2:
				reqBody = RegisterRequest{Email: "test@example.com", Password: "short", Name: "John"}
			case 3:
				reqBody = RegisterRequest{Email: "test@example.com", Name: "John"}
			}

			w := postJSON(handler.Register, "/api/users/register", reqBody)
			if w.Code != http.StatusBadRequest {
				t.Logf("FAIL: Expected 400 status code, got %d", w.Code)
				return false
			}

			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("FAIL: Could not decode error response: %v", err)
				return false
			}
			_, exists := response["error"]
			return exists
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 2: Successful registration returns profile data
func TestProperty_SuccessfulRegistrationReturnsProfileData(t *testing.T) {
	properties := gopter.NewProperties(fewerRuns())

	properties.Property("successful registration returns a CUSTOMER profile", prop.ForAll(
		func(email string, password string, name string) bool {
			handler, _ := newUserHandler(t)

			w := postJSON(handler.Register, "/api/users/register", RegisterRequest{Email: email, Password: password, Name: name})
			if w.Code != http.StatusCreated {
				t.Logf("FAIL: Expected 201 status code, got %d: %s", w.Code, w.Body.String())
				return false
			}

			var profile UserProfile
			if err := json.NewDecoder(w.Body).Decode(&profile); err != nil {
				t.Logf("FAIL: Could not decode response: %v", err)
				return false
			}
			if _, err := uuid.Parse(profile.ID); err != nil {
				t.Logf("FAIL: Profile ID is not a valid UUID: %v", err)
				return false
			}
			return profile.Email == email && profile.Name == name && profile.Role == domain.RoleCustomer
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 4: Valid login returns both tokens
func TestProperty_ValidLoginReturnsBothTokens(t *testing.T) {
	properties := gopter.NewProperties(fewerRuns())

	properties.Property("valid login returns access token and refresh token", prop.ForAll(
		func(email string, password string) bool {
			handler, userService := newUserHandler(t)

			if _, err := userService.Register(context.Background(), email, password, "Test"); err != nil {
				t.Logf("FAIL: Registration failed: %v", err)
				return false
			}

			w := postJSON(handler.Login, "/api/users/login", LoginRequest{Email: email, Password: password})
			if w.Code != http.StatusOK {
				t.Logf("FAIL: Expected 200 status code, got %d", w.Code)
				return false
			}

			var loginResp LoginResponse
			if err := json.NewDecoder(w.Body).Decode(&loginResp); err != nil {
				t.Logf("FAIL: Could not decode login response: %v", err)
				return false
			}
			if loginResp.AccessToken == "" || loginResp.RefreshToken == "" {
				t.Logf("FAIL: Missing token in login response")
				return false
			}
			if loginResp.User.Email != email {
				t.Logf("FAIL: User email mismatch")
				return false
			}

			claims, err := userService.ValidateToken(loginResp.AccessToken)
			if err != nil {
				t.Logf("FAIL: Access token validation failed: %v", err)
				return false
			}
			if claims.UserID.String() != loginResp.User.ID {
				t.Logf("FAIL: Token user ID doesn't match profile ID")
				return false
			}

			newAccessToken, err := userService.RefreshToken(context.Background(), loginResp.RefreshToken)
			return err == nil && newAccessToken != ""
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLoginFailuresAreUnauthorized(t *testing.T) {
	handler, userService := newUserHandler(t)
	_, err := userService.Register(context.Background(), "a@b.co", "password123", "A")
	if err != nil {
		t.Fatal(err)
	}

	w := postJSON(handler.Login, "/api/users/login", LoginRequest{Email: "a@b.co", Password: "wrong-pass"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = postJSON(handler.RefreshToken, "/api/users/refresh", RefreshRequest{RefreshToken: "unknown"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown refresh token, got %d", w.Code)
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	handler, _ := newUserHandler(t)
	req := RegisterRequest{Email: "dup@example.com", Password: "password123", Name: "Dup"}

	if w := postJSON(handler.Register, "/api/users/register", req); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if w := postJSON(handler.Register, "/api/users/register", req); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}
