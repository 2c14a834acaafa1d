package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.Principal
		want      int
	}{
		{"no principal", nil, http.StatusUnauthorized},
		{"customer", &domain.Principal{UserID: uuid.New(), Role: domain.RoleCustomer}, http.StatusForbidden},
		{"admin", &domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := RequireAdmin(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPut, "/api/products/1", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.want == http.StatusOK, called)
		})
	}
}

func TestGetUserIDFromPrincipal(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetUserID(req.Context())
	assert.False(t, ok)

	ctx := WithPrincipal(req.Context(), domain.Principal{UserID: id, Role: domain.RoleCustomer})
	got, ok := GetUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, id.String(), got)
}
