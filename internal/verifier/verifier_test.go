package verifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyGoogleTokeninfoShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "tok-1", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"issued_to":  "client-123.apps.googleusercontent.com",
			"scope":      "https://www.googleapis.com/auth/analytics.readonly openid",
			"expires_in": 3599,
		})
	}))
	t.Cleanup(srv.Close)

	v := New(Config{URL: srv.URL}, nil)
	identity := v.Verify(context.Background(), "tok-1")
	require.NotNil(t, identity)
	assert.Equal(t, "tok-1", identity.Token)
	assert.Equal(t, "client-123.apps.googleusercontent.com", identity.ClientID)
	assert.Contains(t, identity.Scopes, "openid")
	assert.WithinDuration(t, time.Now().Add(3599*time.Second), identity.ExpiresAt, 5*time.Second)
}

func TestVerifyPostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ContentTypeForm, r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "tok-2", r.Form.Get("token"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"active":    true,
			"client_id": "svc-client",
			"scope":     "read",
			"exp":       time.Now().Add(time.Hour).Unix(),
		})
	}))
	t.Cleanup(srv.Close)

	v := New(Config{URL: srv.URL, Method: http.MethodPost, ContentType: ContentTypeForm}, nil)
	identity := v.Verify(context.Background(), "tok-2")
	require.NotNil(t, identity)
	assert.Equal(t, "svc-client", identity.ClientID)
}

func TestVerifyOutboundAuth(t *testing.T) {
	t.Run("bearer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer outbound-secret", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{"scope": "read"})
		}))
		t.Cleanup(srv.Close)

		v := New(Config{URL: srv.URL, Auth: AuthBearer, BearerToken: "outbound-secret"}, nil)
		assert.NotNil(t, v.Verify(context.Background(), "tok"))
	})

	t.Run("basic", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "svc", user)
			assert.Equal(t, "pw", pass)
			json.NewEncoder(w).Encode(map[string]interface{}{"scope": "read"})
		}))
		t.Cleanup(srv.Close)

		v := New(Config{URL: srv.URL, Auth: AuthBasic, BasicUsername: "svc", BasicPassword: "pw"}, nil)
		assert.NotNil(t, v.Verify(context.Background(), "tok"))
	})
}

func TestVerifyDenies(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		config  Config
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error": "invalid_token"}`, http.StatusBadRequest)
			},
		},
		{
			name: "error field in body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{"error": "invalid_token"})
			},
		},
		{
			name: "inactive token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{"active": false})
			},
		},
		{
			name: "unparseable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "missing required scope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{"scope": "openid email"})
			},
			config: Config{RequiredScopes: []string{"https://www.googleapis.com/auth/analytics.readonly"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)

			config := tt.config
			config.URL = srv.URL
			v := New(config, nil)
			assert.Nil(t, v.Verify(context.Background(), "tok"))
		})
	}
}

func TestVerifyRequiredScopesSubset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"scope": "read write admin",
		})
	}))
	t.Cleanup(srv.Close)

	v := New(Config{URL: srv.URL, RequiredScopes: []string{"read", "write"}}, nil)
	identity := v.Verify(context.Background(), "tok")
	require.NotNil(t, identity)
	assert.Equal(t, []string{"read", "write", "admin"}, identity.Scopes)
}

func TestVerifyTransportError(t *testing.T) {
	// Closed server: connection refused must deny, not error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	v := New(Config{URL: srv.URL}, nil)
	assert.Nil(t, v.Verify(context.Background(), "tok"))
}

func TestVerifyEmptyToken(t *testing.T) {
	v := New(Config{URL: "http://127.0.0.1:1"}, nil)
	assert.Nil(t, v.Verify(context.Background(), ""))
}
