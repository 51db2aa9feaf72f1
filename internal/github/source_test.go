package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicabarNimble/go-gitimport/internal/urlutils"
)

func TestURLResolver(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		hosts     []string
		want      string
		wantError bool
	}{
		{
			name:    "github.com",
			baseURL: "https://github.com",
			want:    "https://github.com/acme/widgets.git",
		},
		{
			name:    "trailing slash",
			baseURL: "https://github.com/",
			want:    "https://github.com/acme/widgets.git",
		},
		{
			name:    "allowed enterprise host",
			baseURL: "https://git.example.com",
			hosts:   []string{"git.example.com"},
			want:    "https://git.example.com/acme/widgets.git",
		},
		{
			name:      "host not allowed",
			baseURL:   "https://evil.example.com",
			wantError: true,
		},
		{
			name:      "plain http",
			baseURL:   "http://github.com",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &URLResolver{BaseURL: tt.baseURL, Hosts: urlutils.NewHostPolicy(tt.hosts...)}
			got, err := r.SourceURI(context.Background(), "acme", "widgets")
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIResolver(t *testing.T) {
	tests := []struct {
		name      string
		mockAPI   func(w http.ResponseWriter, r *http.Request)
		want      string
		wantError error
		errorMsg  string
	}{
		{
			name: "clone url from api",
			mockAPI: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/acme/widgets", r.URL.Path)
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"name":"widgets","clone_url":"https://github.com/acme-corp/widgets.git"}`))
			},
			want: "https://github.com/acme-corp/widgets.git",
		},
		{
			name: "not found",
			mockAPI: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not Found"}`))
			},
			wantError: ErrSourceNotFound,
		},
		{
			name: "server error",
			mockAPI: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"message":"boom"}`))
			},
			errorMsg: "failed to look up acme/widgets",
		},
		{
			name: "missing clone url",
			mockAPI: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"name":"widgets"}`))
			},
			errorMsg: "has no clone url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.mockAPI))
			defer server.Close()

			client, err := NewClient(context.Background(), "test-token", WithBaseURL(server.URL))
			require.NoError(t, err)

			r := &APIResolver{Client: client}
			got, err := r.SourceURI(context.Background(), "acme", "widgets")
			switch {
			case tt.wantError != nil:
				assert.ErrorIs(t, err, tt.wantError)
			case tt.errorMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil, "x") //nolint:staticcheck
	assert.Error(t, err)

	c, err := NewClient(context.Background(), "", WithBaseURL("http://127.0.0.1:1/api"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:1/api/", c.BaseURL.String())
	assert.Equal(t, userAgent, c.UserAgent)
}
