package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidateBackendURL_Accepts(t *testing.T) {
	urls := []string{
		"http://localhost:8000/api/v1",
		"https://api.example.com/api/v1",
		"http://10.0.0.5:8000",
	}
	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			if _, err := ValidateBackendURL(u, false); err != nil {
				t.Errorf("ValidateBackendURL(%q) = %v, want nil", u, err)
			}
		})
	}
}

func TestValidateBackendURL_Rejects(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		blockPrivate bool
	}{
		{"空文字列", "", false},
		{"ftpスキーム", "ftp://example.com", false},
		{"ホストなし", "http://", false},
		{"localhost", "http://localhost:8000", true},
		{"ループバックIP", "http://127.0.0.1:8000", true},
		{"プライベートIP", "http://192.168.1.10", true},
		{"メタデータIP", "http://169.254.169.254/latest", true},
		{"IPv6ループバック", "http://[::1]:8000", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateBackendURL(tt.url, tt.blockPrivate); err == nil {
				t.Errorf("ValidateBackendURL(%q, %v) = nil, want error", tt.url, tt.blockPrivate)
			}
		})
	}
}

func TestNewBackendHTTPClient_PlainClientHasTimeout(t *testing.T) {
	client, err := NewBackendHTTPClient("http://localhost:8000", 3*time.Second, false)
	if err != nil {
		t.Fatalf("NewBackendHTTPClient returned error: %v", err)
	}
	if client.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", client.Timeout)
	}
}

func TestNewBackendHTTPClient_SafeClientHasCustomTransport(t *testing.T) {
	client, err := NewBackendHTTPClient("https://api.example.com", 5*time.Second, true)
	if err != nil {
		t.Fatalf("NewBackendHTTPClient returned error: %v", err)
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.Timeout)
	}
	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Error("expected safeurl transport")
	}
}

// httptestサーバーは127.0.0.1で起動されるため、safeurlのクライアントは接続を拒否する。
func TestNewBackendHTTPClient_SafeClientBlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client, err := NewBackendHTTPClient("https://api.example.com", 5*time.Second, true)
	if err != nil {
		t.Fatalf("NewBackendHTTPClient returned error: %v", err)
	}
	if _, err := client.Get(ts.URL); err == nil {
		t.Fatal("expected error for loopback address request, got nil")
	}
}

func TestNewBackendHTTPClient_RejectsPrivateURLWhenBlocking(t *testing.T) {
	if _, err := NewBackendHTTPClient("http://127.0.0.1:8000", time.Second, true); err == nil {
		t.Fatal("expected error for loopback backend URL with blocking enabled")
	}
}
