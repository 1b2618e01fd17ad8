package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// allowedSchemes はバックエンドURLに許可するスキーム。
var allowedSchemes = []string{"http", "https"}

// privateNetworks はBACKEND_BLOCK_PRIVATE有効時に拒否するネットワーク範囲。
var privateNetworks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in privateNetworks: %s: %v", cidr, err))
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// ValidateBackendURL はバックエンドのベースURLを検証する。
// blockPrivateがtrueの場合、ループバックやプライベートアドレスを直接指すURLも拒否する。
// 名前解決後のアドレスはNewBackendHTTPClientが返すクライアント側で検証される。
func ValidateBackendURL(rawURL string, blockPrivate bool) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("empty backend URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	allowed := false
	for _, s := range allowedSchemes {
		if s == scheme {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("disallowed scheme: %q (allowed: %v)", parsed.Scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("empty host in backend URL: %s", rawURL)
	}

	if blockPrivate {
		if strings.EqualFold(host, "localhost") {
			return nil, fmt.Errorf("blocked host: %s", host)
		}
		if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
			return nil, fmt.Errorf("blocked IP address: %s", ip)
		}
	}

	return parsed, nil
}

// NewBackendHTTPClient はバックエンド呼び出し用のHTTPクライアントを生成する。
// blockPrivateがtrueの場合はsafeurlを使い、名前解決後のIPアドレスがプライベート、
// ループバック、リンクローカルのいずれかであれば接続を拒否する。
func NewBackendHTTPClient(backendURL string, timeout time.Duration, blockPrivate bool) (*http.Client, error) {
	parsed, err := ValidateBackendURL(backendURL, blockPrivate)
	if err != nil {
		return nil, err
	}

	if !blockPrivate {
		return &http.Client{Timeout: timeout}, nil
	}

	port, err := portOf(parsed)
	if err != nil {
		return nil, err
	}

	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(port).
		Build()

	return safeurl.Client(cfg).Client, nil
}

// portOf はURLの明示ポート、なければスキームの既定ポートを返す。
func portOf(u *url.URL) (int, error) {
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid port in backend URL: %q", p)
		}
		return port, nil
	}
	if strings.EqualFold(u.Scheme, "https") {
		return 443, nil
	}
	return 80, nil
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
