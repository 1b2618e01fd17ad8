package security

import (
	"net/url"
	"strings"
)

// SafeLocalPath はログイン後の遷移先として安全なローカルパスかを検証する。
// スキームやホストを含むもの、"//"や"\"で始まるものは拒否し、
// パス部分がallowedのいずれかと一致する場合のみ受け付ける。
func SafeLocalPath(raw string, allowed []string) (string, bool) {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return "", false
	}
	if strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "", false
	}

	for _, p := range allowed {
		if u.Path == p {
			return u.Path, true
		}
	}
	return "", false
}
