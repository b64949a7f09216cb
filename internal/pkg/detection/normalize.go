package detection

import (
	"net/url"
	"strings"
)

// NormalizeAssetURL 把检测服务返回的相对资源路径补全为绝对 URL。
// 已是绝对 URL 的输入原样返回，因此重复调用不会二次拼接
func NormalizeAssetURL(baseOrigin, raw string) string {
	if raw == "" {
		return ""
	}

	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}

	if baseOrigin == "" {
		return raw
	}

	return strings.TrimRight(baseOrigin, "/") + "/" + strings.TrimLeft(raw, "/")
}
