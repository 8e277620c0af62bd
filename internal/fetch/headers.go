package fetch

import "net/http"

// DefaultHeaders returns the browser-like header profile the tile provider
// expects. Requests without it are rejected upstream.
func DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("Authority", "core-sat.maps.yandex.net")
	h.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Referer", "https://yandex.ru/maps/213/moscow/hybrid/?ll=37.618045%2C55.753260&z=20")
	h.Set("Sec-Ch-Ua", `"Not:A-Brand";v="99", "Chromium";v="112"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Linux"`)
	h.Set("Sec-Fetch-Dest", "image")
	h.Set("Sec-Fetch-Mode", "no-cors")
	h.Set("Sec-Fetch-Site", "cross-site")
	h.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36")
	return h
}

// MergeHeaders returns base with every key of override replacing its value.
// Empty override values delete the key.
func MergeHeaders(base http.Header, override map[string]string) http.Header {
	out := base.Clone()
	if out == nil {
		out = make(http.Header)
	}
	for k, v := range override {
		if v == "" {
			out.Del(k)
			continue
		}
		out.Set(k, v)
	}
	return out
}
