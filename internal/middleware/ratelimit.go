package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type window struct {
	triggers int
	resets   time.Time
}

// ComposeLimit caps how many compositions a single client can trigger per
// window. Each composition costs two image generations and an ffmpeg encode,
// so the endpoints that start one are throttled well below general traffic
// limits. Exceeding the cap returns 429 before any pipeline work starts.
func ComposeLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			mu.Lock()
			win, ok := windows[ip]
			now := time.Now()
			if !ok || now.After(win.resets) {
				win = &window{resets: now.Add(per)}
				windows[ip] = win
			}
			if win.triggers >= limit {
				mu.Unlock()
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			win.triggers++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
