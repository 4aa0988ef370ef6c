// Package web serves rendered documentation pages and their JSON API using chi.
package web

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl returns middleware that marks responses publicly cacheable for
// maxAge. A non-positive maxAge disables caching.
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	value := cacheControlValue(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}

func cacheControlValue(maxAge time.Duration) string {
	if maxAge <= 0 {
		return "no-cache"
	}
	return fmt.Sprintf("public,max-age=%d", int(maxAge.Seconds()))
}
