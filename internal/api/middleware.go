// File: backend/internal/api/middleware.go
package api

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// LoggingMiddleware logs the incoming HTTP request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// Wrap the original ResponseWriter to capture status code and support Flusher
		srw := NewStatusResponseWriter(w)

		log.Printf("Request Start: %s %s %s", r.Method, r.RequestURI, r.RemoteAddr)
		next.ServeHTTP(srw, r)
		log.Printf("Request End: %s %s (Status: %d) %s (Duration: %s)", r.Method, r.RequestURI, srw.statusCode, r.RemoteAddr, time.Since(start))
	})
}

// StatusResponseWriter wraps ResponseWriter to capture status code
// and implements http.Flusher if the underlying writer supports it.
type StatusResponseWriter struct {
	http.ResponseWriter
	statusCode int
	flushed    bool
}

// NewStatusResponseWriter creates a new StatusResponseWriter
func NewStatusResponseWriter(w http.ResponseWriter) *StatusResponseWriter {
	return &StatusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code before writing headers
func (srw *StatusResponseWriter) WriteHeader(code int) {
	if !srw.flushed { // Only write headers if not already flushed (e.g., by SSE)
		srw.statusCode = code
		srw.ResponseWriter.WriteHeader(code)
	}
}

// Flush implements the http.Flusher interface. It calls Flush on the
// underlying ResponseWriter if it supports it.
func (srw *StatusResponseWriter) Flush() {
	if flusher, ok := srw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
		srw.flushed = true
	}
}

// APIKeyAuthMiddleware requires a bearer token matching the configured key.
func APIKeyAuthMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}
			if parts[1] != apiKey {
				log.Printf("Auth failed: Invalid API Key by %s for %s %s", r.RemoteAddr, r.Method, r.RequestURI)
				http.Error(w, "Invalid API Key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows browser clients from any origin.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Date, X-Request-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
