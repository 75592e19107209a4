// package server hosts the loopback HTTP listener used to catch the OAuth
// redirect during the PKCE authorization flow.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CallbackAddr is where the authorization redirect lands. It must match
// the redirect URI registered with the Spotify application.
const (
	CallbackAddr = "127.0.0.1:5000"
	CallbackPath = "/callback"
)

// RedirectURI returns the full loopback redirect URI.
func RedirectURI() string {
	return fmt.Sprintf("http://%s%s", CallbackAddr, CallbackPath)
}

// Serve runs a loopback server routing the callback path to handler until
// ctx is done, then shuts it down. Always returns the serve error, if any.
func Serve(ctx context.Context, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle(CallbackPath, handler)

	srv := &http.Server{
		Addr:              CallbackAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		return <-errCh
	}
}
