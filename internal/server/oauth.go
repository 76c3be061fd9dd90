package server

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cdshelf/internal/models"
)

// AuthResult contains the result of an implicit grant authorization flow.
type AuthResult struct {
	Credential *models.Credential
	err        error
}

func (a *AuthResult) Error() error {
	return a.err
}

// FragmentHandler completes the implicit grant redirect flow.
//
// The authorization server redirects to /callback with the access token in
// the URL fragment, which never reaches this process. The callback page
// relays the fragment parameters to /token via a follow-up request, where
// the credential is assembled and sent through the result channel.
type FragmentHandler struct {
	state      string
	resultChan chan AuthResult
	once       sync.Once
	tokenHit   bool
	mu         sync.Mutex
	now        func() time.Time
}

// NewFragmentHandler creates a handler for the given CSRF state token.
// The state token should be cryptographically random.
func NewFragmentHandler(state string) *FragmentHandler {
	return &FragmentHandler{
		state:      state,
		resultChan: make(chan AuthResult, 1),
		now:        time.Now,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *FragmentHandler) Routes() []string {
	return []string{"/callback", "/token"}
}

// ServeHTTP dispatches between the fragment-relay page and the token sink.
func (h *FragmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/callback":
		h.serveCallback(w, r)
	case "/token":
		h.serveToken(w, r)
	default:
		http.NotFound(w, r)
	}
}

// serveCallback serves the page that moves the fragment into a /token query.
func (h *FragmentHandler) serveCallback(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
    <script>
        if (window.location.hash) {
            fetch('/token?' + window.location.hash.substring(1));
        } else {
            fetch('/token?error=missing_fragment');
        }
    </script>
</body>
</html>
`)
}

// serveToken assembles the credential from the relayed fragment parameters.
func (h *FragmentHandler) serveToken(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.tokenHit {
		h.mu.Unlock()
		http.Error(w, "Token already processed", http.StatusBadRequest)
		return
	}
	h.tokenHit = true
	h.mu.Unlock()

	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		h.Send(AuthResult{err: fmt.Errorf("authorization failed: %s", errParam)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	if state := q.Get("state"); state != h.state {
		h.Send(AuthResult{err: fmt.Errorf("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	accessToken := q.Get("access_token")
	expiresIn, err := strconv.Atoi(q.Get("expires_in"))
	if accessToken == "" || err != nil || expiresIn <= 0 {
		h.Send(AuthResult{err: fmt.Errorf("malformed token response")})
		http.Error(w, "Malformed token response", http.StatusBadRequest)
		return
	}

	h.Send(AuthResult{Credential: &models.Credential{
		AccessToken: accessToken,
		ExpiresAt:   h.now().Add(time.Duration(expiresIn) * time.Second),
	}})

	w.WriteHeader(http.StatusOK)
}

// Send sends the auth result through the channel (only once).
func (h *FragmentHandler) Send(result AuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *FragmentHandler) Result() <-chan AuthResult {
	return h.resultChan
}
