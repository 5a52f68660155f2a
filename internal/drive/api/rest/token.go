package rest

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryLeeway is how long before the recorded expiry a token is already
// treated as expired, so a request doesn't leave with a token that dies in
// flight.
const expiryLeeway = 10 * time.Second

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type tokenStore struct {
	mu      sync.RWMutex
	pair    tokenPair
	present bool
}

func (s *tokenStore) set(pair tokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.present = true
}

func (s *tokenStore) get() (tokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, s.present
}

// tokenExpired inspects the exp claim without verifying the signature; the
// server is the authority, this only avoids sending tokens that are known to
// be dead. Tokens that don't parse or carry no expiry are sent as-is.
func tokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().Add(expiryLeeway).After(exp.Time)
}
