package clerk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken    = errors.New("missing session token")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrUnauthorizedAzp = errors.New("session token issued for an unauthorized party")
)

// Session is the verified content of a Clerk session token.
type Session struct {
	UserID          string
	SessionID       string
	AuthorizedParty string
	// Plans holds the "scope:slug" entries from the pla claim.
	Plans     []string
	ExpiresAt time.Time
}

// HasPlan reports whether the session carries slug under any scope, or scope:slug exactly.
func (s *Session) HasPlan(plan string) bool {
	if s == nil {
		return false
	}
	plan = strings.TrimSpace(plan)
	if plan == "" {
		return false
	}
	for _, entry := range s.Plans {
		if entry == plan {
			return true
		}
		if _, slug, ok := strings.Cut(entry, ":"); ok && slug == plan {
			return true
		}
	}
	return false
}

type VerifierConfig struct {
	// JWKSURL enables auto-refreshing key fetches. When empty, keys are loaded once
	// through the Backend API.
	JWKSURL           string
	Issuer            string
	AuthorizedParties []string
	Leeway            time.Duration
}

// Verifier validates RS256 session tokens against the instance's JWKS.
type Verifier struct {
	keyfunc keyfunc.Keyfunc
	parser  *jwt.Parser
	parties map[string]struct{}
	cancel  context.CancelFunc
}

// NewVerifier builds a verifier. api is only consulted when cfg.JWKSURL is empty.
func NewVerifier(ctx context.Context, api Client, cfg VerifierConfig) (*Verifier, error) {
	var (
		kf     keyfunc.Keyfunc
		cancel context.CancelFunc = func() {}
		err    error
	)
	if u := strings.TrimSpace(cfg.JWKSURL); u != "" {
		var refreshCtx context.Context
		refreshCtx, cancel = context.WithCancel(context.Background())
		kf, err = keyfunc.NewDefaultCtx(refreshCtx, []string{u})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("clerk: init JWKS keyfunc: %w", err)
		}
	} else {
		if api == nil {
			return nil, errors.New("clerk: jwks url or backend client required")
		}
		raw, jwksErr := api.JWKS(ctx)
		if jwksErr != nil {
			return nil, fmt.Errorf("clerk: fetch JWKS: %w", jwksErr)
		}
		kf, err = keyfunc.NewJWKSetJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("clerk: parse JWKS: %w", err)
		}
	}

	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = 5 * time.Second
	}
	opts := []jwt.ParserOption{
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
	}
	if iss := strings.TrimSpace(cfg.Issuer); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}

	parties := make(map[string]struct{}, len(cfg.AuthorizedParties))
	for _, p := range cfg.AuthorizedParties {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			parties[p] = struct{}{}
		}
	}

	return &Verifier{
		keyfunc: kf,
		parser:  jwt.NewParser(opts...),
		parties: parties,
		cancel:  cancel,
	}, nil
}

// Verify parses and validates a session token.
func (v *Verifier) Verify(tokenString string) (*Session, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	s := &Session{
		UserID:          readString(claims, "sub"),
		SessionID:       readString(claims, "sid"),
		AuthorizedParty: readString(claims, "azp"),
		Plans:           splitPlans(readString(claims, "pla")),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if s.UserID == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	if len(v.parties) > 0 && s.AuthorizedParty != "" {
		if _, ok := v.parties[strings.TrimRight(s.AuthorizedParty, "/")]; !ok {
			return nil, ErrUnauthorizedAzp
		}
	}
	return s, nil
}

// Close stops background key refresh.
func (v *Verifier) Close() {
	if v != nil && v.cancel != nil {
		v.cancel()
	}
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

func splitPlans(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
