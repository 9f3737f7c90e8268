package findmypet

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService translates login and register intents into session updates.
type AuthService struct {
	client *Client
}

// Credentials identify an existing account.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration creates a new account. Password rules (6-70 characters,
// confirmation) are the caller's responsibility; the service sends the
// request as given.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// AuthResult is a successful login or registration.
type AuthResult struct {
	Token string
	User  *User
}

type authResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// Login exchanges credentials for a session. When it returns successfully
// the session is already set and the token persisted: a caller observing the
// result always sees an authenticated session.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var resp authResponse
	err := s.client.doRequest(ctx, http.MethodPost, "/auth/login", creds, &resp, false)
	if err != nil {
		return nil, loginError(err, "Login failed")
	}
	return s.establish(resp)
}

// Register creates an account and logs it in, with the same session
// ordering guarantee as Login.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var resp authResponse
	err := s.client.doRequest(ctx, http.MethodPost, "/auth/register", reg, &resp, false)
	if err != nil {
		return nil, loginError(err, "Registration failed")
	}
	return s.establish(resp)
}

func (s *AuthService) establish(resp authResponse) (*AuthResult, error) {
	if resp.AccessToken == "" {
		return nil, newError(CodeServerError, "Server response does not contain a token")
	}
	if err := s.client.session.Set(resp.AccessToken, resp.User); err != nil {
		return nil, err
	}
	return &AuthResult{Token: resp.AccessToken, User: resp.User}, nil
}

// loginError remaps the generic status mapping for the unauthenticated auth
// endpoints: a 401 there means bad credentials, not a missing session.
func loginError(err error, fallback string) error {
	apiErr, ok := AsError(err)
	if !ok {
		return err
	}
	switch {
	case apiErr.IsAuthenticationRequired():
		msg := apiErr.Message
		if msg == "" || msg == genericAuthMessage {
			msg = "Invalid email or password"
		}
		return &Error{StatusCode: apiErr.StatusCode, Code: CodeInvalidCredentials, Message: msg}
	case apiErr.Code == CodeNetworkUnavailable:
		return apiErr
	default:
		if apiErr.Message == "" {
			apiErr.Message = fallback
		}
		return apiErr
	}
}

// Logout tears the session down. It is purely client-side: there is no
// server session to invalidate, so it always succeeds.
func (s *AuthService) Logout() {
	s.client.session.Clear()
}

// Profile fetches the current user and stores it on the session. A rejected
// token clears the session before the error is returned.
func (s *AuthService) Profile(ctx context.Context) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := s.client.getAuthed(ctx, "/auth/profile", &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, newError(CodeServerError, "Server response does not contain a user")
	}
	s.client.session.SetUser(resp.User)
	return resp.User, nil
}

// TokenClaims is the display-relevant subset of the session token's claims.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// TokenClaims peeks at the stored token without verifying it. The server is
// the only party that validates tokens; this exists so the CLI can show whose
// session it is and when it expires.
func (s *AuthService) TokenClaims() (*TokenClaims, error) {
	token := s.client.session.Token()
	if token == "" {
		return nil, newError(CodeAuthenticationRequired, "Not logged in")
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, newError(CodeServerError, "Stored token is not a readable JWT")
	}
	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
