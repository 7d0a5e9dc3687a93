package supabase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// User is the signed-in identity. Only ID is needed to address rows.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// DisplayName returns the local part of the e-mail address.
func (u User) DisplayName() string {
	name, _, _ := strings.Cut(u.Email, "@")
	return name
}

// Session is a signed-in user with their access and refresh token.
// Token is nil after a sign-up that still awaits e-mail confirmation.
type Session struct {
	Token *oauth2.Token `json:"token"`
	User  User          `json:"user"`
}

// sessionResp is the raw JSON session returned by the token and verify endpoints.
type sessionResp struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`

	// Sign-up without auto-confirm answers with the bare user.
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (r sessionResp) session() *Session {
	s := &Session{User: r.User}
	if s.User.ID == "" {
		s.User = User{ID: r.ID, Email: r.Email}
	}
	if r.AccessToken == "" {
		return s
	}
	expiry := time.Time{}
	if r.ExpiresIn > 0 {
		expiry = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	s.Token = &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
		Expiry:       expiry,
	}
	return s
}

// SignInWithPassword exchanges e-mail and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var r sessionResp
	err := c.do(ctx, c.httpClient, http.MethodPost, "/auth/v1/token?grant_type=password", "", nil,
		map[string]string{"email": email, "password": password}, &r)
	if err != nil {
		return nil, err
	}
	return r.session(), nil
}

// SignUp registers a new account. Depending on project settings the result
// carries a token right away or only the user, pending e-mail confirmation.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var r sessionResp
	err := c.do(ctx, c.httpClient, http.MethodPost, "/auth/v1/signup", "", nil,
		map[string]string{"email": email, "password": password}, &r)
	if err != nil {
		return nil, err
	}
	return r.session(), nil
}

// SendMagicLink e-mails a one-time sign-in code (and link) to email.
func (c *Client) SendMagicLink(ctx context.Context, email string) error {
	return c.do(ctx, c.httpClient, http.MethodPost, "/auth/v1/otp", "", nil,
		map[string]any{"email": email, "create_user": true}, nil)
}

// VerifyOTP trades the e-mailed one-time code for a session.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	var r sessionResp
	err := c.do(ctx, c.httpClient, http.MethodPost, "/auth/v1/verify", "", nil,
		map[string]string{"type": "email", "email": email, "token": code}, &r)
	if err != nil {
		return nil, err
	}
	return r.session(), nil
}

// SignOut revokes the session's refresh tokens.
func (c *Client) SignOut(ctx context.Context, tok *oauth2.Token) error {
	return c.do(ctx, c.httpClient, http.MethodPost, "/auth/v1/logout", tok.AccessToken, nil, nil, nil)
}

// GetUser resolves an access token to its user.
func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	var u User
	err := c.do(ctx, c.httpClient, http.MethodGet, "/auth/v1/user", accessToken, nil, nil, &u)
	return u, err
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	var r sessionResp
	err := c.do(ctx, c.httpClient, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", nil,
		map[string]string{"refresh_token": refreshToken}, &r)
	if err != nil {
		return nil, err
	}
	tok := r.session().Token
	if tok == nil {
		return nil, errors.New("refresh returned no access token")
	}
	return tok, nil
}

// refreshSource refreshes through GoTrue. Refresh tokens are single use, so
// it remembers the latest one.
type refreshSource struct {
	ctx  context.Context
	c    *Client
	last *oauth2.Token
}

func (s *refreshSource) Token() (*oauth2.Token, error) {
	tok, err := s.c.refresh(s.ctx, s.last.RefreshToken)
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = s.last.RefreshToken
	}
	s.last = tok
	return tok, nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	file *SessionFile
	mu   sync.Mutex
	sess Session
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess.Token == nil || s.sess.Token.AccessToken != tok.AccessToken {
		s.sess.Token = tok
		// Best-effort save; ignore errors.
		_ = s.file.Save(&s.sess)
	}
	return tok, nil
}

// TokenSource returns a source that hands out sess's token and refreshes it
// when it expires. With a non-nil file, refreshed tokens are written back.
func (c *Client) TokenSource(ctx context.Context, sess *Session, file *SessionFile) oauth2.TokenSource {
	ts := oauth2.ReuseTokenSource(sess.Token, &refreshSource{ctx: ctx, c: c, last: sess.Token})
	if file == nil {
		return ts
	}
	return &savingTokenSource{ts: ts, file: file, sess: *sess}
}
