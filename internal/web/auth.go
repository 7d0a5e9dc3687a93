package web

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/daily-hours/internal/store"
	"github.com/Tiliavir/daily-hours/internal/supabase"
	"github.com/Tiliavir/daily-hours/internal/view"
)

// LocalAuth serves every request as one configured user. It is used with the
// local backends, which have no sign-in.
type LocalAuth struct {
	UserID string
	Store  view.Store
}

func (a LocalAuth) Authenticate(context.Context, string) (string, view.Store, error) {
	return a.UserID, a.Store, nil
}

var errNoToken = errors.New("missing bearer token")

// SupabaseAuth checks bearer tokens against Supabase. Each user gets one
// adapter that writes with the user's latest token, so row-level security
// applies and writes keep their per-key order across token refreshes.
type SupabaseAuth struct {
	Client *supabase.Client
	Log    *log.Logger

	mu    sync.Mutex
	users map[string]*userStore
}

type userStore struct {
	token   *bearerSource
	adapter *store.Adapter
}

// bearerSource hands out the most recent access token of one user.
type bearerSource struct {
	mu  sync.Mutex
	tok string
}

func (b *bearerSource) set(tok string) {
	b.mu.Lock()
	b.tok = tok
	b.mu.Unlock()
}

func (b *bearerSource) Token() (*oauth2.Token, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &oauth2.Token{AccessToken: b.tok, TokenType: "Bearer"}, nil
}

func (a *SupabaseAuth) Authenticate(ctx context.Context, token string) (string, view.Store, error) {
	if token == "" {
		return "", nil, errNoToken
	}
	u, err := a.Client.GetUser(ctx, token)
	if err != nil {
		return "", nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.users == nil {
		a.users = map[string]*userStore{}
	}
	if us, ok := a.users[u.ID]; ok {
		us.token.set(token)
		return u.ID, us.adapter, nil
	}
	var opts []store.Option
	if a.Log != nil {
		opts = append(opts, store.WithLogger(a.Log))
	}
	src := &bearerSource{tok: token}
	us := &userStore{
		token:   src,
		adapter: store.NewAdapter(a.Client.Tables(context.Background(), src), opts...),
	}
	a.users[u.ID] = us
	return u.ID, us.adapter, nil
}
