package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/daily-hours/internal/store"
)

const testKey = "anon-key"

func TestSignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("apikey") != testKey {
			t.Errorf("apikey = %q", r.Header.Get("apikey"))
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ada@example.com" || body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"at","token_type":"bearer","expires_in":3600,"refresh_token":"rt","user":{"id":"u-1","email":"ada@example.com"}}`)
	}))
	defer srv.Close()
	c := New(srv.URL+"/", testKey)

	sess, err := c.SignInWithPassword(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if sess.User.ID != "u-1" || sess.Token.AccessToken != "at" || sess.Token.RefreshToken != "rt" {
		t.Errorf("session = %+v token = %+v", sess.User, sess.Token)
	}
	if time.Until(sess.Token.Expiry) < 50*time.Minute {
		t.Errorf("expiry = %v", sess.Token.Expiry)
	}

	_, err = c.SignInWithPassword(context.Background(), "ada@example.com", "wrong")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Invalid login credentials" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestSignUpPendingConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"u-2","email":"bob@example.com"}`)
	}))
	defer srv.Close()

	sess, err := New(srv.URL, testKey).SignUp(context.Background(), "bob@example.com", "pw")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if sess.Token != nil {
		t.Errorf("token = %+v, want nil", sess.Token)
	}
	if sess.User.ID != "u-2" {
		t.Errorf("user = %+v", sess.User)
	}
}

func TestMagicLinkAndVerify(t *testing.T) {
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/auth/v1/otp":
			sent, _ = body["email"].(string)
			fmt.Fprint(w, `{}`)
		case "/auth/v1/verify":
			if body["token"] != "123456" || body["type"] != "email" {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"msg":"Token has expired or is invalid"}`)
				return
			}
			fmt.Fprint(w, `{"access_token":"at","refresh_token":"rt","expires_in":60,"user":{"id":"u-3","email":"cy@example.com"}}`)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, testKey)
	ctx := context.Background()

	if err := c.SendMagicLink(ctx, "cy@example.com"); err != nil {
		t.Fatalf("SendMagicLink: %v", err)
	}
	if sent != "cy@example.com" {
		t.Errorf("otp sent to %q", sent)
	}
	if _, err := c.VerifyOTP(ctx, "cy@example.com", "000000"); err == nil {
		t.Error("wrong code: expected error")
	}
	sess, err := c.VerifyOTP(ctx, "cy@example.com", "123456")
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if sess.User.ID != "u-3" || sess.Token == nil {
		t.Errorf("session = %+v", sess)
	}
}

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"invalid JWT"}`)
			return
		}
		fmt.Fprint(w, `{"id":"u-1","email":"ada@example.com"}`)
	}))
	defer srv.Close()
	c := New(srv.URL, testKey)

	u, err := c.GetUser(context.Background(), "good")
	if err != nil || u.ID != "u-1" {
		t.Fatalf("GetUser = %+v, %v", u, err)
	}
	if _, err := c.GetUser(context.Background(), "bad"); err == nil {
		t.Error("bad token: expected error")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct{ email, want string }{
		{"ada.lovelace@example.com", "ada.lovelace"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := (User{Email: tt.email}).DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestTokenSourceRefreshesAndSaves(t *testing.T) {
	var refreshedWith string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		refreshedWith = body["refresh_token"]
		fmt.Fprint(w, `{"access_token":"fresh","refresh_token":"rt-2","expires_in":3600}`)
	}))
	defer srv.Close()
	c := New(srv.URL, testKey)

	file := &SessionFile{Path: filepath.Join(t.TempDir(), "auth", "session.json")}
	sess := &Session{
		Token: &oauth2.Token{AccessToken: "stale", RefreshToken: "rt-1", Expiry: time.Now().Add(-time.Hour)},
		User:  User{ID: "u-1", Email: "ada@example.com"},
	}

	tok, err := c.TokenSource(context.Background(), sess, file).Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "fresh" || refreshedWith != "rt-1" {
		t.Errorf("token = %q, refreshed with %q", tok.AccessToken, refreshedWith)
	}

	saved, err := file.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.Token.RefreshToken != "rt-2" || saved.User.ID != "u-1" {
		t.Errorf("saved = %+v %+v", saved.Token, saved.User)
	}
}

func TestRefreshKeepsRefreshTokenWhenOmitted(t *testing.T) {
	var used []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		used = append(used, body["refresh_token"])
		fmt.Fprint(w, `{"access_token":"fresh","expires_in":3600}`)
	}))
	defer srv.Close()

	src := &refreshSource{
		ctx:  context.Background(),
		c:    New(srv.URL, testKey),
		last: &oauth2.Token{AccessToken: "stale", RefreshToken: "rt-1"},
	}
	for i := 0; i < 2; i++ {
		tok, err := src.Token()
		if err != nil {
			t.Fatalf("Token #%d: %v", i+1, err)
		}
		if tok.RefreshToken != "rt-1" {
			t.Errorf("Token #%d refresh token = %q, want rt-1", i+1, tok.RefreshToken)
		}
	}
	if len(used) != 2 || used[1] != "rt-1" {
		t.Errorf("refreshed with %q", used)
	}
}

func TestSessionFile(t *testing.T) {
	file := &SessionFile{Path: filepath.Join(t.TempDir(), "session.json")}
	if _, err := file.Load(); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("Load missing = %v, want ErrNotSignedIn", err)
	}
	sess := &Session{Token: &oauth2.Token{AccessToken: "a"}, User: User{ID: "u"}}
	if err := file.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := file.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := file.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := file.Delete(); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	if _, err := file.Load(); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Load after delete = %v", err)
	}
}

func TestTablesFetchRowsPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("user_id") != "eq.u-1" {
			t.Errorf("user filter = %q", q.Get("user_id"))
		}
		offset, _ := strconv.Atoi(q.Get("offset"))
		n := pageSize
		if offset >= pageSize {
			n = 2
		}
		rows := make([]timesheetRow, n)
		for i := range rows {
			rows[i] = timesheetRow{DateKey: strconv.Itoa(offset + i), Data: json.RawMessage(`{"isLeave":false,"tasks":[]}`)}
		}
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	ctx := context.Background()
	tables := New(srv.URL, testKey).Tables(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	rows, err := tables.FetchRows(ctx, "u-1")
	if err != nil {
		t.Fatalf("FetchRows: %v", err)
	}
	if len(rows) != pageSize+2 {
		t.Fatalf("rows = %d, want %d", len(rows), pageSize+2)
	}
	if rows[0].UserID != "u-1" || rows[pageSize+1].DateKey != strconv.Itoa(pageSize+1) {
		t.Errorf("rows[0] = %+v, last = %+v", rows[0], rows[pageSize+1])
	}
}

func TestTablesUpsertRow(t *testing.T) {
	var got timesheetRow
	var prefer, conflict string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefer = r.Header.Get("Prefer")
		conflict = r.URL.Query().Get("on_conflict")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx := context.Background()
	var rs store.RowStore = New(srv.URL, testKey).Tables(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	row := store.Row{UserID: "u-1", DateKey: "01/01/2024", Data: json.RawMessage(`{"isLeave":true,"tasks":[]}`)}
	if err := rs.UpsertRow(ctx, row); err != nil {
		t.Fatalf("UpsertRow: %v", err)
	}
	if prefer != "resolution=merge-duplicates,return=minimal" || conflict != "user_id,date_key" {
		t.Errorf("prefer = %q, on_conflict = %q", prefer, conflict)
	}
	if got.UserID != "u-1" || got.DateKey != "01/01/2024" || string(got.Data) != `{"isLeave":true,"tasks":[]}` {
		t.Errorf("body = %+v", got)
	}
}

func TestTablesProfile(t *testing.T) {
	profiles := map[string]Profile{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			id := r.URL.Query().Get("id")[len("eq."):]
			out := []Profile{}
			if p, ok := profiles[id]; ok {
				out = append(out, p)
			}
			_ = json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var p Profile
			_ = json.NewDecoder(r.Body).Decode(&p)
			profiles[p.ID] = p
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	tables := New(srv.URL, testKey).Tables(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	p, err := tables.Profile(ctx, "u-1")
	if err != nil || p != nil {
		t.Fatalf("Profile before upsert = %+v, %v", p, err)
	}
	if err := tables.UpdateProfile(ctx, Profile{ID: "u-1", FullName: "Ada"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	p, err = tables.Profile(ctx, "u-1")
	if err != nil || p == nil || p.FullName != "Ada" {
		t.Errorf("Profile = %+v, %v", p, err)
	}
}
