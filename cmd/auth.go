package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/daily-hours/internal/config"
	"github.com/Tiliavir/daily-hours/internal/supabase"
)

var (
	authEmail    string
	authPassword string
	authOTP      bool
	whoamiName   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Supabase with a password or an e-mailed code",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a Supabase account",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "E-mail address (prompted when empty)")
		c.Flags().StringVar(&authPassword, "password", "", "Password (prompted when empty)")
	}
	loginCmd.Flags().BoolVar(&authOTP, "otp", false, "Sign in with a one-time code sent by e-mail")
	whoamiCmd.Flags().StringVar(&whoamiName, "set-name", "", "Store a full name in your profile")
}

// supabaseConfig loads the config and checks that Supabase is set up.
func supabaseConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		return cfg, errors.New("supabase.url and supabase.anon_key must be set in the config")
	}
	return cfg, nil
}

// asker reads one answer for label. A non-zero mask hides what is typed.
type asker func(label string, mask rune) (string, error)

var errEmptyAnswer = errors.New("a value is required")

var promptTemplates = &promptui.PromptTemplates{
	Prompt:  "{{ . }}: ",
	Valid:   "{{ . | green }}: ",
	Invalid: "{{ . | red }}: ",
	Success: "{{ . | bold }}: ",
}

// ask prompts on the terminal.
func ask(label string, mask rune) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Mask:      mask,
		Templates: promptTemplates,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errEmptyAnswer
			}
			return nil
		},
	}
	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(v), nil
}

// credentials takes e-mail and password from the flags, asking for what is
// missing.
func credentials(ask asker, wantPassword bool) (email, password string, err error) {
	email = authEmail
	if email == "" {
		if email, err = ask("E-mail", 0); err != nil {
			return "", "", err
		}
	}
	password = authPassword
	if wantPassword && password == "" {
		if password, err = ask("Password", '*'); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

func saveSession(cfg config.Config, sess *supabase.Session) {
	file := &supabase.SessionFile{Path: cfg.SessionPath()}
	if err := file.Save(sess); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("Signed in as %s (%s)\n", sess.User.DisplayName(), sess.User.Email)
	if cfg.Backend != config.BackendSupabase {
		fmt.Fprintf(os.Stderr, "Warning: backend is %q; set backend: supabase to use this account\n", cfg.Backend)
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := supabaseConfig()
	if err != nil {
		return err
	}
	email, password, err := credentials(ask, !authOTP)
	if err != nil {
		return err
	}
	client := supabaseClient(cfg)
	ctx := context.Background()

	var sess *supabase.Session
	if authOTP {
		if err := client.SendMagicLink(ctx, email); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		code, err := ask("Code from the e-mail", 0)
		if err != nil {
			return err
		}
		sess, err = client.VerifyOTP(ctx, email, code)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	} else {
		sess, err = client.SignInWithPassword(ctx, email, password)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	saveSession(cfg, sess)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	cfg, err := supabaseConfig()
	if err != nil {
		return err
	}
	email, password, err := credentials(ask, true)
	if err != nil {
		return err
	}

	sess, err := supabaseClient(cfg).SignUp(context.Background(), email, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if sess.Token == nil {
		fmt.Printf("Account created for %s. Confirm the e-mail, then run: hrs login\n", email)
		return nil
	}
	saveSession(cfg, sess)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := supabaseConfig()
	if err != nil {
		return err
	}
	file := &supabase.SessionFile{Path: cfg.SessionPath()}
	sess, err := file.Load()
	if errors.Is(err, supabase.ErrNotSignedIn) {
		fmt.Println("Not signed in.")
		return nil
	}
	if err == nil {
		if err := supabaseClient(cfg).SignOut(context.Background(), sess.Token); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not revoke the session: %v\n", err)
		}
	}
	if err := file.Delete(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.Backend != config.BackendSupabase {
		fmt.Printf("%s (local %s backend)\n", cfg.User, cfg.Backend)
		return nil
	}

	client := supabaseClient(cfg)
	file := &supabase.SessionFile{Path: cfg.SessionPath()}
	sess, err := file.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	ts := client.TokenSource(ctx, sess, file)
	tok, err := ts.Token()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	user, err := client.GetUser(ctx, tok.AccessToken)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	tables := client.Tables(ctx, ts)
	if whoamiName != "" {
		if err := tables.UpdateProfile(ctx, supabase.Profile{ID: user.ID, FullName: whoamiName}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	profile, err := tables.Profile(ctx, user.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	fmt.Printf("User:  %s\n", user.DisplayName())
	if profile != nil && profile.FullName != "" {
		fmt.Printf("Name:  %s\n", profile.FullName)
	}
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("ID:    %s\n", user.ID)
	return nil
}
