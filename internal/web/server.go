package web

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/daily-hours/internal/view"
)

// Authenticator maps a request's bearer token to a user and the store that
// user's entries live in.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (userID string, st view.Store, err error)
}

// Server is the hrs JSON API.
type Server struct {
	auth   Authenticator
	log    *log.Logger
	opts   []view.Option
	router *gin.Engine

	mu       sync.Mutex
	sessions map[string]*view.Session
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error log.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithSessionOptions passes options to every view session the server opens.
func WithSessionOptions(opts ...view.Option) Option {
	return func(s *Server) { s.opts = append(s.opts, opts...) }
}

// NewServer creates the API server.
func NewServer(auth Authenticator, opts ...Option) *Server {
	s := &Server{
		auth:     auth,
		log:      log.New(io.Discard, "", 0),
		sessions: map[string]*view.Session{},
	}
	for _, o := range opts {
		o(s)
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(s.log.Writer()), gin.Recovery())
	s.router = router

	api := router.Group("/api", s.requireUser)
	{
		api.GET("/me", s.handleMe)
		api.GET("/grid", s.handleGrid)
		api.GET("/days/:date", s.handleDay)
		api.POST("/days/:date/tasks", s.handleAddTask)
		api.PATCH("/days/:date/tasks/:id", s.handleEditTask)
		api.DELETE("/days/:date/tasks/:id", s.handleRemoveTask)
		api.POST("/days/:date/leave", s.handleToggleLeave)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the web server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Flush waits for the queued writes of every open session.
func (s *Server) Flush(ctx context.Context) error {
	s.mu.Lock()
	open := make([]*view.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		if err := sess.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

const sessionKey = "hrs.session"

// requireUser resolves the bearer token and attaches the user's session.
func (s *Server) requireUser(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	userID, st, err := s.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		s.log.Printf("Authentication failed: %v", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "not signed in",
		})
		return
	}
	c.Set(sessionKey, s.session(userID, st))
	c.Next()
}

// session returns the cached session of userID, opening one on first use.
// The initial load runs without holding mu.
func (s *Server) session(userID string, st view.Store) *view.Session {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if ok {
		return sess
	}

	opened := view.Open(context.Background(), st, userID, view.Selection{}, s.opts...)
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	s.sessions[userID] = opened
	return opened
}

func sessionOf(c *gin.Context) *view.Session {
	return c.MustGet(sessionKey).(*view.Session)
}
