// Package auth decides whether a client is signed in using a cached
// snapshot in local storage, and gates write actions behind login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"campus_portal/internal/events"
	"campus_portal/internal/models"
	"campus_portal/internal/storage"

	"golang.org/x/sync/singleflight"
)

var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
)

// ServiceContext tags the flow a user was in when login interrupted it.
type ServiceContext string

const (
	ContextRepair    ServiceContext = "repair"
	ContextFood      ServiceContext = "food"
	ContextLostFound ServiceContext = "lost-and-found"
)

type SignUpInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
}

// Backend is the remote authority for accounts.
type Backend interface {
	SignUp(ctx context.Context, input SignUpInput) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// State is published on events.AuthChanged.
type State struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

// Redirect tells the caller to send the user to the login page.
type Redirect struct {
	LoginURL  string `json:"redirect"`
	ReturnURL string `json:"return_url"`
}

// Authenticator is shared by all clients; Gate is bound to one.
type Authenticator struct {
	backend   Backend
	loginPath string
	sfg       singleflight.Group
}

func NewAuthenticator(backend Backend, loginPath string) *Authenticator {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Authenticator{backend: backend, loginPath: loginPath}
}

func (a *Authenticator) Gate(scopes storage.Scopes, bus *events.Bus) *Gate {
	return &Gate{auth: a, local: scopes.Local, session: scopes.Session, bus: bus}
}

type Gate struct {
	auth    *Authenticator
	local   storage.Store
	session storage.Store
	bus     *events.Bus
}

// IsAuthenticated answers from the snapshot alone.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	return g.CurrentUserSync(ctx) != nil
}

// CurrentUserSync returns the cached user, possibly stale.
func (g *Gate) CurrentUserSync(ctx context.Context) *models.User {
	flag, ok, err := g.local.Get(ctx, storage.KeyIsAuthenticated)
	if err != nil {
		log.Printf("auth: failed to read auth flag: %v", err)
		return nil
	}
	if !ok || flag != "true" {
		return nil
	}

	var user models.User
	found, err := storage.GetJSON(ctx, g.local, storage.KeyUser, &user)
	if err != nil {
		log.Printf("auth: failed to read user snapshot: %v", err)
		return nil
	}
	if !found || user.ID == 0 {
		// flag without a usable user
		if err := g.clearSnapshot(ctx); err != nil {
			log.Printf("auth: failed to clear snapshot: %v", err)
		}
		return nil
	}
	return &user
}

// CurrentUser refreshes the snapshot from the backend. Any backend error
// yields a nil user: callers must treat that as signed out.
func (g *Gate) CurrentUser(ctx context.Context) (*models.User, error) {
	cached := g.CurrentUserSync(ctx)
	if cached == nil {
		return nil, nil
	}

	// the shared call must outlive any single caller's cancellation
	shared := context.WithoutCancel(ctx)
	v, err, _ := g.auth.sfg.Do(strconv.FormatUint(uint64(cached.ID), 10), func() (interface{}, error) {
		return g.auth.backend.GetUser(shared, cached.ID)
	})
	if errors.Is(err, ErrUserNotFound) {
		if err := g.clearSnapshot(ctx); err != nil {
			return nil, err
		}
		g.publish(State{})
		return nil, nil
	}
	if err != nil {
		log.Printf("auth: refresh for user %d failed: %v", cached.ID, err)
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	user := v.(*models.User)
	if !user.IsActive {
		if err := g.clearSnapshot(ctx); err != nil {
			return nil, err
		}
		g.publish(State{})
		return nil, nil
	}
	if err := g.setSnapshot(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (g *Gate) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := g.auth.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := g.setSnapshot(ctx, user); err != nil {
		return nil, err
	}
	g.publish(State{Authenticated: true, User: user})
	return user, nil
}

func (g *Gate) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	user, err := g.auth.backend.SignUp(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := g.setSnapshot(ctx, user); err != nil {
		return nil, err
	}
	g.publish(State{Authenticated: true, User: user})
	return user, nil
}

func (g *Gate) SignOut(ctx context.Context) error {
	if err := g.clearSnapshot(ctx); err != nil {
		return err
	}
	g.publish(State{})
	return nil
}

// RequireAuth runs onSuccess at once when signed in. Otherwise it records
// where to come back to and returns a Redirect; onSuccess is not called.
func (g *Gate) RequireAuth(ctx context.Context, returnURL string, svc ServiceContext, onSuccess func(context.Context) error) (*Redirect, error) {
	if g.IsAuthenticated(ctx) {
		if onSuccess == nil {
			return nil, nil
		}
		return nil, onSuccess(ctx)
	}
	return g.LoginRedirect(ctx, returnURL, svc)
}

// LoginRedirect records where to come back to and builds the login
// redirect, whatever the snapshot says. Used when the backend rejects a
// session the snapshot still considers signed in.
func (g *Gate) LoginRedirect(ctx context.Context, returnURL string, svc ServiceContext) (*Redirect, error) {
	returnURL = SafeReturnURL(returnURL)
	if err := g.session.Set(ctx, storage.KeyReturnURL, returnURL); err != nil {
		return nil, fmt.Errorf("failed to store return url: %w", err)
	}
	if err := g.session.Set(ctx, storage.KeyServiceContext, string(svc)); err != nil {
		return nil, fmt.Errorf("failed to store service context: %w", err)
	}

	return &Redirect{
		LoginURL:  g.auth.loginPath + "?returnUrl=" + url.QueryEscape(returnURL),
		ReturnURL: returnURL,
	}, nil
}

// ConsumeReturn reads and clears the post-login destination.
func (g *Gate) ConsumeReturn(ctx context.Context) (string, ServiceContext, bool) {
	returnURL, ok, err := g.session.Get(ctx, storage.KeyReturnURL)
	if err != nil || !ok {
		return "", "", false
	}
	svc, _, err := g.session.Get(ctx, storage.KeyServiceContext)
	if err != nil {
		log.Printf("auth: failed to read service context: %v", err)
	}

	for _, key := range []string{storage.KeyReturnURL, storage.KeyServiceContext} {
		if err := g.session.Remove(ctx, key); err != nil {
			log.Printf("auth: failed to clear %s: %v", key, err)
		}
	}
	return SafeReturnURL(returnURL), ServiceContext(svc), true
}

// HasRole reports whether the cached user holds one of roles.
func (g *Gate) HasRole(ctx context.Context, roles ...models.UserRole) bool {
	user := g.CurrentUserSync(ctx)
	if user == nil {
		return false
	}
	for _, r := range roles {
		if user.Role == string(r) {
			return true
		}
	}
	return false
}

// SafeReturnURL keeps only same-site relative paths.
func SafeReturnURL(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}

func (g *Gate) setSnapshot(ctx context.Context, user *models.User) error {
	if err := storage.SetJSON(ctx, g.local, storage.KeyUser, user); err != nil {
		return fmt.Errorf("failed to store user snapshot: %w", err)
	}
	if err := g.local.Set(ctx, storage.KeyIsAuthenticated, "true"); err != nil {
		return fmt.Errorf("failed to store auth flag: %w", err)
	}
	return nil
}

func (g *Gate) clearSnapshot(ctx context.Context) error {
	if err := g.local.Remove(ctx, storage.KeyUser); err != nil {
		return fmt.Errorf("failed to clear user snapshot: %w", err)
	}
	if err := g.local.Remove(ctx, storage.KeyIsAuthenticated); err != nil {
		return fmt.Errorf("failed to clear auth flag: %w", err)
	}
	return nil
}

func (g *Gate) publish(s State) {
	if g.bus != nil {
		g.bus.Publish(events.AuthChanged, s)
	}
}
