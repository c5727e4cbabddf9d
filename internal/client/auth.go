package client

import (
	"context"
	"errors"
	"sync"
)

const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

// Auth is the client session: the signed-in user and whether the initial
// lookup has finished.
type Auth struct {
	api      AuthAPI
	notify   Notifier
	navigate Navigator

	mu          sync.Mutex
	user        *User
	initialized bool
	loading     bool
}

func NewAuth(api AuthAPI, notify Notifier, navigate Navigator) *Auth {
	return &Auth{api: api, notify: notify, navigate: navigate}
}

func (a *Auth) User() (User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return User{}, false
	}
	return *a.user, true
}

func (a *Auth) IsAuthenticated() bool {
	_, ok := a.User()
	return ok
}

func (a *Auth) Initialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

func (a *Auth) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *Auth) setUser(u *User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *Auth) setLoading(v bool) {
	a.mu.Lock()
	a.loading = v
	a.mu.Unlock()
}

// Init looks up the current user. A failed lookup means signed out.
func (a *Auth) Init(ctx context.Context) {
	u, err := a.api.Me(ctx)
	a.mu.Lock()
	if err == nil {
		a.user = &u
	}
	a.initialized = true
	a.mu.Unlock()
}

// FetchUser refreshes the current user, clearing it on failure.
func (a *Auth) FetchUser(ctx context.Context) (User, error) {
	u, err := a.api.Me(ctx)
	if err != nil {
		a.setUser(nil)
		return User{}, err
	}
	a.setUser(&u)
	return u, nil
}

// errorMessage is the server's error text for err, or fallback.
func errorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (a *Auth) Login(ctx context.Context, c Credentials) error {
	a.setLoading(true)
	defer a.setLoading(false)

	u, err := a.api.Login(ctx, c)
	if err != nil {
		a.notify.Error(errorMessage(err, "Login failed"))
		return err
	}
	a.setUser(&u)
	a.notify.Success("Welcome back!")
	a.navigate.Navigate(DashboardPath)
	return nil
}

func (a *Auth) Signup(ctx context.Context, in SignupInput) error {
	a.setLoading(true)
	defer a.setLoading(false)

	u, err := a.api.Signup(ctx, in)
	if err != nil {
		a.notify.Error(errorMessage(err, "Signup failed"))
		return err
	}
	a.setUser(&u)
	a.notify.Success("Account created successfully!")
	a.navigate.Navigate(DashboardPath)
	return nil
}

// Logout signs out locally even when the server call fails.
func (a *Auth) Logout(ctx context.Context) error {
	a.setLoading(true)
	defer a.setLoading(false)

	err := a.api.Logout(ctx)
	a.setUser(nil)
	if err != nil {
		a.notify.Error("Logout failed")
	} else {
		a.notify.Success("Logged out successfully")
	}
	a.navigate.Navigate(LoginPath)
	return err
}
