package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/api"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/observer"
)

// UserAPI is the transport contract required by UserService and
// SubscriptionService. UserID identifies the authenticated account.
type UserAPI interface {
	api.Doer
	UserID() (string, error)
}

// UserService reads and updates the authenticated user's profile.
type UserService struct {
	API UserAPI
}

// NewUserService constructs a UserService.
func NewUserService(a UserAPI) *UserService {
	return &UserService{API: a}
}

// Current returns the authenticated user's profile.
func (s *UserService) Current(ctx context.Context) (*domain.User, error) {
	path, err := userPath(s.API)
	if err != nil {
		return nil, err
	}
	return api.Fetch[domain.User](ctx, s.API, http.MethodGet, path, nil)
}

// Update sends only the fields set on req. An empty request is rejected
// without contacting the service.
func (s *UserService) Update(ctx context.Context, req UpdateUserRequest) (*domain.User, error) {
	if !req.IsValid() {
		return nil, fmt.Errorf("%w: no user fields set", ErrInvalidRequest)
	}
	path, err := userPath(s.API)
	if err != nil {
		return nil, err
	}
	return api.Fetch[domain.User](ctx, s.API, http.MethodPut, path, req.ToEntity())
}

// UpdateAsync runs Update on a background goroutine.
func (s *UserService) UpdateAsync(ctx context.Context, req UpdateUserRequest) <-chan observer.Result[*domain.User] {
	return observer.Go(ctx, observer.KindUpdateUser, func(ctx context.Context) (*domain.User, error) {
		return s.Update(ctx, req)
	})
}

func userPath(a UserAPI) (string, error) {
	id, err := a.UserID()
	if err != nil {
		return "", fmt.Errorf("resolve user id: %w", err)
	}
	return "/users/" + url.PathEscape(id), nil
}
