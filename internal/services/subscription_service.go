package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/api"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/observer"
)

// SubscriptionService manages the authenticated user's channel
// subscriptions.
type SubscriptionService struct {
	API UserAPI
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(a UserAPI) *SubscriptionService {
	return &SubscriptionService{API: a}
}

// List returns the user's subscriptions.
func (s *SubscriptionService) List(ctx context.Context) ([]domain.Subscription, error) {
	path, err := userPath(s.API)
	if err != nil {
		return nil, err
	}
	return api.FetchList[domain.Subscription](ctx, s.API, http.MethodGet, path+"/subscriptions", nil)
}

// ListAsync runs List on a background goroutine.
func (s *SubscriptionService) ListAsync(ctx context.Context) <-chan observer.Result[[]domain.Subscription] {
	return observer.Go(ctx, observer.KindSubscriptions, s.List)
}

// Subscribe subscribes the user to req.ChannelID.
func (s *SubscriptionService) Subscribe(ctx context.Context, req SubscribeRequest) (*domain.Subscription, error) {
	if !req.IsValid() {
		return nil, fmt.Errorf("%w: channel id is blank", ErrInvalidRequest)
	}
	return api.Fetch[domain.Subscription](ctx, s.API, http.MethodPost, channelSubscriptionsPath(req.ChannelID), nil)
}

// SubscribeAsync runs Subscribe on a background goroutine.
func (s *SubscriptionService) SubscribeAsync(ctx context.Context, req SubscribeRequest) <-chan observer.Result[*domain.Subscription] {
	return observer.Go(ctx, observer.KindSubscribe, func(ctx context.Context) (*domain.Subscription, error) {
		return s.Subscribe(ctx, req)
	})
}

// Unsubscribe removes the user's subscription to req.ChannelID.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, req SubscribeRequest) error {
	if !req.IsValid() {
		return fmt.Errorf("%w: channel id is blank", ErrInvalidRequest)
	}
	_, err := s.API.Do(ctx, http.MethodDelete, channelSubscriptionsPath(req.ChannelID), nil)
	return err
}

// IsSubscribed reports whether the user is subscribed to channelID.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, channelID string) (bool, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return false, fmt.Errorf("%w: channel id is blank", ErrInvalidRequest)
	}
	subs, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, sub := range subs {
		if sub.ChannelID == channelID {
			return true, nil
		}
	}
	return false, nil
}

// Channels lists the channels available to subscribe to.
func (s *SubscriptionService) Channels(ctx context.Context) ([]domain.Channel, error) {
	return api.FetchList[domain.Channel](ctx, s.API, http.MethodGet, "/channels", nil)
}

func channelSubscriptionsPath(channelID string) string {
	return "/channels/" + url.PathEscape(strings.TrimSpace(channelID)) + "/subscriptions"
}
