package services

import (
	"context"
	"fmt"

	appconfig "crew-match-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// APNsNotifier pushes alerts to the registered device of a user
type APNsNotifier struct {
	client   *apns2.Client
	userRepo UserStore
	topic    string
}

// NewAPNsNotifier creates a token-authenticated APNs notifier
func NewAPNsNotifier(userRepo UserStore, cfg appconfig.APNsConfig) (*APNsNotifier, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsNotifier{
		client:   client,
		userRepo: userRepo,
		topic:    cfg.Topic,
	}, nil
}

// Notify sends an alert to userID; users without a push token are skipped
func (n *APNsNotifier) Notify(ctx context.Context, userID, title, body string) error {
	user, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.PushToken == nil {
		return nil
	}

	notification := &apns2.Notification{
		DeviceToken: *user.PushToken,
		Topic:       n.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}

	log.Debug().Str("user_id", userID).Str("apns_id", res.ApnsID).Msg("Push notification sent")
	return nil
}

// NopNotifier drops every notification
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(context.Context, string, string, string) error { return nil }
