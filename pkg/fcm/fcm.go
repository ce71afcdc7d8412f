package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"

	"leadbook-backend/pkg/logger"
)

const notificationIcon = "/icon-192.svg"

// Client wraps Firebase Cloud Messaging
type Client struct {
	messagingClient *messaging.Client
	log             *logrus.Entry
}

// NewClient creates a messaging client from an initialized Firebase app
func NewClient(ctx context.Context, app *firebase.App) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log := logger.For("fcm")
	log.Info("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
		log:             log,
	}, nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title       string
	Body        string
	ImageURL    string            // optional
	Data        map[string]string // custom payload
	ClickAction string            // URL opened when the notification is clicked
}

func (n NotificationData) notification() *messaging.Notification {
	return &messaging.Notification{
		Title:    n.Title,
		Body:     n.Body,
		ImageURL: n.ImageURL,
	}
}

func (n NotificationData) webpush() *messaging.WebpushConfig {
	cfg := &messaging.WebpushConfig{
		Notification: &messaging.WebpushNotification{
			Title: n.Title,
			Body:  n.Body,
			Icon:  notificationIcon,
		},
	}
	if n.ClickAction != "" {
		cfg.FCMOptions = &messaging.WebpushFCMOptions{Link: n.ClickAction}
	}
	return cfg
}

// SendToDevice sends a push notification to one device token
func (c *Client) SendToDevice(ctx context.Context, token string, notification NotificationData) error {
	response, err := c.messagingClient.Send(ctx, &messaging.Message{
		Token:        token,
		Notification: notification.notification(),
		Data:         notification.Data,
		Webpush:      notification.webpush(),
	})
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	c.log.Debugf("[FCM] Message sent successfully: %s", response)
	return nil
}

// SendToDevices sends a push notification to many device tokens.
// Returns the tokens that failed to receive it.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, notification NotificationData) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: notification.notification(),
		Data:         notification.Data,
		Webpush:      notification.webpush(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	c.log.Infof("[FCM] Multicast sent: %d success, %d failures", response.SuccessCount, response.FailureCount)

	var failedTokens []string
	for i, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[i])
			c.log.WithError(resp.Error).Warnf("[FCM] Failed to send to token %s", Redact(tokens[i]))
		}
	}

	return failedTokens, nil
}

// Redact shortens a device token for logs
func Redact(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:12] + "..."
}
