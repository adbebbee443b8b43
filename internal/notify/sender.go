// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrz1836/postmark"
)

// # Delivery Contract

// Email is a fully rendered message ready for delivery.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	Tag      string
}

// EmailSender delivers a rendered email through a provider.
type EmailSender interface {
	Send(context context.Context, email Email) error
}

// # Postmark Sender

// PostmarkSender delivers email through the Postmark transactional API.
type PostmarkSender struct {
	client      *postmark.Client
	senderEmail string
}

// NewPostmarkSender constructs a Postmark-backed sender.
//
// Both tokens are required. Failing here at startup beats silently dropping
// every email in production.
func NewPostmarkSender(serverToken, accountToken, senderEmail string) (*PostmarkSender, error) {
	if serverToken == "" || accountToken == "" {
		return nil, fmt.Errorf("notify: postmark tokens are required")
	}
	if senderEmail == "" {
		return nil, fmt.Errorf("notify: sender email is required")
	}

	return &PostmarkSender{
		client:      postmark.NewClient(serverToken, accountToken),
		senderEmail: senderEmail,
	}, nil
}

/*
Send delivers the email via Postmark.

Description: Tracking is limited to opens and HTML link clicks. Postmark can
accept the request yet refuse the message, so the response error code is
checked as well.

Parameters:
  - context: context.Context
  - email: Email

Returns:
  - error: Transport or provider-side failures
*/
func (sender *PostmarkSender) Send(context context.Context, email Email) error {
	response, err := sender.client.SendEmail(context, postmark.Email{
		From:       sender.senderEmail,
		To:         email.To,
		Subject:    email.Subject,
		Tag:        email.Tag,
		HTMLBody:   email.HTMLBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return fmt.Errorf("notify_postmark_send_failed: %w", err)
	}
	if response.ErrorCode > 0 {
		return fmt.Errorf("notify_postmark_rejected: %d - %s", response.ErrorCode, response.Message)
	}

	return nil
}

// # Development Sender

// LogSender writes emails to the structured log instead of delivering them.
// Used in development where no Postmark tokens are configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the email. The body is included so reset links are clickable
// straight from the development console.
func (sender *LogSender) Send(context context.Context, email Email) error {
	sender.logger.InfoContext(context, "notify_email_logged",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("tag", email.Tag),
		slog.String("html_body", email.HTMLBody),
	)
	return nil
}
