package mailer

import "context"

// Mailer sends the four transactional notifications of the auth flows. Every
// method takes the recipient address, the recipient's display name and the
// action link to embed.
type Mailer interface {
	SendVerifyEmail(ctx context.Context, to, name, link string) error
	SendVerifyEmailReminder(ctx context.Context, to, name, link string) error
	SendResetPasswordEmail(ctx context.Context, to, name, link string) error
	SendConfirmResetPasswordEmail(ctx context.Context, to, name, link string) error
}
