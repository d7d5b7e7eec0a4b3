package email

import "fmt"

// MagicLinkMessage composes the passwordless login email.
func MagicLinkMessage(name, link string) (subject, body string) {
	subject = "🎄 Your Secret Santa Login Link"
	body = fmt.Sprintf(`Hi %s!

Click the link below to log in to your Secret Santa account:

%s

This link will expire in 1 hour.

If you didn't request this, you can safely ignore this email.

Happy gifting! 🎁
`, name, link)
	return subject, body
}

// AssignmentMessage composes the email telling a giver who they drew.
func AssignmentMessage(giverName, receiverName, eventName, organizerName string) (subject, body string) {
	subject = fmt.Sprintf("🎅 Your Secret Santa Assignment - %s", eventName)
	body = fmt.Sprintf(`Hi %s!

Your Secret Santa assignment for "%s" is ready! 🎁

You are the Secret Santa for: %s

Keep it secret, and have fun shopping for the perfect gift!

Event Details:
- Event: %s
- Organized by: %s

Happy gifting! 🎄
`, giverName, eventName, receiverName, eventName, organizerName)
	return subject, body
}
