package email

import (
	"fmt"
	"html"
)

// The message bodies mirror the marketing site's branding. Links carry the
// plaintext token; only its digest is stored server-side.

func VerificationMessage(to, verifyURL string) Message {
	body := fmt.Sprintf(`
		<h2>Welcome to MIDTOWN AABASHON LTD</h2>
		<p>Please verify your email by clicking the link below:</p>
		<a href=%q style="background-color: #0e4e82; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block; margin: 20px 0;">Verify Email</a>
		<p>If you didn't create an account, please ignore this email.</p>`,
		verifyURL)
	return Message{
		To:       to,
		Subject:  "Email Verification - MIDTOWN AABASHON LTD",
		HTMLBody: body,
		Tag:      "email-verification",
	}
}

func PasswordResetMessage(to, resetURL string) Message {
	body := fmt.Sprintf(`
		<h2>Password Reset Request</h2>
		<p>You are receiving this email because you (or someone else) has requested to reset your password.</p>
		<p>Please click the link below to reset your password:</p>
		<a href=%q style="background-color: #0e4e82; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block; margin: 20px 0;">Reset Password</a>
		<p>If you did not request this, please ignore this email and your password will remain unchanged.</p>
		<p><strong>Note:</strong> This link will expire in 10 minutes.</p>`,
		resetURL)
	return Message{
		To:       to,
		Subject:  "Password Reset Request - MIDTOWN AABASHON LTD",
		HTMLBody: body,
		Tag:      "password-reset",
	}
}

func EnquiryReplyMessage(to, name, reply string) Message {
	body := fmt.Sprintf(`
		<h2>Response to Your Query</h2>
		<p>Dear %s,</p>
		<p>Thank you for contacting MIDTOWN AABASHON LTD.</p>
		<div style="background-color: #f8f9fa; padding: 20px; border-left: 4px solid #0e4e82; margin: 20px 0;">%s</div>
		<p>If you have any further questions, please don't hesitate to contact us.</p>
		<hr>
		<p>Best regards,<br>MIDTOWN AABASHON LTD Team</p>`,
		html.EscapeString(name),
		html.EscapeString(reply))
	return Message{
		To:       to,
		Subject:  "Response to Your Query - MIDTOWN AABASHON LTD",
		HTMLBody: body,
		Tag:      "enquiry-reply",
	}
}

func EnquiryNotificationMessage(to, fromName, fromEmail, subject, message string) Message {
	body := fmt.Sprintf(`
		<h2>New Enquiry Received</h2>
		<p><strong>From:</strong> %s &lt;%s&gt;</p>
		<p><strong>Subject:</strong> %s</p>
		<p>%s</p>`,
		html.EscapeString(fromName),
		html.EscapeString(fromEmail),
		html.EscapeString(subject),
		html.EscapeString(message))
	return Message{
		To:       to,
		Subject:  "New Enquiry - " + subject,
		HTMLBody: body,
		Tag:      "enquiry",
	}
}
