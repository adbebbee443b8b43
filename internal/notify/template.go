// Copyright (c) 2026 Lexora. All rights reserved.
// Author: dev@lexora.app

package notify

import (
	"fmt"
	"html"
)

// # Email Templates

// renderEmail resolves a job into a deliverable email.
//
// Templates are deliberately simple inline HTML. User-supplied values are
// escaped before interpolation.
func renderEmail(job *Job) (Email, error) {
	switch job.Kind {
	case KindWelcome:
		return welcomeEmail(job), nil
	case KindPasswordReset:
		resetURL, ok := job.Params[ParamResetURL]
		if !ok || resetURL == "" {
			return Email{}, fmt.Errorf("notify_template_missing_param: %s", ParamResetURL)
		}
		return passwordResetEmail(job, resetURL), nil
	default:
		return Email{}, fmt.Errorf("notify_template_unknown_kind: %s", job.Kind)
	}
}

// welcomeEmail greets a freshly provisioned account.
func welcomeEmail(job *Job) Email {
	name := html.EscapeString(displayName(job))

	body := fmt.Sprintf(`<html><body>
<h2>Welcome to Lexora, %s!</h2>
<p>Your account has been created. You can sign in with this email address.</p>
<p>If you did not expect this email, please contact your administrator.</p>
<p>— The Lexora Team</p>
</body></html>`, name)

	return Email{
		To:       job.Email,
		Subject:  "Welcome to Lexora",
		HTMLBody: body,
		Tag:      string(KindWelcome),
	}
}

// passwordResetEmail carries the single-purpose reset link.
func passwordResetEmail(job *Job, resetURL string) Email {
	name := html.EscapeString(displayName(job))
	link := html.EscapeString(resetURL)

	body := fmt.Sprintf(`<html><body>
<h2>Password reset requested</h2>
<p>Hi %s,</p>
<p>We received a request to reset your Lexora password. This link expires shortly:</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, you can safely ignore this email. Your password will not change.</p>
<p>— The Lexora Team</p>
</body></html>`, name, link)

	return Email{
		To:       job.Email,
		Subject:  "Reset your Lexora password",
		HTMLBody: body,
		Tag:      string(KindPasswordReset),
	}
}

// displayName falls back to the address when the account has no name.
func displayName(job *Job) string {
	if job.Name != "" {
		return job.Name
	}
	return job.Email
}
