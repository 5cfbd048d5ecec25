package service

import "fmt"

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

func magicLinkEmailTemplate(name, magicURL, appName string) (string, string) {
	subject := fmt.Sprintf("Sign in to %s", appName)
	body := fmt.Sprintf(`%s

Click this link to sign in to your account:
%s

This link expires in 10 minutes and can only be used once.

If you didn't request this, ignore this email.

Best,
The %s Team`, greeting(name), magicURL, appName)

	return subject, body
}

func sessionCreatedEmailTemplate(name, sessionName, dashboardURL, appName string) (string, string) {
	subject := fmt.Sprintf("New browser extension connected to %s", appName)
	body := fmt.Sprintf(`%s

A browser extension session named "%s" was just connected to your account.
It can sync your reading list and bookmarks.

If this wasn't you, sign in and revoke it: %s

Best,
The %s Team`, greeting(name), sessionName, dashboardURL, appName)

	return subject, body
}

func accountDeletedEmailTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s account has been deleted", appName)
	body := fmt.Sprintf(`%s

Your account and all of its goals, habits, journals and synced items have been permanently deleted.

Thanks for using %s.

Best,
The %s Team`, greeting(name), appName, appName)

	return subject, body
}
