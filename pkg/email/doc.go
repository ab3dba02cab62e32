// Package email sends transactional notification mail.
//
// EmailSender has two implementations: a Postmark client for production and
// DevSender, which writes each message to disk as an HTML file plus JSON
// metadata. NewFromConfig picks Postmark when both tokens are set.
//
//	sender, err := email.NewFromConfig(cfg)
//	id, err := sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "patient@example.com",
//		Subject:  "Appointment reminder",
//		BodyHTML: html,
//		Tag:      "appointment_reminder",
//	})
//
// The templates subpackage provides the shared HTML layout built on templ.
package email
