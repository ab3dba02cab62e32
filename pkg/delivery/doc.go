// Package delivery sends notifications over out-of-band channels and
// aggregates per-channel outcomes into a report.
//
// EmailSender and SMSSender share one attempt pipeline: the user's channel
// preference is checked, then quiet hours (critical notifications bypass
// them), then the recipient's contact details, then the template is rendered
// and handed to the transport. Every outcome except a disabled channel is
// written to the delivery log through a Tracker, which never blocks the
// caller.
//
// SendWithRetry repeats transient transport failures with exponential
// backoff (2s, 4s, ...). Policy outcomes such as quiet hours or a missing
// phone number are terminal and returned immediately.
//
// The Orchestrator fans a notification out to in-app, email, SMS and push in
// that order:
//
//	orch := delivery.NewOrchestrator(store,
//		delivery.WithInApp(broadcaster),
//		delivery.WithEmail(emailSender),
//		delivery.WithSMS(smsSender),
//	)
//	report, err := orch.Deliver(ctx, tenantID, n)
package delivery
