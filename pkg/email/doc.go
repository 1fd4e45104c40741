// Package email is the email channel of the alert pipeline.
//
// It turns alert events into email jobs, queues them on the "email" queue and
// delivers them through a provider-agnostic EmailSender.
//
// # Flow
//
// NewRouter registers one handler per event type on an alert.Router. A handler
// reads the "email" field of the event data (or the configured admin list for
// CONTACT_REQUEST), builds a Job and enqueues it through Queue. Events without
// a recipient are logged and dropped.
//
// Worker is registered on a queue.Worker through Handler. Process renders the
// job template and sends it:
//
//	sender, err := email.NewSender(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	w := email.NewWorker(sender, log)
//	if err := qw.RegisterHandler(w.Handler()); err != nil {
//	    return err
//	}
//
// # Templates
//
// Bodies are mustache templates embedded in the templates subpackage, one file
// per Template value. Every template has a default subject that a non-empty
// Job.Subject overrides. An unknown template is a permanent failure and goes
// straight to the dead letter queue.
//
// # Providers
//
// NewSender selects the provider by Config.Provider:
//   - postmark: NewPostmarkClient, transactional API with open and link tracking
//   - smtp: NewSMTPSender, any SMTP relay via go-mail
//   - ses: NewSESSender, Amazon SES v2 with the default AWS credential chain
//   - dev: NewDevSender, writes HTML and JSON files to a directory
//
// An SMTP sender without a host fails every send with ErrNotConfigured, so the
// jobs stay on the retry path until the relay is configured.
//
// # Error Handling
//
//   - ErrInvalidConfig: configuration validation failed
//   - ErrInvalidParams: email parameters validation failed
//   - ErrFailedToSendEmail: provider call failed
//   - ErrNotConfigured: the provider is missing required settings
//   - ErrUnknownTemplate: the job names no embedded template
package email
