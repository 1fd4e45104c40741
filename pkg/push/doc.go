// Package push is the mobile push channel of the alert pipeline.
//
// Handlers resolve the target user from the "userId" event field, render the
// notification title and body, and enqueue a Job on the "push" queue. Queue
// refuses jobs for users without an active device token (ErrNoActiveTokens);
// the handlers log those as skipped.
//
// Worker resolves device tokens at send time when the job carries none and
// sends one Message per device. Tokens the provider reports as dead
// (ErrInvalidToken) are deactivated in the TokenStore. A job is retried only
// when no device received it and at least one failure was transient.
//
// Token stores:
//   - MemoryTokenStore for development and tests
//   - RedisTokenStore, one set of active tokens per user and a hash per token
//
// Senders:
//   - FCMSender, Firebase Cloud Messaging HTTP v1 with service account credentials
//   - NewLogSender, logs messages instead of sending them
package push
