// Package whatsapp is the WhatsApp template message channel of the alert pipeline.
//
// Handlers read the "mobile" event field, normalize it with NormalizePhone and
// enqueue a Job naming a pre-approved template and its ordered body variables.
// A number that cannot be normalized is still enqueued as given; the Worker
// rejects it as a permanent failure so it lands in the dead letter queue with
// reason "permanent" instead of being retried.
//
// Jobs carry Meta["dedupeKey"] ("<EVENT>:<bookingId>" or "<EVENT>:<userId>").
// The key is logged with every delivery; no component deduplicates on it.
//
// Senders:
//   - MSG91Sender, the MSG91 bulk outbound API with the authkey header
//   - NewLogSender, logs messages instead of sending them
package whatsapp
