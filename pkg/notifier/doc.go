// Package notifier assembles the alert pipeline: one bus, a router and a
// queue per channel, a worker per channel queue and the dead letter janitor.
//
//	n, err := notifier.New(notifier.Deps{
//		Storage:        storage,
//		Tokens:         tokens,
//		EmailSender:    emailSender,
//		PushSender:     pushSender,
//		WhatsAppSender: waSender,
//		Observer:       collector,
//		Logger:         log,
//	}, cfg)
//	if err != nil {
//		return err
//	}
//	go n.Run(ctx)
//	_ = n.PublishEvent(ctx, alert.EventBookingCreated, []string{"email", "whatsapp"}, data)
//
// On shutdown call Close before cancelling the Run context so accepted
// events still reach their queues.
package notifier
