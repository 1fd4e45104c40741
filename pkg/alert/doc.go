// Package alert is the in-process fan-out point for notification events.
//
// A producer publishes an Event on the Bus. The Bus hands a copy to every
// registered channel Router in its own goroutine and returns. Each Router
// drops events that do not list its channel, resolves the handler registered
// for the event type and runs it. Handlers turn event data into a channel job
// and enqueue it; delivery happens later in the channel worker.
//
// Routers log and swallow their own handler errors and panics, so one
// failing channel never affects another or the publisher.
//
//	emailRouter, _ := email.NewRouter(emailQueue, admins)
//	pushRouter, _ := push.NewRouter(pushQueue)
//
//	bus, err := alert.NewBus([]alert.Listener{emailRouter, pushRouter})
//	if err != nil {
//	    return err
//	}
//	defer bus.Close(ctx)
//
//	bus.Publish(ctx, alert.Event{
//	    Type:     alert.EventUserRegistered,
//	    Channels: []alert.Channel{alert.ChannelEmail, alert.ChannelPush},
//	    Data:     alert.Data{"userId": "u1", "email": "a@b.com", "name": "Asha"},
//	})
package alert
