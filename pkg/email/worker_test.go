package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/email"
	"github.com/dmitrymomot/alertkit/pkg/queue"
)

func TestWorker_Process(t *testing.T) {
	t.Parallel()

	t.Run("renders and sends", func(t *testing.T) {
		t.Parallel()

		sender := &MockEmailSender{}
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.Subject == "Booking B-7 confirmed" &&
				p.Tag == "booking_confirmed" &&
				len(p.SendTo) == 1 && p.SendTo[0] == "user@example.com"
		})).Return("pm-123", nil).Once()

		w := email.NewWorker(sender, discardLogger())
		res, err := w.Process(context.Background(), email.Job{
			To:       email.Recipients{"user@example.com"},
			Template: email.TemplateBookingConfirmed,
			Payload:  map[string]any{"name": "Asha", "bookingId": "B-7"},
		})
		require.NoError(t, err)
		assert.Equal(t, "pm-123", res.MessageID)
		sender.AssertExpectations(t)
	})

	t.Run("provider errors are retryable", func(t *testing.T) {
		t.Parallel()

		sender := &MockEmailSender{}
		sender.On("SendEmail", mock.Anything, mock.Anything).Return("", email.ErrFailedToSendEmail)

		_, err := email.NewWorker(sender, discardLogger()).Process(context.Background(), email.Job{
			To:       email.Recipients{"user@example.com"},
			Template: email.TemplateWelcome,
		})
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.False(t, queue.IsPermanent(err))
	})

	t.Run("unknown template is permanent", func(t *testing.T) {
		t.Parallel()

		sender := &MockEmailSender{}
		_, err := email.NewWorker(sender, discardLogger()).Process(context.Background(), email.Job{
			To:       email.Recipients{"user@example.com"},
			Template: "newsletter",
		})
		assert.ErrorIs(t, err, email.ErrUnknownTemplate)
		assert.True(t, queue.IsPermanent(err))
		sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})
}

func TestWorker_QueuePipeline(t *testing.T) {
	t.Parallel()

	storage := queue.NewMemoryStorage()
	t.Cleanup(func() { _ = storage.Close() })

	q, err := email.NewQueue(storage)
	require.NoError(t, err)

	sent := make(chan email.SendEmailParams, 1)
	sender := &MockEmailSender{}
	sender.On("SendEmail", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent <- args.Get(1).(email.SendEmailParams) }).
		Return("dev-1", nil)

	w := email.NewWorker(sender, discardLogger())
	qw, err := queue.NewWorker(storage,
		queue.WithQueues(email.QueueName),
		queue.WithPullInterval(5*time.Millisecond),
		queue.WithWorkerLogger(discardLogger()))
	require.NoError(t, err)
	require.NoError(t, qw.RegisterHandler(w.Handler()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	id, err := q.Enqueue(ctx, email.Job{
		To:       email.Recipients{"user@example.com"},
		Template: email.TemplateWelcome,
		Payload:  map[string]any{"name": "Asha"},
	})
	require.NoError(t, err)

	task, ok := storage.Task(id)
	require.True(t, ok)
	assert.Equal(t, email.QueueName, task.Queue)
	assert.Equal(t, email.RetryPolicy().MaxAttempts, task.MaxAttempts)
	assert.Equal(t, email.RetryPolicy().Backoff, task.Backoff)

	var payload email.Job
	require.NoError(t, json.Unmarshal(task.Payload, &payload))
	assert.Equal(t, email.TemplateWelcome, payload.Template)

	go func() { _ = qw.Run(ctx)() }()

	select {
	case p := <-sent:
		assert.Equal(t, "Welcome to Zappy, Asha!", p.Subject)
	case <-time.After(2 * time.Second):
		t.Fatal("email was not sent")
	}

	require.Eventually(t, func() bool { return storage.Len(email.QueueName) == 0 }, time.Second, 5*time.Millisecond)
}

func TestWorker_Handler_BadPayload(t *testing.T) {
	t.Parallel()

	w := email.NewWorker(&MockEmailSender{}, discardLogger())
	err := w.Handler().Handle(context.Background(), json.RawMessage(`{"to":42}`))
	assert.True(t, queue.IsPermanent(err))
	assert.False(t, errors.Is(err, email.ErrUnknownTemplate))
}

func TestWorker_Handler_LargeNumbers(t *testing.T) {
	t.Parallel()

	sender := &MockEmailSender{}
	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
		return strings.Contains(p.BodyHTML, "<strong>1500000 INR</strong>") &&
			!strings.Contains(p.BodyHTML, "e+06")
	})).Return("pm-1", nil).Once()

	// the payload takes the same JSON round-trip it takes through the queue
	raw, err := json.Marshal(email.Job{
		To:       email.Recipients{"user@example.com"},
		Template: email.TemplatePaymentReceived,
		Payload:  map[string]any{"name": "Asha", "amount": 1500000, "currency": "INR"},
	})
	require.NoError(t, err)

	w := email.NewWorker(sender, discardLogger())
	require.NoError(t, w.Handler().Handle(context.Background(), raw))
	sender.AssertExpectations(t)
}

func TestQueue_ChannelPolicyWins(t *testing.T) {
	t.Parallel()

	storage := queue.NewMemoryStorage()
	t.Cleanup(func() { _ = storage.Close() })

	q, err := email.NewQueue(storage,
		queue.WithDefaultQueue("elsewhere"),
		queue.WithRetryPolicy(queue.RetryPolicy{MaxAttempts: 1}),
	)
	require.NoError(t, err)

	id, err := q.Enqueue(context.Background(), email.Job{
		To:       email.Recipients{"user@example.com"},
		Template: email.TemplateWelcome,
	})
	require.NoError(t, err)

	task, ok := storage.Task(id)
	require.True(t, ok)
	assert.Equal(t, email.QueueName, task.Queue)
	assert.Equal(t, 5, task.MaxAttempts)
	assert.Equal(t, 5*time.Second, task.Backoff)
}
