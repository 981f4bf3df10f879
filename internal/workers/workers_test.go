// internal/workers/workers_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/pkg/metrics"
	"github.com/ammerola/storefront-be/internal/workers"
	"github.com/ammerola/storefront-be/test/helpers"
	"github.com/ammerola/storefront-be/test/mocks"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID: "ORD-1700000000000",
		Shipping: domain.ShippingDetails{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		},
		Payment:        domain.MaskedPayment{CardNumber: "**** **** **** 4242"},
		ShippingMethod: domain.ShippingExpress,
		Summary: domain.OrderSummary{
			ItemCount: 3,
			Total:     decimal.RequireFromString("75.93"),
		},
		PlacedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewOrderConfirmationTask(t *testing.T) {
	task, err := workers.NewOrderConfirmationTask(testOrder())
	require.NoError(t, err)
	assert.Equal(t, workers.TypeOrderConfirmation, task.Type())

	var payload workers.OrderConfirmationPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "ORD-1700000000000", payload.OrderID)
	assert.Equal(t, "ada@example.com", payload.Email)
	assert.Equal(t, "Ada Lovelace", payload.Name)
	assert.Equal(t, "75.93", payload.Total)
	assert.Equal(t, "**** **** **** 4242", payload.MaskedCard)
	assert.NotContains(t, string(task.Payload()), "4242 4242")
}

func TestNotificationProcessor_SendOrderConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		payload   []byte
		mailerErr error
		wantSent  bool
		skipRetry bool
		wantErr   bool
	}{
		{
			name: "sends_email",
			payload: func() []byte {
				task, _ := workers.NewOrderConfirmationTask(testOrder())
				return task.Payload()
			}(),
			wantSent: true,
		},
		{
			name:      "malformed_payload_is_not_retried",
			payload:   []byte(`{`),
			wantErr:   true,
			skipRetry: true,
		},
		{
			name:      "missing_email_is_not_retried",
			payload:   []byte(`{"order_id":"ORD-1"}`),
			wantErr:   true,
			skipRetry: true,
		},
		{
			name: "mailer_failure_is_retried",
			payload: func() []byte {
				task, _ := workers.NewOrderConfirmationTask(testOrder())
				return task.Payload()
			}(),
			mailerErr: errors.New("connection refused"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{err: tt.mailerErr}
			p := workers.NewNotificationProcessor(mailer, helpers.TestLogger())

			err := p.SendOrderConfirmation(context.Background(), asynq.NewTask(workers.TypeOrderConfirmation, tt.payload))

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
			} else {
				require.NoError(t, err)
			}

			if tt.wantSent {
				require.Len(t, mailer.sent, 1)
				assert.Equal(t, "ada@example.com", mailer.sent[0].to)
				assert.Equal(t, "Your order ORD-1700000000000 is confirmed", mailer.sent[0].subject)
				assert.Contains(t, mailer.sent[0].body, "Hi Ada Lovelace")
				assert.Contains(t, mailer.sent[0].body, "Total: $75.93")
				assert.Contains(t, mailer.sent[0].body, "March 1, 2024")
			} else {
				assert.Empty(t, mailer.sent)
			}
		})
	}
}

func TestLogMailer_Send(t *testing.T) {
	assert.NoError(t, workers.NewLogMailer(helpers.TestLogger()).Send(context.Background(), "a@b.c", "s", "b"))
}

func TestCleanupProcessor_CleanupCartSlots(t *testing.T) {
	tests := []struct {
		name       string
		payload    []byte
		setupMocks func(*mocks.MockSlotSweeper)
		wantErr    bool
		skipRetry  bool
	}{
		{
			name:    "uses_configured_age",
			payload: nil,
			setupMocks: func(m *mocks.MockSlotSweeper) {
				m.EXPECT().Sweep(gomock.Any(), 48*time.Hour).Return(3, nil)
			},
		},
		{
			name:    "payload_overrides_age",
			payload: []byte(`{"older_than":3600000000000}`),
			setupMocks: func(m *mocks.MockSlotSweeper) {
				m.EXPECT().Sweep(gomock.Any(), time.Hour).Return(0, nil)
			},
		},
		{
			name:    "sweep_failure_is_retried",
			payload: []byte(`{}`),
			setupMocks: func(m *mocks.MockSlotSweeper) {
				m.EXPECT().Sweep(gomock.Any(), 48*time.Hour).Return(0, errors.New("db down"))
			},
			wantErr: true,
		},
		{
			name:       "malformed_payload",
			payload:    []byte(`nope`),
			setupMocks: func(*mocks.MockSlotSweeper) {},
			wantErr:    true,
			skipRetry:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sweeper := mocks.NewMockSlotSweeper(ctrl)
			tt.setupMocks(sweeper)

			p := workers.NewCleanupProcessor(sweeper, 48*time.Hour, helpers.TestLogger())
			err := p.CleanupCartSlots(context.Background(), asynq.NewTask(workers.TypeCleanupCartSlots, tt.payload))

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCleanupProcessor_NoSweeper(t *testing.T) {
	p := workers.NewCleanupProcessor(nil, time.Hour, helpers.TestLogger())
	assert.NoError(t, p.CleanupCartSlots(context.Background(), asynq.NewTask(workers.TypeCleanupCartSlots, nil)))
}

func TestRecordTasks(t *testing.T) {
	m := metrics.New()
	handler := workers.RecordTasks(m)(asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		if strings.HasSuffix(t.Type(), "fail") {
			return errors.New("boom")
		}
		return nil
	}))

	require.NoError(t, handler.ProcessTask(context.Background(), asynq.NewTask("job:ok", nil)))
	require.Error(t, handler.ProcessTask(context.Background(), asynq.NewTask("job:fail", nil)))

	count, err := testutil.GatherAndCount(m.Registry(), "storefront_worker_tasks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, time.Second, workers.ExponentialBackoff(0, nil, nil))
	assert.Equal(t, 8*time.Second, workers.ExponentialBackoff(3, nil, nil))
	assert.Equal(t, 10*time.Minute, workers.ExponentialBackoff(12, nil, nil))
	assert.Equal(t, 10*time.Minute, workers.ExponentialBackoff(64, nil, nil))
}
