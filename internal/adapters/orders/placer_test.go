// internal/adapters/orders/placer_test.go
package orders_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-be/internal/adapters/orders"
	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/workers"
	"github.com/ammerola/storefront-be/test/helpers"
	"github.com/ammerola/storefront-be/test/mocks"
)

func testOrder() *domain.Order {
	return &domain.Order{
		ID:       "ORD-42",
		Shipping: domain.ShippingDetails{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		Summary:  domain.OrderSummary{ItemCount: 1, Total: decimal.RequireFromString("10")},
	}
}

func TestSimulatedPlacer_Place(t *testing.T) {
	p := orders.NewSimulatedPlacer(10*time.Millisecond, helpers.TestLogger())

	start := time.Now()
	id, err := p.Place(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, "ORD-42", id)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSimulatedPlacer_Cancelled(t *testing.T) {
	p := orders.NewSimulatedPlacer(time.Minute, helpers.TestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Place(ctx, testOrder())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNotifyingPlacer_Place(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*mocks.MockOrderPlacer, *mocks.MockTaskEnqueuer)
		wantID     string
		wantErr    bool
	}{
		{
			name: "enqueues_confirmation",
			setupMocks: func(p *mocks.MockOrderPlacer, q *mocks.MockTaskEnqueuer) {
				p.EXPECT().Place(gomock.Any(), gomock.Any()).Return("CONF-1", nil)
				q.EXPECT().
					EnqueueContext(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
						assert.Equal(t, workers.TypeOrderConfirmation, task.Type())
						var payload workers.OrderConfirmationPayload
						require.NoError(t, json.Unmarshal(task.Payload(), &payload))
						assert.Equal(t, "CONF-1", payload.OrderID)
						assert.Equal(t, "ada@example.com", payload.Email)
						return &asynq.TaskInfo{ID: "t1", Queue: workers.QueueCritical}, nil
					})
			},
			wantID: "CONF-1",
		},
		{
			name: "enqueue_failure_does_not_fail_order",
			setupMocks: func(p *mocks.MockOrderPlacer, q *mocks.MockTaskEnqueuer) {
				p.EXPECT().Place(gomock.Any(), gomock.Any()).Return("ORD-42", nil)
				q.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
			},
			wantID: "ORD-42",
		},
		{
			name: "placer_failure_skips_enqueue",
			setupMocks: func(p *mocks.MockOrderPlacer, q *mocks.MockTaskEnqueuer) {
				p.EXPECT().Place(gomock.Any(), gomock.Any()).Return("", errors.New("declined"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			next := mocks.NewMockOrderPlacer(ctrl)
			queue := mocks.NewMockTaskEnqueuer(ctrl)
			tt.setupMocks(next, queue)

			p := orders.NewNotifyingPlacer(next, queue, helpers.TestLogger())
			id, err := p.Place(context.Background(), testOrder())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
