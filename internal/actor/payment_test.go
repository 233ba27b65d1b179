package actor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"paygate/internal/backend"
	"paygate/internal/backend/mocks"
	"paygate/internal/payment"
	"paygate/internal/payment/store/decision"
	"paygate/internal/payment/store/volume"
	"paygate/internal/report"
	"paygate/internal/rules"
	"paygate/pkg/domain"
)

type paymentFixture struct {
	handler *PaymentHandler
	sender  *captureSender
	backend *mocks.MockClient
	volumes *volume.InMemoryVolumeStore
	sink    *report.MemorySink
}

type allowAll struct{}

func (allowAll) Level(domain.Address) domain.VerificationLevel { return domain.LevelPremium }

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &paymentFixture{
		sender:  &captureSender{},
		backend: mocks.NewMockClient(ctrl),
		volumes: volume.NewMemory(),
		sink:    report.NewMemorySink(),
	}
	auth := payment.NewAuthorizer(rules.Default(), decision.NewMemory(), f.volumes, nil, nil, allowAll{})
	f.handler = NewPaymentHandler(f.sender, auth, f.backend, report.NewReporter(f.sink), nil, nil)
	return f
}

func (f *paymentFixture) lastReply(t *testing.T) PaymentDecided {
	t.Helper()
	require.NotZero(t, f.sender.count())
	reply, ok := f.sender.sent[f.sender.count()-1].(PaymentDecided)
	require.True(t, ok)
	return reply
}

func TestPaymentActorDispatchesAuthorizedIntent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	intent := intentFor("req-1", "10")

	f.backend.EXPECT().
		SendPayment(gomock.Any(), intent.From, intent.To, "10", "MATIC").
		Return(backend.DispatchResult{Success: true, Hash: "0xhash"}, nil)
	f.backend.EXPECT().
		UpdatePaymentStatus(gomock.Any(), intent.RequestID, "0xhash", "completed").
		Return(nil)

	f.handler.Handle(ctx, AuthorizePayment{Intent: intent})

	reply := f.lastReply(t)
	assert.True(t, reply.Decision.Allowed)
	assert.True(t, reply.Dispatched)
	assert.Equal(t, "0xhash", reply.TxHash)

	vol, err := f.volumes.Volume(ctx, intent.From)
	require.NoError(t, err)
	assert.True(t, vol.Equal(decimal.NewFromInt(10)), "confirmed dispatch commits daily volume")

	events := f.sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, report.KindDecisionAudit, events[0].Kind)
}

func TestPaymentActorRejectionNeverDispatches(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	intent := intentFor("req-1", "10")
	intent.To = "0x0000000000000000000000000000000000000000"

	// No SendPayment expectation: any dispatch attempt fails the test.
	f.handler.Handle(ctx, AuthorizePayment{Intent: intent})

	reply := f.lastReply(t)
	assert.False(t, reply.Decision.Allowed)
	assert.Equal(t, payment.StageSecurity, reply.Decision.FailureStage)
	assert.False(t, reply.Dispatched)

	vol, err := f.volumes.Volume(ctx, intent.From)
	require.NoError(t, err)
	assert.True(t, vol.IsZero(), "rejected payments consume no volume")
}

func TestPaymentActorFailedDispatchCommitsNothing(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	intent := intentFor("req-1", "10")

	f.backend.EXPECT().
		SendPayment(gomock.Any(), intent.From, intent.To, "10", "MATIC").
		Return(backend.DispatchResult{}, assert.AnError)
	f.backend.EXPECT().
		UpdatePaymentStatus(gomock.Any(), intent.RequestID, "", "failed").
		Return(nil)

	f.handler.Handle(ctx, AuthorizePayment{Intent: intent})

	reply := f.lastReply(t)
	assert.True(t, reply.Decision.Allowed, "the decision itself stands")
	assert.False(t, reply.Dispatched)
	assert.NotEmpty(t, reply.Detail)

	vol, err := f.volumes.Volume(ctx, intent.From)
	require.NoError(t, err)
	assert.True(t, vol.IsZero(), "failed dispatch must not count against the day")
}

func TestPaymentActorReplayProducesNoNewSideEffects(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	intent := intentFor("req-1", "10")

	f.backend.EXPECT().
		SendPayment(gomock.Any(), intent.From, intent.To, "10", "MATIC").
		Return(backend.DispatchResult{Success: true, Hash: "0xhash"}, nil).
		Times(1)
	f.backend.EXPECT().
		UpdatePaymentStatus(gomock.Any(), intent.RequestID, "0xhash", "completed").
		Return(nil).
		Times(1)

	f.handler.Handle(ctx, AuthorizePayment{Intent: intent})
	f.handler.Handle(ctx, AuthorizePayment{Intent: intent})

	first, ok := f.sender.sent[0].(PaymentDecided)
	require.True(t, ok)
	second, ok := f.sender.sent[1].(PaymentDecided)
	require.True(t, ok)
	assert.Equal(t, first.Decision, second.Decision, "replay returns the stored decision")
}

func TestPaymentActorIgnoresUnknownMessage(t *testing.T) {
	f := newPaymentFixture(t)
	f.handler.Handle(context.Background(), "garbage")
	assert.Zero(t, f.sender.count())
}
