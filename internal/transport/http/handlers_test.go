package httptransport

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"paygate/internal/actor"
	"paygate/internal/backend"
	"paygate/internal/backend/mocks"
	"paygate/internal/correlator"
	"paygate/internal/identity"
	jwttoken "paygate/internal/jwt_token"
	"paygate/internal/payment"
	"paygate/internal/payment/store/decision"
	"paygate/internal/payment/store/volume"
	"paygate/internal/report"
	"paygate/internal/rules"
	"paygate/pkg/testutil"
)

const (
	routerTestSender    = "0x1111111111111111111111111111111111111111"
	routerTestRecipient = "0x2222222222222222222222222222222222222222"
)

// RouterSuite runs the handlers against the real actor runtime with only the
// backend collaborator mocked.
type RouterSuite struct {
	suite.Suite
	router  http.Handler
	backend *mocks.MockClient
	jwt     *jwttoken.JWTService
	cancel  context.CancelFunc
}

func (s *RouterSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.backend = mocks.NewMockClient(ctrl)

	cfg := rules.Default()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ids := identity.NewService(cfg, s.backend, identity.WithLogger(logger))
	auth := payment.NewAuthorizer(cfg, decision.NewMemory(), volume.NewMemory(), nil, nil, ids.Ledger(),
		payment.WithLogger(logger))

	runtime := actor.NewRuntime(logger)
	results := correlator.New[actor.PaymentDecided](2*time.Second, correlator.WithLogger[actor.PaymentDecided](logger))
	sessions := correlator.New[actor.VerificationStarted](2*time.Second, correlator.WithLogger[actor.VerificationStarted](logger))

	wallet := actor.NewWallet(runtime, results, ids, auth.Gate(), cfg.Verification, logger)
	reporter := report.NewReporter(report.NewMemorySink())

	require.NoError(s.T(), runtime.Register(actor.RoleWallet, wallet))
	require.NoError(s.T(), runtime.Register(actor.RolePayment,
		actor.NewPaymentHandler(runtime, auth, s.backend, reporter, nil, logger)))
	require.NoError(s.T(), runtime.Register(actor.RoleIdentity,
		actor.NewIdentityHandler(sessions, ids, logger)))

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = runtime.Run(ctx) }()

	s.jwt = jwttoken.NewJWTService("test-signing-key", "paygate-test")

	s.router = NewRouter(Deps{
		Wallet:         wallet,
		Gate:           auth.Gate(),
		Identity:       ids,
		IdentityClient: actor.NewIdentityClient(runtime, sessions),
		Sender:         runtime,
		Rules:          cfg,
		TokenValidator: jwttoken.NewValidatorAdapter(s.jwt),
		Logger:         logger,
	})
}

func (s *RouterSuite) TearDownTest() {
	s.cancel()
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), method, path, body))
}

func (s *RouterSuite) TestSendPayment_DispatchesAuthorizedPayment() {
	s.backend.EXPECT().
		SendPayment(gomock.Any(), gomock.Any(), gomock.Any(), "10", "MATIC").
		Return(backend.DispatchResult{Success: true, Hash: "0xabc123"}, nil)
	s.backend.EXPECT().
		UpdatePaymentStatus(gomock.Any(), gomock.Any(), "0xabc123", "completed").
		Return(nil)

	rec := s.do(http.MethodPost, "/payments/send", SendRequest{
		From:     routerTestSender,
		To:       routerTestRecipient,
		Amount:   "10",
		Currency: "MATIC",
	})

	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())
	resp := testutil.UnmarshalResponse[SendResponse](s.T(), rec)
	assert.True(s.T(), resp.Allowed)
	assert.True(s.T(), resp.Dispatched)
	assert.Equal(s.T(), "0xabc123", resp.TxHash)
	assert.NotEmpty(s.T(), resp.RequestID, "server should assign a request id when the caller omits one")
}

func (s *RouterSuite) TestSendPayment_InvalidJSON() {
	rec := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/payments/send", "not json"))

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestSendPayment_UnsupportedCurrencyRejected() {
	rec := s.do(http.MethodPost, "/payments/send", SendRequest{
		From:     routerTestSender,
		To:       routerTestRecipient,
		Amount:   "10",
		Currency: "DOGE",
	})

	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())
	resp := testutil.UnmarshalResponse[SendResponse](s.T(), rec)
	assert.False(s.T(), resp.Allowed)
	assert.Equal(s.T(), payment.StageValidation, resp.FailureStage)
	assert.False(s.T(), resp.Dispatched)
}

func (s *RouterSuite) TestSendPayment_VerificationRequiredListsActions() {
	// 75 MATIC from an unverified address is rejected before any backend call.
	rec := s.do(http.MethodPost, "/payments/send", SendRequest{
		From:     routerTestSender,
		To:       routerTestRecipient,
		Amount:   "75",
		Currency: "MATIC",
	})

	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())
	resp := testutil.UnmarshalResponse[SendResponse](s.T(), rec)
	assert.False(s.T(), resp.Allowed)
	assert.Equal(s.T(), payment.StageCompliance, resp.FailureStage)
	assert.NotEmpty(s.T(), resp.RequiredActions)
}

func (s *RouterSuite) TestSendPayment_ReplayReturnsStoredDecision() {
	s.backend.EXPECT().
		SendPayment(gomock.Any(), gomock.Any(), gomock.Any(), "10", "MATIC").
		Return(backend.DispatchResult{Success: true, Hash: "0xabc"}, nil)
	s.backend.EXPECT().
		UpdatePaymentStatus(gomock.Any(), gomock.Any(), gomock.Any(), "completed").
		Return(nil)

	first := s.do(http.MethodPost, "/payments/send", SendRequest{
		RequestID: "req-dup",
		From:      routerTestSender,
		To:        routerTestRecipient,
		Amount:    "10",
		Currency:  "MATIC",
	})
	require.Equal(s.T(), http.StatusOK, first.Code, first.Body.String())

	// The first call already completed, so the slot is free again; a replay
	// returns the stored decision without a second dispatch.
	second := s.do(http.MethodPost, "/payments/send", SendRequest{
		RequestID: "req-dup",
		From:      routerTestSender,
		To:        routerTestRecipient,
		Amount:    "10",
		Currency:  "MATIC",
	})
	require.Equal(s.T(), http.StatusOK, second.Code, second.Body.String())
	resp := testutil.UnmarshalResponse[SendResponse](s.T(), second)
	assert.True(s.T(), resp.Allowed)
	assert.False(s.T(), resp.Dispatched, "replay must not dispatch again")
}

func (s *RouterSuite) TestLimits_ReturnsConfiguredAndRemaining() {
	rec := s.do(http.MethodGet, "/payments/limits/"+routerTestSender, nil)

	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())
	resp := testutil.UnmarshalResponse[LimitsResponse](s.T(), rec)
	assert.Equal(s.T(), "100", resp.MaxSingle)
	assert.Equal(s.T(), "1000", resp.MaxDaily)
	assert.Equal(s.T(), "1000", resp.DailyRemaining)
}

func (s *RouterSuite) TestLimits_RejectsMalformedAddress() {
	rec := s.do(http.MethodGet, "/payments/limits/not-an-address", nil)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestVerify_OpensSession() {
	s.backend.EXPECT().
		CreateVerificationSession(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(backend.SessionHandle{SessionID: "sess-1", VerificationURL: "https://verify.example/sess-1"}, nil)

	rec := s.do(http.MethodPost, "/identity/verify", VerifyRequest{
		Address:   routerTestSender,
		ProofType: "age",
	})

	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())
	resp := testutil.UnmarshalResponse[VerifyResponse](s.T(), rec)
	assert.Equal(s.T(), "sess-1", resp.SessionID.String())
	assert.Equal(s.T(), "pending", resp.Status)
	assert.Equal(s.T(), "https://verify.example/sess-1", resp.VerificationURL)
}

func (s *RouterSuite) TestVerify_UnknownProofTypeRejected() {
	rec := s.do(http.MethodPost, "/identity/verify", VerifyRequest{
		Address:   routerTestSender,
		ProofType: "palm-reading",
	})
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestStatus_ReflectsBackendProofs() {
	s.backend.EXPECT().
		Proofs(gomock.Any(), gomock.Any()).
		Return([]backend.Proof{
			{ID: "p1", ProofType: "age", Verified: true, CreatedAt: time.Now()},
		}, nil)

	rec := s.do(http.MethodGet, "/identity/status/"+routerTestSender, nil)

	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())
	resp := testutil.UnmarshalResponse[StatusResponse](s.T(), rec)
	assert.Equal(s.T(), "basic", resp.Level)
	assert.True(s.T(), resp.Proofs["age"].Verified)
}

func (s *RouterSuite) TestCallback_Accepted() {
	rec := s.do(http.MethodPost, "/identity/sessions/sess-9/callback", CallbackRequest{Verified: true})
	assert.Equal(s.T(), http.StatusAccepted, rec.Code)
}

func (s *RouterSuite) TestPromote_RequiresAdminToken() {
	rec := s.do(http.MethodPost, "/admin/identity/promote", PromoteRequest{Address: routerTestSender})
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestPromote_WithAdminToken() {
	token, err := s.jwt.GenerateToken("ops@example.com", "admin", time.Minute)
	require.NoError(s.T(), err)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/identity/promote", PromoteRequest{Address: routerTestSender})
	req.Header.Set("Authorization", "Bearer "+token)
	rec := testutil.DoRequest(s.router, req)

	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())
	resp := testutil.UnmarshalResponse[map[string]string](s.T(), rec)
	assert.Equal(s.T(), "enterprise", resp["level"])
}
