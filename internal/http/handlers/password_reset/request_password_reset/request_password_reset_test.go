package requestpasswordreset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	c "resetme/internal/core/domain/common"
	e "resetme/internal/core/domain/errors"
	passwordreset "resetme/internal/core/domain/password_reset"
	ratelimiter "resetme/internal/core/domain/rate_limiter"
	service "resetme/internal/core/services/request_password_reset"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubService struct {
	token c.Optional[passwordreset.Token]
	err   error
	input *service.Input
}

func (s *stubService) Run(ctx context.Context, input service.Input) (result service.Result, err error) {
	s.input = &input
	if s.err != nil {
		return result, s.err
	}
	return service.Result{Message: passwordreset.RequestAcceptedMessage, Token: s.token}, nil
}

func TestRequestPasswordResetHandler(t *testing.T) {
	cases := []struct {
		id             string
		body           string
		isTestMode     bool
		token          c.Optional[passwordreset.Token]
		err            error
		expectedStatus int
		expectedBody   string
		expectedHeader string
		expectedInput  *service.Input
	}{
		{
			id:             "success",
			body:           `{"email": "User@Example.com"}`,
			token:          c.Some[passwordreset.Token]("token"),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message": "If the email exists in our system, you will receive a password reset link."}`,
			expectedInput:  &service.Input{Email: "user@example.com"},
		},
		{
			id:             "test mode exposes token",
			body:           `{"email": "user@example.com"}`,
			isTestMode:     true,
			token:          c.Some[passwordreset.Token]("token"),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message": "If the email exists in our system, you will receive a password reset link."}`,
			expectedHeader: "token",
			expectedInput:  &service.Input{Email: "user@example.com"},
		},
		{
			id:             "unknown email",
			body:           `{"email": "nobody@example.com"}`,
			isTestMode:     true,
			token:          c.None[passwordreset.Token](),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message": "If the email exists in our system, you will receive a password reset link."}`,
			expectedInput:  &service.Input{Email: "nobody@example.com"},
		},
		{
			id:             "invalid json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "invalid request data"}`,
		},
		{
			id:             "invalid email",
			body:           `{"email": "not-an-email"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "empty email",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"email": "cannot be blank"}`,
		},
		{
			id:             "rate limited",
			body:           `{"email": "user@example.com"}`,
			err:            ratelimiter.ErrRateLimitExceeded,
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `{"error": "rate limit exceeded"}`,
			expectedInput:  &service.Input{Email: "user@example.com"},
		},
		{
			id:             "delivery failure",
			body:           `{"email": "user@example.com"}`,
			err:            e.NewDeliveryError(errors.New("smtp down")),
			expectedStatus: http.StatusServiceUnavailable,
			expectedInput:  &service.Input{Email: "user@example.com"},
		},
		{
			id:             "persistence failure",
			body:           `{"email": "user@example.com"}`,
			err:            e.NewPersistenceError("issue", errors.New("db down")),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error": "internal error"}`,
			expectedInput:  &service.Input{Email: "user@example.com"},
		},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			stub := &stubService{token: testcase.token, err: testcase.err}
			handler := New(stub, testcase.isTestMode)
			req := httptest.NewRequest(http.MethodPost, "/auth/password_reset/token", strings.NewReader(testcase.body))
			rw := httptest.NewRecorder()

			handler.ServeHTTP(rw, req)

			assert.Equal(t, testcase.expectedStatus, rw.Code)
			if testcase.expectedBody != "" {
				assert.JSONEq(t, testcase.expectedBody, rw.Body.String())
			}
			assert.Equal(t, testcase.expectedHeader, rw.Header().Get(TestTokenHeader))
			assert.Equal(t, testcase.expectedInput, stub.input)
		})
	}
}
