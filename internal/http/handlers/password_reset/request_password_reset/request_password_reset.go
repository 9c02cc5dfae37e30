package requestpasswordreset

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	c "resetme/internal/core/domain/common"
	e "resetme/internal/core/domain/errors"
	ratelimiter "resetme/internal/core/domain/rate_limiter"
	"resetme/internal/core/services"
	service "resetme/internal/core/services/request_password_reset"
	"resetme/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const TestTokenHeader = "x-test-password-reset-token"

type Handler struct {
	service    services.Service[service.Input, service.Result]
	isTestMode bool
}

func New(
	service services.Service[service.Input, service.Result],
	isTestMode bool,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, isTestMode: isTestMode}
}

type Input struct {
	Email string `json:"email"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
	)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderInvalidRequestData(rw)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		service.Input{Email: c.NewEmail(input.Email)},
	)
	var validationErr *e.ValidationError
	var deliveryErr *e.DeliveryError
	switch {
	case err == nil:
	case errors.As(err, &validationErr):
		response.RenderValidationError(rw, validationErr)
		return
	case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
		response.RenderRateLimitExceeded(rw)
		return
	case errors.As(err, &deliveryErr):
		response.RenderError(rw, "could not send password reset email", http.StatusServiceUnavailable)
		return
	default:
		response.RenderInternalError(rw)
		return
	}

	if h.isTestMode && result.Token.IsPresent {
		rw.Header().Set(TestTokenHeader, string(result.Token.Value))
	}
	response.RenderMessage(rw, result.Message)
}
