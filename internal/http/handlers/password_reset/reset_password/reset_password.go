package resetpassword

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	e "resetme/internal/core/domain/errors"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/domain/user"
	"resetme/internal/core/services"
	service "resetme/internal/core/services/reset_password"
	"resetme/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(
	service services.Service[service.Input, service.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

// Validate checks only the shape of the input. The password policy is applied
// by the service.
func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Token, validation.Required, validation.Length(0, 1024)),
		validation.Field(&i.Password, validation.Required, validation.Length(0, 256)),
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
		service.Input{
			Token:       passwordreset.Token(input.Token),
			NewPassword: user.RawPassword(input.Password),
		},
	)
	var validationErr *e.ValidationError
	switch {
	case err == nil:
		response.RenderMessage(rw, result.Message)
	case errors.As(err, &validationErr):
		response.RenderValidationError(rw, validationErr)
	case errors.Is(err, passwordreset.ErrInvalidOrExpiredToken):
		response.RenderError(rw, "invalid or expired token", http.StatusUnprocessableEntity)
	default:
		response.RenderInternalError(rw)
	}
}
