package checkpasswordresettoken

import (
	"encoding/json"
	"io"
	"net/http"
	e "resetme/internal/core/domain/errors"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/services"
	service "resetme/internal/core/services/check_password_reset_token"
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
	Token string `json:"token"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Token, validation.Length(0, 1024)),
	)
}

type Response struct {
	Valid bool    `json:"valid"`
	Email *string `json:"email,omitempty"`
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

	result, err := h.service.Run(r.Context(), service.Input{Token: passwordreset.Token(input.Token)})
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	res := Response{Valid: result.IsValid}
	if result.Email.IsPresent {
		email := string(result.Email.Value)
		res.Email = &email
	}
	response.Render(rw, res, http.StatusOK)
}
