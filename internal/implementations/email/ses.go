package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	passwordreset "resetme/internal/core/domain/password_reset"
	"resetme/internal/core/domain/user"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesClient interface {
	SendTemplatedEmail(ctx context.Context, params *ses.SendTemplatedEmailInput, optFns ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error)
}

// SESNotifier sends templated emails. Both templates must exist in Amazon SES.
type SESNotifier struct {
	ses sesClient
	// This address must be verified with Amazon SES.
	sender                        string
	passwordResetTemplate         string
	passwordResetConfirmationTmpl string
	passwordResetBaseUrl          url.URL
}

func NewSESNotifier(
	awsConfig aws.Config,
	sender string,
	passwordResetTemplate string,
	passwordResetConfirmationTemplate string,
	passwordResetBaseUrl url.URL,
) *SESNotifier {
	return &SESNotifier{
		ses:                           ses.NewFromConfig(awsConfig),
		sender:                        sender,
		passwordResetTemplate:         passwordResetTemplate,
		passwordResetConfirmationTmpl: passwordResetConfirmationTemplate,
		passwordResetBaseUrl:          passwordResetBaseUrl,
	}
}

func (s *SESNotifier) SendResetLink(ctx context.Context, u user.User, token passwordreset.Token) error {
	return s.send(ctx, u, s.passwordResetTemplate, passwordResetTemplateParams{
		Name:             u.DisplayName(),
		PasswordResetUrl: ResetLink(s.passwordResetBaseUrl, token),
	})
}

func (s *SESNotifier) SendResetConfirmation(ctx context.Context, u user.User) error {
	return s.send(ctx, u, s.passwordResetConfirmationTmpl, passwordResetConfirmationTemplateParams{
		Name: u.DisplayName(),
	})
}

func (s *SESNotifier) send(ctx context.Context, u user.User, template string, params any) error {
	if u.Email == "" {
		return errors.New("user email is not defined")
	}

	templateParamsBytes, err := json.Marshal(params)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	email := string(u.Email)
	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{email},
			},
			Template:     &template,
			TemplateData: &templateParams,
		},
	)
	return err
}

type passwordResetTemplateParams struct {
	Name             string `json:"name"`
	PasswordResetUrl string `json:"passwordResetUrl"`
}

type passwordResetConfirmationTemplateParams struct {
	Name string `json:"name"`
}
