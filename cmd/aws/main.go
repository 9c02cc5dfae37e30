package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"resetme/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/joho/godotenv"
)

const usage = `Manages Amazon SES templates used for password reset emails.

Usage:
  aws create                      create both password reset templates
  aws delete                      delete both password reset templates
  aws send <to> <template> <json> send a templated email with the given data
`

const (
	passwordResetSubject = "Password Reset Request"
	passwordResetText    = `Hello {{name}},

You recently requested to reset your password.

To reset your password, click on the following link:
{{passwordResetUrl}}

If you didn't request this password reset, please ignore this email.
`
	passwordResetHtml = `<p>Hello {{name}},</p>
<p>You recently requested to reset your password.</p>
<p><a href="{{passwordResetUrl}}">Reset your password</a></p>
<p>If you didn't request this password reset, please ignore this email.</p>
`

	passwordResetConfirmationSubject = "Password Reset Successful"
	passwordResetConfirmationText    = `Hello {{name}},

Your password has been successfully reset. You can now log in with your new password.

If you didn't make this change, please contact support immediately.
`
	passwordResetConfirmationHtml = `<p>Hello {{name}},</p>
<p>Your password has been successfully reset. You can now log in with your new password.</p>
<p>If you didn't make this change, please contact support immediately.</p>
`
)

func main() {
	_ = godotenv.Load()

	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load()
	exitOnError(err)

	ctx := context.Background()
	svc := ses.NewFromConfig(loadAwsConfig(ctx, cfg))

	switch flag.Arg(0) {
	case "create":
		createEmailTemplate(
			ctx, svc,
			cfg.AwsEmailPasswordResetTemplate,
			passwordResetSubject,
			passwordResetHtml,
			passwordResetText,
		)
		createEmailTemplate(
			ctx, svc,
			cfg.AwsEmailPasswordResetConfirmationTemplate,
			passwordResetConfirmationSubject,
			passwordResetConfirmationHtml,
			passwordResetConfirmationText,
		)
	case "delete":
		deleteEmailTemplate(ctx, svc, cfg.AwsEmailPasswordResetTemplate)
		deleteEmailTemplate(ctx, svc, cfg.AwsEmailPasswordResetConfirmationTemplate)
	case "send":
		if flag.NArg() != 4 {
			flag.Usage()
			os.Exit(2)
		}
		sendEmailTemplate(ctx, svc, cfg.EmailSender, flag.Arg(1), flag.Arg(2), flag.Arg(3))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func loadAwsConfig(ctx context.Context, cfg *config.Config) aws.Config {
	awsCfg, err := awsConfig.LoadDefaultConfig(
		ctx,
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
	)
	exitOnError(err)
	return awsCfg
}

func createEmailTemplate(
	ctx context.Context,
	svc *ses.Client,
	name string,
	subject string,
	htmlPart string,
	textPart string,
) {
	_, err := svc.CreateTemplate(ctx, &ses.CreateTemplateInput{
		Template: &types.Template{
			SubjectPart:  &subject,
			HtmlPart:     &htmlPart,
			TextPart:     &textPart,
			TemplateName: &name,
		},
	})
	exitOnError(err)
	fmt.Printf("Template %q created.\n", name)
}

func deleteEmailTemplate(ctx context.Context, svc *ses.Client, name string) {
	_, err := svc.DeleteTemplate(ctx, &ses.DeleteTemplateInput{TemplateName: &name})
	exitOnError(err)
	fmt.Printf("Template %q deleted.\n", name)
}

// The sender address must be verified with Amazon SES.
func sendEmailTemplate(ctx context.Context, svc *ses.Client, sender, to, name, args string) {
	result, err := svc.SendTemplatedEmail(ctx, &ses.SendTemplatedEmailInput{
		Source: aws.String(sender),
		Destination: &types.Destination{
			CcAddresses: []string{},
			ToAddresses: []string{to},
		},
		Template:     &name,
		TemplateData: &args,
	})
	exitOnError(err)
	fmt.Printf("Email sent, message id: %s\n", aws.ToString(result.MessageId))
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
