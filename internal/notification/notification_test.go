package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	sent []Message
}

func (r *recordingNotifier) Send(_ context.Context, m Message) error {
	r.sent = append(r.sent, m)
	return nil
}

func TestRouterSplitsByDestination(t *testing.T) {
	sms, email := &recordingNotifier{}, &recordingNotifier{}
	router := Router{SMS: sms, Email: email}
	ctx := context.Background()

	require.NoError(t, router.Send(ctx, Message{Kind: KindLoginCode, Destination: "+919876543210"}))
	require.NoError(t, router.Send(ctx, Message{Kind: KindLoginCode, Destination: "asha@example.com"}))

	require.Len(t, sms.sent, 1)
	require.Len(t, email.sent, 1)
	require.Equal(t, "asha@example.com", email.sent[0].Destination)
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESNotifierBuildsPlainTextEmail(t *testing.T) {
	client := &fakeSES{}
	n := &SESNotifier{client: client, fromEmail: "no-reply@homehelp.in"}

	err := n.Send(context.Background(), Message{Kind: KindLoginCode, Destination: "asha@example.com", Body: "Your code is 123456"})
	require.NoError(t, err)
	require.Equal(t, "no-reply@homehelp.in", *client.input.FromEmailAddress)
	require.Equal(t, []string{"asha@example.com"}, client.input.Destination.ToAddresses)
	require.Equal(t, "HomeHelp", *client.input.Content.Simple.Subject.Data)
	require.Equal(t, "Your code is 123456", *client.input.Content.Simple.Body.Text.Data)
}

func TestSESNotifierWrapsErrors(t *testing.T) {
	boom := errors.New("throttled")
	n := &SESNotifier{client: &fakeSES{err: boom}, fromEmail: "no-reply@homehelp.in"}

	err := n.Send(context.Background(), Message{Destination: "asha@example.com"})
	require.ErrorIs(t, err, boom)
}
