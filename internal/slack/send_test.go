package slack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendDirectMessages(t *testing.T) {
	t.Parallel()

	fake := twoUserFake()
	acct := newTestAccount(t, fake)

	report, err := acct.SendDirectMessages(t.Context(), map[string]string{
		"auser1": "msg1",
		"buser1": "msg2",
	})
	require.NoError(t, err)

	require.Equal(t, map[string]string{"D001": "msg1", "D002": "msg2"}, report.Sent)
	require.Empty(t, report.Failed)
	require.NotEmpty(t, report.BatchID)

	// Exactly two list calls and two send calls.
	require.Equal(t, 1, fake.usersCalls)
	require.Equal(t, 1, fake.channelsCalls)
	require.Equal(t, 2, fake.sendCalls)
	require.Equal(t, 4, fake.totalCalls())
}

func TestSendDirectMessages_WarmCachesSkipListCalls(t *testing.T) {
	t.Parallel()

	fake := twoUserFake()
	acct := newTestAccount(t, fake)

	_, err := acct.SendDirectMessages(t.Context(), map[string]string{"auser1": "first"})
	require.NoError(t, err)
	_, err = acct.SendDirectMessages(t.Context(), map[string]string{"buser1": "second"})
	require.NoError(t, err)

	require.Equal(t, 1, fake.usersCalls)
	require.Equal(t, 1, fake.channelsCalls)
	require.Equal(t, 2, fake.sendCalls)
}

func TestSendDirectMessages_UnresolvableRecipientDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	fake := twoUserFake()
	acct := newTestAccount(t, fake)

	report, err := acct.SendDirectMessages(t.Context(), map[string]string{
		"auser1": "msg1",
		"ghost":  "msg2",
	})
	require.NoError(t, err)

	require.Equal(t, map[string]string{"D001": "msg1"}, report.Sent)
	require.Len(t, report.Failed, 1)
	require.Equal(t, "ghost", report.Failed[0].Username)
	require.ErrorIs(t, report.Failed[0], ErrNoChannel)

	// Only the resolvable recipient produced a send call.
	require.Equal(t, 1, fake.sendCalls)
}

func TestSendDirectMessages_SendFailureIsIsolated(t *testing.T) {
	t.Parallel()

	fake := twoUserFake()
	fake.failSends = map[string]string{"D001": "msg_too_long"}
	acct := newTestAccount(t, fake)

	report, err := acct.SendDirectMessages(t.Context(), map[string]string{
		"auser1": "msg1",
		"buser1": "msg2",
	})
	require.NoError(t, err)

	require.Equal(t, map[string]string{"D002": "msg2"}, report.Sent)
	require.Len(t, report.Failed, 1)
	require.Equal(t, "auser1", report.Failed[0].Username)
	require.Equal(t, 2, fake.sendCalls, "the failing recipient must not block the other send")
}

func TestSendDirectMessages_AuthFailureIsBatchFatal(t *testing.T) {
	t.Parallel()

	fake := twoUserFake()
	fake.usersError = "invalid_auth"
	acct := newTestAccount(t, fake)

	_, err := acct.SendDirectMessages(t.Context(), map[string]string{"auser1": "msg1"})
	require.ErrorIs(t, err, ErrAuthentication)
	require.Zero(t, fake.sendCalls, "nothing may be sent when the roster cannot be resolved")
}

func TestDeliveryReport_AllFailed(t *testing.T) {
	t.Parallel()

	fake := twoUserFake()
	acct := newTestAccount(t, fake)

	report, err := acct.SendDirectMessages(t.Context(), map[string]string{"ghost": "msg"})
	require.NoError(t, err)
	require.True(t, report.AllFailed())
	require.Error(t, report.Err())

	ok, err2 := acct.SendDirectMessages(t.Context(), map[string]string{"auser1": "msg"})
	require.NoError(t, err2)
	require.False(t, ok.AllFailed())
	require.NoError(t, ok.Err())
}

func TestRecipientError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := &RecipientError{Username: "auser1", Err: inner}
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "auser1")
}
