package slack

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"
)

// DeliveryReport is the itemized outcome of one send batch.
type DeliveryReport struct {
	// BatchID tags the batch in logs and output.
	BatchID string

	// Sent maps the DM channel ID to the message text for every confirmed
	// send.
	Sent map[string]string

	// Failed lists the recipients that could not be delivered to, in batch
	// order.
	Failed []*RecipientError
}

// AllFailed reports whether nothing in the batch was delivered.
func (r *DeliveryReport) AllFailed() bool {
	return len(r.Sent) == 0 && len(r.Failed) > 0
}

// Err joins the per-recipient failures into one error, or nil if every
// message was delivered.
func (r *DeliveryReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// SendDirectMessages delivers one message per username, resolving usernames
// to DM channel IDs through the cached roster mappings (populating them if
// cold). Recipients are processed in sorted username order, each
// independently: a recipient with no resolvable channel or a failed send is
// recorded in the report and the batch continues.
//
// The error return is reserved for batch-fatal conditions, such as a missing
// or rejected token while resolving the roster. A partially delivered batch
// returns a nil error with a non-empty Failed list.
func (a *Account) SendDirectMessages(ctx context.Context, messages map[string]string) (*DeliveryReport, error) {
	channels, err := a.DMChannels(ctx)
	if err != nil {
		return nil, err
	}

	report := &DeliveryReport{
		BatchID: uuid.NewString(),
		Sent:    make(map[string]string, len(messages)),
	}
	logger := a.logger.With(slog.String("batch_id", report.BatchID))

	usernames := make([]string, 0, len(messages))
	for username := range messages {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	for _, username := range usernames {
		text := messages[username]

		channelID, ok := channels[username]
		if !ok || channelID == "" {
			report.Failed = append(report.Failed, &RecipientError{Username: username, Err: ErrNoChannel})
			logger.Warn("skipping recipient", "user", username, "reason", ErrNoChannel.Error())
			continue
		}

		if err := a.postMessage(ctx, channelID, text); err != nil {
			report.Failed = append(report.Failed, &RecipientError{Username: username, Err: err})
			logger.Warn("send failed", "user", username, "channel", channelID, "error", err)
			continue
		}

		report.Sent[channelID] = text
		logger.Info("sent direct message", "user", username, "channel", channelID)
	}
	return report, nil
}

// postMessage issues one chat.postMessage call.
func (a *Account) postMessage(ctx context.Context, channelID, text string) error {
	payload := map[string]any{
		"channel": channelID,
		"text":    text,
		"as_user": true,
	}
	var resp apiResponse
	if err := a.post(ctx, "chat.postMessage", payload, &resp); err != nil {
		return err
	}
	if err := resp.callErr("chat.postMessage"); err != nil {
		return err
	}
	return nil
}
