package dialog

import (
	"context"
	"fmt"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// Fulfill hands the confirmed order to the sink and closes the dialog.
func (e *Engine) Fulfill(ctx context.Context, ev *model.HookEvent) (*model.HookResponse, error) {
	log := logx.Component("fulfillment").With().Str("session_id", ev.SessionID).Logger()
	attrs := ev.Attributes()

	sess, err := model.DecodeSession(attrs)
	if err == nil && sess.Order.Empty() {
		err = errx.ErrNoOrder
	}
	if err != nil {
		log.Error().Err(err).Msg("cannot finalize order")
		return closeDialog(ev, attrs, model.StateFailed, msgFulfillFailed), nil
	}

	if e.sink != nil {
		if err := e.sink.Submit(ctx, ev.SessionID, *sess.Order); err != nil {
			log.Error().Err(err).Int("status", errx.StatusOf(err)).Msg("order sink rejected order")
			return closeDialog(ev, attrs, model.StateFailed, msgFulfillFailed), nil
		}
	}

	log.Info().Int("items", len(sess.Order.Items)).Msg("order placed")
	return closeDialog(ev, attrs, model.StateFulfilled, fmt.Sprintf(msgOrderPlaced, sess.Order.ShortSummary())), nil
}
