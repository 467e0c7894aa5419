package billing

import (
	"github.com/dmitrymomot/applytrack/handler"
	"github.com/dmitrymomot/applytrack/pkg/binder"
	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/svc/subscription"
)

var queryBinder = handler.Bind(binder.Query())

type checkoutRequest struct {
	Interval string `query:"interval"`
}

const sessionPlaceholder = "{CHECKOUT_SESSION_ID}"

type checkoutSuccessRequest struct {
	SessionID   string `query:"session_id"`
	Transaction string `query:"_ptxn"`
}

// sessionID prefers the Stripe session id and falls back to the Paddle
// transaction id when the placeholder came back unsubstituted.
func (r checkoutSuccessRequest) sessionID() string {
	if r.SessionID == "" || r.SessionID == sessionPlaceholder {
		return r.Transaction
	}
	return r.SessionID
}

func (m *Module) startCheckout(ctx handler.Context, req checkoutRequest) handler.Response {
	user, err := m.currentUser(ctx)
	if err != nil {
		return handler.JSONError(err)
	}

	link, outcome, err := m.service.StartCheckout(ctx, user, req.Interval, m.cfg.checkoutURLs(m.processor))
	if err != nil {
		m.logger.InfoContext(ctx, "checkout not started",
			logger.Component("billing"),
			logger.UserID(user.ID),
			logger.Error(err),
		)
		return m.redirectWithOutcome(outcome)
	}
	return handler.Redirect(link.URL)
}

func (m *Module) checkoutSuccess(ctx handler.Context, req checkoutSuccessRequest) handler.Response {
	user, err := m.currentUser(ctx)
	if err != nil {
		return handler.JSONError(err)
	}
	return m.redirectWithOutcome(m.syncer.ConfirmCheckout(ctx, user.ID, req.sessionID()))
}

func (m *Module) checkoutCancel(_ handler.Context, _ struct{}) handler.Response {
	return m.redirectWithOutcome(subscription.Outcome{
		Level:   subscription.LevelAlert,
		Message: subscription.MsgCheckoutCanceled,
	})
}

func (m *Module) billingPortal(ctx handler.Context, _ struct{}) handler.Response {
	user, err := m.currentUser(ctx)
	if err != nil {
		return handler.JSONError(err)
	}

	link, outcome, err := m.service.PortalLink(ctx, user, m.cfg.BaseURL+m.cfg.accountURL())
	if err != nil {
		m.logger.InfoContext(ctx, "billing portal not opened",
			logger.Component("billing"),
			logger.UserID(user.ID),
			logger.Error(err),
		)
		return m.redirectWithOutcome(outcome)
	}
	return handler.Redirect(link.URL)
}
