package subscription

// Level is the flash level of an Outcome.
type Level string

const (
	LevelSuccess Level = "success"
	LevelNotice  Level = "notice"
	LevelAlert   Level = "alert"
)

// Outcome is a user-facing result of a billing flow.
type Outcome struct {
	Level   Level
	Message string
}

const (
	MsgAlreadySubscribed    = "You already have an active Pro subscription."
	MsgBillingMisconfigured = "Stripe configuration is incomplete. Please contact support."
	MsgCheckoutFailed       = "Something went wrong. Please try again or contact support."
	MsgInvalidSession       = "Invalid checkout session. Please contact support if you were charged."
	MsgWelcomePro           = "Welcome to Pro! Your subscription is now active."
	MsgActivationPending    = "Payment received. Your subscription will be activated shortly."
	MsgActivationIssue      = "There was an issue activating your subscription. Please contact support."
	MsgProcessing           = "Payment received. Your subscription is being processed."
	MsgPaymentIncomplete    = "Payment was not completed. Please try again or contact support."
	MsgPaymentError         = "There was an error processing your payment. Please contact support if you were charged."
	MsgCheckoutCanceled     = "Checkout cancelled. You can upgrade anytime from your account page."
	MsgPortalRequiresSub    = "You need an active subscription to access the billing portal."
	MsgPortalFailed         = "Unable to access billing portal. Please try again or contact support."
)

func success(msg string) Outcome { return Outcome{Level: LevelSuccess, Message: msg} }
func notice(msg string) Outcome  { return Outcome{Level: LevelNotice, Message: msg} }
func alert(msg string) Outcome   { return Outcome{Level: LevelAlert, Message: msg} }
