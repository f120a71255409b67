package dialog

// Customer-facing texts.
const (
	msgAskOrder         = "Sure, what would you like to order?"
	msgStartOver        = "Okay, let's start over. What would you like to order?"
	msgLostTrack        = "Sorry, I lost track of your order. What would you like to order?"
	msgNothingFound     = "Sorry, I didn't catch any menu items in that. What would you like to order?"
	msgFallbackNoItems  = "I'm sorry, I can only take food and drink orders. I didn't recognize any menu items in your request. Could you try again?"
	msgClarifyItem      = "I couldn't find '%s' on the menu. Could you clarify that part of your order?"
	msgChooseOption     = "For your %s, which %s would you like? Choices are: %s."
	msgDrinkUpsell      = "I've got your food order. Would you like anything to drink?"
	msgConfirmOrder     = "Okay, I have: %s. Is that correct?"
	msgEmptyOrder       = "Your order is empty right now. What would you like to order?"
	msgParseTrouble     = "I had trouble understanding that. Could you please try again?"
	msgOrderPlaced      = "Thank you! Your order for %s has been placed."
	msgFulfillFailed    = "I encountered an error while finalizing your order."
	msgNoOrderYet       = "It looks like you haven't placed an order yet. What would you like to get?"
	msgAskChange        = "What would you like to change about your order?"
	msgRephraseChange   = "I'm sorry, I had trouble understanding that change. Could you try rephrasing?"
	msgLookupFailed     = "I'm sorry, I encountered an error while looking up that information."
	msgUnsure           = "I'm sorry, I can only take orders or answer questions about the menu. How can I help?"
	msgFarewell         = "Thanks for stopping by! Have a great day."
	msgCannotHandle     = "Sorry, I couldn't handle your request."
	msgUnexpectedFailed = "Sorry, something went wrong on our side. Please try again in a moment."
)

var greetings = []string{
	"Hello! I'm ready to take your order. What can I get for you?",
	"Hi there! What would you like to order today?",
	"Welcome! Tell me what you'd like to eat.",
}
