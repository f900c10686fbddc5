package intake

import (
	"fmt"
	"strings"
)

const (
	promptCompany = "Hi! Let's set up a repair request.\n1. Company or contact name:"
	promptAddress = "2. Service address:"
	promptPhone   = "3. Contact phone number:"
	promptModel   = "4. Equipment make and model:"
	promptIssue   = "5. What's the problem? (breakdown, cartridge refill, delivery or other):"
	promptMedia   = "6. If you have photos or videos of the problem, send them now. Type \"skip\" to continue without them."
	promptDate    = "7. Preferred service date (YYYY-MM-DD):"

	promptMediaEvidence = "Photos or videos really help us diagnose a breakdown. Send them now, or type \"skip\" again to continue without."

	msgInvalidPhone = "That doesn't look like a valid phone number. Send 11 digits, e.g. +79991234567 or 89991234567:"
	msgInvalidDate  = "Invalid date format (expected YYYY-MM-DD). Try again:"

	msgIdleHint        = "Send /start to begin a repair request."
	msgCancelled       = "Request cancelled. Send /start to begin again."
	msgNothingToCancel = "There is no request in progress. Send /start to begin."
	msgUseButtons      = "Please use the Confirm or Start over buttons above."

	msgSubmitting  = "Submitting your request…"
	msgAckSuccess  = "Request received! Thank you, we'll be in touch shortly."
	msgAckDegraded = "Your request was received but could not be recorded automatically. We may ask you to resubmit."

	buttonConfirm = "Confirm"
	buttonRestart = "Start over"

	callbackConfirm = "confirm"
	callbackRestart = "restart"
)

// renderSummary renders the collected submission back to the submitter for
// confirmation.
func renderSummary(sub *Submission) string {
	var b strings.Builder
	b.WriteString("Please check your request:\n")
	fmt.Fprintf(&b, "Name: %s\n", sub.Company)
	fmt.Fprintf(&b, "Address: %s\n", sub.Address)
	fmt.Fprintf(&b, "Phone: %s\n", sub.Phone)
	fmt.Fprintf(&b, "Equipment: %s\n", sub.EquipmentModel)
	fmt.Fprintf(&b, "Issue: %s\n", sub.Issue)
	fmt.Fprintf(&b, "Attachments: %d\n", len(sub.Media))
	fmt.Fprintf(&b, "Preferred date: %s", sub.DesiredDate)
	return b.String()
}

// renderOperatorSummary renders the completed submission for the operator
// notification.
func renderOperatorSummary(sub *Submission) string {
	var b strings.Builder
	b.WriteString("New repair request\n")
	fmt.Fprintf(&b, "From: %s\n", sub.Handle)
	fmt.Fprintf(&b, "Name: %s\n", sub.Company)
	fmt.Fprintf(&b, "Address: %s\n", sub.Address)
	fmt.Fprintf(&b, "Phone: %s\n", sub.Phone)
	fmt.Fprintf(&b, "Equipment: %s\n", sub.EquipmentModel)
	fmt.Fprintf(&b, "Issue: %s\n", sub.Issue)
	fmt.Fprintf(&b, "Preferred date: %s", sub.DesiredDate)
	return b.String()
}
