package email

import "fmt"

// GuideEmailHTML returns the HTML body for the purchase fulfillment email.
func GuideEmailHTML(senderName string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:32rem;line-height:1.6;color:#16181d;">
  <p>Welcome to the inside.</p>
  <p>Attached to this email is your complete copy of <strong>Leverage in the Game: The Outsider's Guide to Earning Minutes, Trust, and Opportunity</strong>.</p>
  <p>Read it carefully. Apply the frameworks. Shift your perspective.</p>
  <br/>
  <p>Let's get to work,</p>
  <p><strong>%s</strong></p>
</div>`, senderName)
}

// GuideEmailText returns the plain-text body for the purchase fulfillment email.
func GuideEmailText(senderName string) string {
	return fmt.Sprintf(`Welcome to the inside.

Attached to this email is your complete copy of Leverage in the Game: The Outsider's Guide to Earning Minutes, Trust, and Opportunity.

Read it carefully. Apply the frameworks. Shift your perspective.

Let's get to work,
%s`, senderName)
}
