// Package whatsapp builds wa.me share links. Nothing here sends anything;
// the links are returned to the caller as data.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultCountryCode = "55"

// NormalizePhone strips non-digits and prefixes the country code when the
// number does not already carry it.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if strings.HasPrefix(cleaned, defaultCountryCode) {
		return cleaned
	}
	return defaultCountryCode + cleaned
}

// BuildLink returns a wa.me URL that opens a chat with the given phone and
// the message prefilled.
func BuildLink(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", NormalizePhone(phone), url.QueryEscape(message))
}

// ParentApprovalMessage is the prefilled text sent to a guardian together
// with the approval link.
func ParentApprovalMessage(athleteName, departureDate, departureTime, reason, link string) string {
	return fmt.Sprintf(
		"Leave Authorization Request\n\n"+
			"Hello! %s has requested permission to leave the facility.\n\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Reason: %s\n\n"+
			"Please use the link below to approve or reject:\n%s",
		athleteName, departureDate, departureTime, reason, link)
}

// PasswordResetMessage is the prefilled text for a password-reset link.
func PasswordResetMessage(fullName, link string, validHours int) string {
	return fmt.Sprintf(
		"Hello %s! Use this link to reset your password: %s\n\nThe link expires in %d hour(s).",
		fullName, link, validHours)
}
