package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"channelpass/gatekeeper/internal/config"
)

const expiryLayout = "2006-01-02 15:04 MST"

const (
	msgAdminOnly           = "⛔ Only the admin can generate codes."
	msgInvalidCode         = "❌ Invalid code."
	msgUsedByOther         = "⚠️ This code has already been used by another user."
	msgUserDataMissing     = "❌ User data not found."
	msgSubscriptionExpired = "⏳ Your subscription has expired."
	msgAccessRevoked       = "⛔ Your access to this channel has been revoked."
	msgTryLater            = "⚠️ Could not create an invite link right now. Please try again later."
	msgInternalError       = "⚠️ Something went wrong. Please try again later."
)

func startMessage(trigger string) string {
	if trigger == config.TriggerPlainText {
		return "Hi! Send me your subscription code to get an invite link.\n\nExample: ABCD123456"
	}
	return "Hi! Enter your subscription code with the command below:\n\n/use YOURCODE"
}

func durationList(days []int, sep string) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, sep)
}

func askDurationMessage(days []int) string {
	return fmt.Sprintf("Enter the subscription length in days (%s):", durationList(days, " / "))
}

func invalidDurationMessage(days []int) string {
	return fmt.Sprintf("❌ Allowed lengths: %s days.", durationList(days, ", "))
}

func codeCreatedMessage(code string, days int) string {
	return fmt.Sprintf("✅ Code created:\n🔑 %s\n📅 %d days", code, days)
}

func redeemedMessage(expiresAt time.Time, link string) string {
	return fmt.Sprintf("✅ Code accepted.\n📅 Valid until: %s\n\n"+
		"🔗 Use this link to request to join:\n%s\n\n"+
		"ℹ️ If you leave the channel, you can send your code again before the subscription ends to get a new link.",
		expiresAt.UTC().Format(expiryLayout), link)
}

func linkRefreshedMessage(expiresAt time.Time, link string) string {
	return fmt.Sprintf("✅ Your subscription is active.\n📅 Valid until: %s\n\n🔗 Join request link:\n%s",
		expiresAt.UTC().Format(expiryLayout), link)
}
