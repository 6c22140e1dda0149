package notification

import (
	"fmt"
	"strconv"
	"time"

	"brandflowAPI/internal/profile"
)

type NotificationType string

const (
	NotificationPaymentApproved     NotificationType = "payment_approved"
	NotificationPaymentRejected     NotificationType = "payment_rejected"
	NotificationSubscriptionExpired NotificationType = "subscription_expired"
	NotificationPasswordReset       NotificationType = "password_reset"
)

// Message is a push notification addressed to all devices of one user.
type Message struct {
	Type  NotificationType
	Title string
	Body  string
	Data  map[string]string
}

func PaymentApproved(plan profile.Status, expiry int64) Message {
	until := time.UnixMilli(expiry).UTC().Format("02 Jan 2006")
	return Message{
		Type:  NotificationPaymentApproved,
		Title: fmt.Sprintf("%s plan activated", plan),
		Body:  fmt.Sprintf("Your payment was verified. %s is active until %s.", plan, until),
		Data: map[string]string{
			"plan":       string(plan),
			"expiryDate": strconv.FormatInt(expiry, 10),
		},
	}
}

func PaymentRejected(plan profile.Status) Message {
	return Message{
		Type:  NotificationPaymentRejected,
		Title: "Payment not verified",
		Body:  fmt.Sprintf("We could not verify your %s payment. Check the UTR and submit again.", plan),
		Data:  map[string]string{"plan": string(plan)},
	}
}

func SubscriptionExpired(plan profile.Status) Message {
	return Message{
		Type:  NotificationSubscriptionExpired,
		Title: "Subscription expired",
		Body:  fmt.Sprintf("Your %s plan has ended. Renew any time from the Subscription page.", plan),
		Data:  map[string]string{"plan": string(plan)},
	}
}

func PasswordReset(link string) Message {
	return Message{
		Type:  NotificationPasswordReset,
		Title: "Reset your password",
		Body:  "Tap to choose a new BrandFlow password.",
		Data:  map[string]string{"link": link},
	}
}
