package realtime

import (
	"fmt"
	"strings"
)

const (
	UsersRoot           = "users"
	PendingPaymentsRoot = "pendingPayments"

	CollectionProfile       = "profile"
	CollectionUsage         = "usage"
	CollectionHistory       = "history"
	CollectionBusinessLog   = "businessLog"
	CollectionCourses       = "courses"
	CollectionHealthReports = "healthReports"
	CollectionDeviceTokens  = "deviceTokens"
	CollectionPending       = "pendingPayment"
)

// ValidKey reports whether s can be used as a single path segment.
// The database rejects keys containing . $ # [ ] / and ASCII control chars.
func ValidKey(s string) bool {
	if s == "" || len(s) > 768 {
		return false
	}
	if strings.ContainsAny(s, ".$#[]/") {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

func UserPath(uid string) string {
	return UsersRoot + "/" + uid
}

func ProfilePath(uid string) string {
	return UserPath(uid) + "/" + CollectionProfile
}

func UsagePath(uid, date string) string {
	return fmt.Sprintf("%s/%s/%s", UserPath(uid), CollectionUsage, date)
}

func HistoryPath(uid string) string {
	return UserPath(uid) + "/" + CollectionHistory
}

func BusinessLogPath(uid string) string {
	return UserPath(uid) + "/" + CollectionBusinessLog
}

func CoursesPath(uid string) string {
	return UserPath(uid) + "/" + CollectionCourses
}

func HealthReportsPath(uid string) string {
	return UserPath(uid) + "/" + CollectionHealthReports
}

func DeviceTokensPath(uid string) string {
	return UserPath(uid) + "/" + CollectionDeviceTokens
}

func PendingPaymentPath(uid string) string {
	return PendingPaymentsRoot + "/" + uid
}

// Owner maps a written path to the uid whose namespace it belongs to and the
// collection that changed. ok is false for paths outside any user namespace.
func Owner(path string) (uid, collection string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) >= 2 && parts[0] == PendingPaymentsRoot:
		return parts[1], CollectionPending, true
	case len(parts) >= 3 && parts[0] == UsersRoot:
		return parts[1], parts[2], true
	}
	return "", "", false
}

// CollectionPath returns the path a subscriber re-reads after collection
// changed for uid.
func CollectionPath(uid, collection string) string {
	if collection == CollectionPending {
		return PendingPaymentPath(uid)
	}
	return UserPath(uid) + "/" + collection
}
