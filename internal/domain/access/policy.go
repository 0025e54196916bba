package access

import (
	"strings"
	"time"

	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"
)

// Principal is the identity extracted from the request, threaded explicitly
// through every decision. Zero value means anonymous.
type Principal struct {
	Authenticated bool
	UserID        uint
	Email         string
	Role          string
}

type Decision string

const (
	Allow            Decision = "allow"
	RedirectToStatus Decision = "redirect"
)

// StatusPath is where gated requests are redirected.
const StatusPath = "/subscription/status"

// exemptPrefixes lists routes the paywall never blocks: auth, the
// subscription pages themselves (a locked-out user must still be able to
// pay), the gateway callback, and health/static assets.
var exemptPrefixes = []string{
	"/register",
	"/login",
	"/health",
	"/subscription/",
	"/assets/",
}

func ExemptPath(path string) bool {
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Decide applies the gate policy in order: anonymous requests pass (auth
// handles them downstream), exempt routes pass, admins pass, everyone else
// needs an effectively active subscription.
func Decide(p Principal, path string, sub *subscriptions.Subscription, now time.Time) Decision {
	if !p.Authenticated {
		return Allow
	}
	if ExemptPath(path) {
		return Allow
	}
	if p.Role == users.RoleAdmin {
		return Allow
	}
	if sub != nil && sub.EffectivelyActive(now) {
		return Allow
	}
	return RedirectToStatus
}
