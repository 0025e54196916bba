package access

import (
	"testing"
	"time"

	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"

	"github.com/stretchr/testify/assert"
)

func activeSub(now time.Time) *subscriptions.Subscription {
	end := now.AddDate(0, 1, 0)
	return &subscriptions.Subscription{IsActive: true, EndDate: &end, Status: subscriptions.StatusActive}
}

func TestDecide(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	justExpired := now.Add(-time.Second)

	member := Principal{Authenticated: true, UserID: 7, Role: users.RoleUser}
	admin := Principal{Authenticated: true, UserID: 1, Role: users.RoleAdmin}

	cases := []struct {
		name string
		p    Principal
		path string
		sub  *subscriptions.Subscription
		want Decision
	}{
		{"anonymous passes", Principal{}, "/products", nil, Allow},
		{"exempt path passes without subscription", member, "/subscription/status", nil, Allow},
		{"callback path passes", Principal{}, "/subscription/callback", nil, Allow},
		{"admin passes regardless of subscription", admin, "/products", nil, Allow},
		{"member with active subscription passes", member, "/products", activeSub(now), Allow},
		{"member without subscription is redirected", member, "/products", nil, RedirectToStatus},
		{
			"stale active flag one second past end date is redirected",
			member, "/products",
			&subscriptions.Subscription{IsActive: true, EndDate: &justExpired, Status: subscriptions.StatusActive},
			RedirectToStatus,
		},
		{
			"expired subscription is redirected",
			member, "/products",
			&subscriptions.Subscription{IsActive: false, EndDate: &justExpired, Status: subscriptions.StatusExpired},
			RedirectToStatus,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.p, tc.path, tc.sub, now))
		})
	}
}
