package notify

import (
	"testing"
	"time"

	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"

	"github.com/stretchr/testify/assert"
)

func TestMailBodiesTolerateUndatedSubscription(t *testing.T) {
	user := users.User{Name: "Ada", Email: "ada@example.com"}
	sub := subscriptions.Subscription{Amount: 50000, Currency: "GNF"}

	assert.NotPanics(t, func() {
		assert.Contains(t, confirmationBody(user, sub), "Ada")
		assert.Contains(t, reminderBody(user, sub), "end of the current period")
	})
}

func TestMailBodiesFormatEndDate(t *testing.T) {
	user := users.User{Name: "Ada"}
	end := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	sub := subscriptions.Subscription{EndDate: &end, Amount: 50000, Currency: "GNF"}

	assert.Contains(t, confirmationBody(user, sub), "2025-07-10")
	assert.Contains(t, reminderBody(user, sub), "2025-07-10")
}
