package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("crm")
		IncCRMAction("addclient", "ok")
		IncCRMAction("addclient", "error")
		IncWebhookFailure()
		ObserveUpdateDuration(0.05)
		SetSyncQueueDepth(3)
		IncSyncTask("completed")
	})
}
