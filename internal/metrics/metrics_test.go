package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Init_Idempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Init()
		Init()
	})
	assert.NotNil(t, crawlerFetchesTotal)
	assert.NotNil(t, crawlerFlushRowsTotal)
}

func Test_Observe_NoPanicBeforeExplicitInit(t *testing.T) {
	require.NotPanics(t, func() {
		ObserveFetch("page", "200")
		ObserveRetry()
		ObserveCategoryDiscovered()
		ObserveProductHarvested()
		ObserveItemSkipped("missing payload")
		ObserveFlush("products", 3)
		ObserveFlush("products", 0)
		ObservePolitenessDelay("card", 50*time.Millisecond)
	})
}

func Test_Handler_NotNil(t *testing.T) {
	assert.NotNil(t, Handler())
}
