package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStoreError(t *testing.T) {
	assert.False(t, ClassifyStoreError(nil))
	assert.False(t, ClassifyStoreError(errors.New("connection refused")))
	assert.True(t, ClassifyStoreError(errors.New(`ERROR: infinite recursion detected in policy for relation "meals" (SQLSTATE 42P17)`)))
}

func TestGuardStoreErrorTripsMaintenance(t *testing.T) {
	ClearMaintenance()
	t.Cleanup(ClearMaintenance)

	plain := errors.New("timeout")
	assert.Same(t, plain, GuardStoreError(plain), "errors pass through unchanged")
	assert.False(t, MaintenanceActive())

	wrapped := fmt.Errorf("query failed: %w", errors.New("infinite recursion detected in policy"))
	assert.Same(t, wrapped, GuardStoreError(wrapped))
	assert.True(t, MaintenanceActive())

	ClearMaintenance()
	assert.False(t, MaintenanceActive())
}
