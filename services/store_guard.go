package services

import (
	"errors"
	"strings"
	"sync/atomic"
)

// The backend occasionally ships a broken row-level-security policy that
// makes every query fail with this message. Matching on the substring is
// brittle, but it is the only signal the store gives us; keeping the
// check in one named classifier makes it visible and swappable.
const policyRecursionMarker = "infinite recursion detected in policy"

var ErrMaintenance = errors.New("서버 점검 중이에요. 잠시 후 다시 시도해 주세요")

var maintenanceMode atomic.Bool

// ClassifyStoreError reports whether err is the known backend
// misconfiguration that warrants suspending store calls.
func ClassifyStoreError(err error) bool {
	return err != nil && strings.Contains(err.Error(), policyRecursionMarker)
}

// GuardStoreError trips maintenance mode when the classifier matches and
// passes the error through either way.
func GuardStoreError(err error) error {
	if ClassifyStoreError(err) {
		maintenanceMode.Store(true)
	}
	return err
}

func MaintenanceActive() bool { return maintenanceMode.Load() }

// ClearMaintenance is called once the backend is fixed externally.
func ClearMaintenance() { maintenanceMode.Store(false) }
