package utils

import (
	"strings"

	"github.com/rs/xid"
)

// NewInviteCode returns a short shareable family invite code.
func NewInviteCode() string {
	id := xid.New().String()
	return strings.ToUpper(id[len(id)-8:])
}
