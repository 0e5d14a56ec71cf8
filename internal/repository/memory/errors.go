package memory

import "errors"

var errInvitationNotFound = errors.New("invitation not found")
