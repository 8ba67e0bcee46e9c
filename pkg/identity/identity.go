package identity

import (
	"net"
	"strconv"
)

// Identity is the authorization key a caller presents to the mutation engine.
// Verifying how the caller proved who they are happens before an Identity is
// built and is not this package's concern.
type Identity struct {
	// UserID is the acting user. Zero means anonymous.
	UserID int64

	// Request context, carried into audit events
	RemoteIP  net.IP
	RequestID string
}

// ForUser creates an Identity acting as the given user.
func ForUser(userID int64) Identity {
	return Identity{UserID: userID}
}

// Anonymous returns an Identity with no user, as used for registration.
func Anonymous() Identity {
	return Identity{}
}

// WithRemoteIP sets the remote IP address.
func (i Identity) WithRemoteIP(ip net.IP) Identity {
	i.RemoteIP = ip
	return i
}

// WithRequestID sets the request correlation ID.
func (i Identity) WithRequestID(id string) Identity {
	i.RequestID = id
	return i
}

// IsAnonymous reports whether no user is acting.
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}

// ClientIP returns the remote IP as a string, or "-" when unknown.
func (i Identity) ClientIP() string {
	if i.RemoteIP == nil {
		return "-"
	}
	return i.RemoteIP.String()
}

func (i Identity) String() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	return "user:" + strconv.FormatInt(i.UserID, 10)
}
