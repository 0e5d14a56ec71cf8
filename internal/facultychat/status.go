package facultychat

// StatusKind отношение текущего учителя с другим учителем
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusIncoming
	StatusOutgoing
	StatusConnected
)

func (k StatusKind) String() string {
	switch k {
	case StatusIncoming:
		return "incoming"
	case StatusOutgoing:
		return "outgoing"
	case StatusConnected:
		return "connected"
	default:
		return "none"
	}
}

// Status отношение с одним учителем. Invite заполнен для StatusIncoming
// и StatusOutgoing, Connection для StatusConnected.
type Status struct {
	Kind       StatusKind
	Invite     *Invitation
	Connection *Connection
}
