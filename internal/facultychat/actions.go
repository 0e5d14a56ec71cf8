package facultychat

import "sync"

// Ключи выполняющихся действий. Ключ на каждую сущность, чтобы остальные
// строки оставались доступны, пока идёт запрос.
func inviteKey(teacherID string) string   { return "invite-" + teacherID }
func acceptKey(invitationID string) string { return "accept-" + invitationID }
func rejectKey(invitationID string) string { return "reject-" + invitationID }
func sendKey(peerID string) string        { return "send-" + peerID }

// actions отслеживает, какие действия сейчас выполняются
type actions struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

func newActions() *actions {
	return &actions{keys: make(map[string]struct{})}
}

// begin помечает key как выполняющийся. false, если он уже выполняется
func (a *actions) begin(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.keys[key]; exists {
		return false
	}
	a.keys[key] = struct{}{}
	return true
}

func (a *actions) end(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.keys, key)
}

func (a *actions) running(key string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, exists := a.keys[key]
	return exists
}
