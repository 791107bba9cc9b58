package engine

// Publisher is the sensor-registry/attribute-surface collaborator. The
// Session calls it as the handshake and data flow progress; it never
// calls back into the Session except through the Handle it is given.
type Publisher interface {
	OnAttach(h *Handle)
	OnDetach(h *Handle)
	OnModeChange(h *Handle, mode uint8)
	OnSample(h *Handle, mode uint8)
}

// nopPublisher is used when a Session is built without one.
type nopPublisher struct{}

func (nopPublisher) OnAttach(*Handle)             {}
func (nopPublisher) OnDetach(*Handle)             {}
func (nopPublisher) OnModeChange(*Handle, uint8) {}
func (nopPublisher) OnSample(*Handle, uint8)     {}
