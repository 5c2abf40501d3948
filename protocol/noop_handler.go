package protocol

// NoOpHandler implements MessageHandler with no-op methods.
// Embed this and override only the methods you need.
type NoOpHandler struct{}

func (NoOpHandler) HandleCaseScanned(*Envelope, *CaseScanned)           {}
func (NoOpHandler) HandleKartLocation(*Envelope, *KartLocation)         {}
func (NoOpHandler) HandleKartReceived(*Envelope, *KartReceived)         {}
func (NoOpHandler) HandleKartCompleted(*Envelope, *KartCompleted)       {}
func (NoOpHandler) HandleOrderScanned(*Envelope, *OrderScanned)         {}
func (NoOpHandler) HandleKartAssignment(*Envelope, *KartAssignment)     {}
func (NoOpHandler) HandlePushNotification(*Envelope, *PushNotification) {}

// Compile-time check that NoOpHandler implements MessageHandler.
var _ MessageHandler = NoOpHandler{}
