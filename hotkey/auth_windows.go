package hotkey

// RegisterHotKey needs no user-granted permission.
type openAuthorizer struct{}

func NewAuthorizer(TapOptions) Authorizer { return openAuthorizer{} }

func (openAuthorizer) Granted() bool  { return true }
func (openAuthorizer) Request() error { return nil }
