package bootstrap

// Session is everything the publishing side needs from bootstrap: the
// opaque device token and the endpoint address. Constructed once, then
// read-only for the life of the process.
type Session struct {
	Token    string
	Endpoint string
}

// NewSession builds the session from the cached credentials and the
// configured endpoint.
func NewSession(c Credentials, endpoint string) Session {
	return Session{Token: c.Token, Endpoint: endpoint}
}
