package service

// Actor is the authenticated caller of a use case, resolved from the request
// token by the auth middleware.
type Actor struct {
	ID   uint
	Role string
}

// Origin carries the request provenance recorded alongside audit entries.
type Origin struct {
	IPAddress string
	UserAgent string
	Location  string
}
