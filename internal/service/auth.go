package service

// Authorizer answers whether a caller may upload, configure, or
// broadcast. Membership is a fixed allowlist loaded from config;
// everyone else can only redeem codes.
type Authorizer struct {
	allowed map[int64]struct{}
}

func NewAuthorizer(uploaderIDs []int64) *Authorizer {
	allowed := make(map[int64]struct{}, len(uploaderIDs))
	for _, id := range uploaderIDs {
		allowed[id] = struct{}{}
	}
	return &Authorizer{allowed: allowed}
}

func (a *Authorizer) IsAuthorized(ownerID int64) bool {
	_, ok := a.allowed[ownerID]
	return ok
}
