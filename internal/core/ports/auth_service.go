package ports

import "context"

type AuthService interface {
	// Login exchanges the manager passcode for a signed bearer token.
	Login(ctx context.Context, passcode string) (string, error)
}
