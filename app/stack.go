package app

import (
	"github.com/supi-pay/supi"
	"github.com/supi-pay/supi/x"
	"github.com/supi-pay/supi/x/cash"
	"github.com/supi-pay/supi/x/otpescrow"
	"github.com/supi-pay/supi/x/sigs"
	"github.com/supi-pay/supi/x/utils"
)

// Authenticator returns the authentication used by all extensions.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// extensionRouter returns a router with all extension handlers registered.
func extensionRouter(auth x.Authenticator, bank cash.CoinMover) *Router {
	r := NewRouter()
	cash.RegisterRoutes(r, auth, bank)
	otpescrow.RegisterRoutes(r, auth, bank)
	return r
}

// Stack wires the decorators around the router. Signature sequences and the
// message effects are committed together by the savepoint, so a failed
// transaction changes nothing.
func Stack(bank cash.CoinMover) supi.Handler {
	return ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnDeliver(),
		sigs.NewDecorator().AllowMissingSigs(),
	).WithHandler(extensionRouter(Authenticator(), bank))
}

// Initializers loads the genesis state of all extensions.
func Initializers() supi.Initializer {
	return ChainInitializers(
		cash.Initializer{},
		otpescrow.Initializer{},
	)
}
