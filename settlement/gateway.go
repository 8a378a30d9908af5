package settlement

import (
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

// Intent is the provider's answer to a prepay request. Settled means the
// provider already considers the money collected (the mock settles
// synchronously); otherwise settlement arrives later via confirm.
type Intent struct {
	Reference string
	Settled   bool
}

// Gateway abstracts the external payment provider. Exactly one variant is
// chosen when the engine is constructed; the choice is never re-evaluated
// per call.
type Gateway interface {
	CreateIntent(amount float64, metadata map[string]string) (Intent, error)
}

// MockGateway simulates the provider: every intent succeeds immediately with
// a generated opaque reference.
type MockGateway struct{}

func (MockGateway) CreateIntent(amount float64, metadata map[string]string) (Intent, error) {
	return Intent{Reference: utils.MockTransactionID(), Settled: true}, nil
}

// ExternalGateway is the placeholder for a real provider integration. No
// credentials ship with this system, so it always reports unavailable;
// callers fall back to creating a pending record and answering 501.
type ExternalGateway struct{}

func (ExternalGateway) CreateIntent(amount float64, metadata map[string]string) (Intent, error) {
	return Intent{}, ErrGatewayUnavailable
}

// SelectGateway maps the MOCK_PAY switch to a gateway variant.
func SelectGateway(mock bool) Gateway {
	if mock {
		return MockGateway{}
	}
	return ExternalGateway{}
}
