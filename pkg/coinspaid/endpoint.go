package coinspaid

// Endpoint identifies a gateway operation
type Endpoint int

const (
	EndpointPing Endpoint = iota + 1
	EndpointTakeAddress
	EndpointCryptoWithdrawal
	EndpointAccountBalances
)

var endpointPaths = map[Endpoint]string{
	EndpointPing:             "/api/v2/ping",
	EndpointTakeAddress:      "/api/v2/addresses/take",
	EndpointCryptoWithdrawal: "/api/v2/withdrawal/crypto",
	EndpointAccountBalances:  "/api/v2/accounts/list",
}

var endpointNames = map[Endpoint]string{
	EndpointPing:             "ping",
	EndpointTakeAddress:      "take_address",
	EndpointCryptoWithdrawal: "crypto_withdrawal",
	EndpointAccountBalances:  "account_balances",
}

// Path returns the URL path of the endpoint relative to the gateway host
func (e Endpoint) Path() string {
	return endpointPaths[e]
}

// String returns the operation name, used for logs and metric labels
func (e Endpoint) String() string {
	if name, ok := endpointNames[e]; ok {
		return name
	}
	return "unknown"
}
