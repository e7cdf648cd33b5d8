// Package domain defines core data structures shared by the wallet inspection pipeline.
package domain

// TokenDescriptor static metadata of a fungible token contract queried for every address.
type TokenDescriptor struct {
	Name     string `yaml:"name" json:"name"`
	Symbol   string `yaml:"symbol" json:"symbol"`
	Contract string `yaml:"contract" json:"contract"`
	Decimals uint8  `yaml:"decimals" json:"decimals"`
	Icon     string `yaml:"icon" json:"icon"`
}

// Balance holding of a single asset produced by one fetch cycle.
// Amount is a decimal string in the asset's natural unit.
type Balance struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
	Icon   string `json:"icon"`
	// Native is set for the chain's native currency entry.
	Native bool `json:"native,omitempty"`
}

// NewBalance creates a Balance for the given descriptor.
func NewBalance(token TokenDescriptor, amount string, native bool) Balance {
	return Balance{
		Name:   token.Name,
		Symbol: token.Symbol,
		Amount: amount,
		Icon:   token.Icon,
		Native: native,
	}
}
