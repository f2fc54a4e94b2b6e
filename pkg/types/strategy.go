package types

// Strategy selects the placement rule for picking a free block.
type Strategy string

const (
	// FirstFit picks the sufficient free block with the smallest start
	// address.
	FirstFit Strategy = "first"

	// BestFit picks the smallest sufficient free block; ties broken by
	// smallest start address.
	BestFit Strategy = "best"

	// WorstFit picks the largest sufficient free block; ties broken by
	// smallest start address.
	WorstFit Strategy = "worst"
)

// ParseStrategy validates a raw strategy string from a request payload. An
// empty string selects BestFit, matching the API's historical default.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case FirstFit, BestFit, WorstFit:
		return Strategy(s), nil
	case "":
		return BestFit, nil
	default:
		return "", &InvalidStrategyErr{Strategy: s}
	}
}
