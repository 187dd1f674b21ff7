// internal/application/issuance/supply.go
package issuance

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	issdom "tokenforge/internal/domain/issuance"
)

// scaleSupply converts a whole-token decimal string into base units at the
// given precision. Fractional supplies are rejected; overflow is an error,
// never a silent wrap.
func scaleSupply(supply string, decimals uint8) (uint64, error) {
	s := strings.TrimSpace(supply)
	if s == "" {
		return 0, issdom.ErrSupplyRequired
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", issdom.ErrSupplyInvalid, supply)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: supply must be positive", issdom.ErrSupplyInvalid)
	}

	for i := uint8(0); i < decimals; i++ {
		if n > math.MaxUint64/10 {
			return 0, fmt.Errorf("%w: %q overflows uint64 at %d decimals", issdom.ErrSupplyInvalid, supply, decimals)
		}
		n *= 10
	}
	return n, nil
}
