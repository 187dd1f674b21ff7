package issuance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	issdom "tokenforge/internal/domain/issuance"
)

func TestScaleSupply(t *testing.T) {
	tests := []struct {
		name     string
		supply   string
		decimals uint8
		want     uint64
		wantErr  error
	}{
		{name: "nine decimals", supply: "1000", decimals: 9, want: 1_000_000_000_000},
		{name: "zero decimals", supply: "42", decimals: 0, want: 42},
		{name: "whitespace trimmed", supply: " 5 ", decimals: 2, want: 500},
		{name: "empty", supply: "", decimals: 9, wantErr: issdom.ErrSupplyRequired},
		{name: "blank", supply: "   ", decimals: 9, wantErr: issdom.ErrSupplyRequired},
		{name: "zero", supply: "0", decimals: 9, wantErr: issdom.ErrSupplyInvalid},
		{name: "fractional", supply: "1.5", decimals: 9, wantErr: issdom.ErrSupplyInvalid},
		{name: "negative", supply: "-3", decimals: 9, wantErr: issdom.ErrSupplyInvalid},
		{name: "not a number", supply: "ten", decimals: 9, wantErr: issdom.ErrSupplyInvalid},
		{name: "overflow", supply: "18446744073709551615", decimals: 1, wantErr: issdom.ErrSupplyInvalid},
		{name: "max without scaling", supply: "18446744073709551615", decimals: 0, want: 18446744073709551615},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scaleSupply(tt.supply, tt.decimals)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
