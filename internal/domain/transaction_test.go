package domain_test

import (
	"testing"

	"Tracker/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Kind
		wantErr bool
	}{
		{in: "income", want: domain.KindIncome},
		{in: "expense", want: domain.KindExpense},
		{in: "", wantErr: true},
		{in: "Income", wantErr: true},
		{in: "transfer", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("kind "+tt.in, func(t *testing.T) {
			k, err := domain.ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, k)
		})
	}
}
