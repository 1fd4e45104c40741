package whatsapp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/whatsapp"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "9876543210", want: "919876543210"},
		{in: "09876543210", want: "919876543210"},
		{in: "+91 98765 43210", want: "919876543210"},
		{in: "919876543210", want: "919876543210"},
		{in: "0091-98765-43210", want: "919876543210"},
		{in: "123", wantErr: true},
		{in: "", wantErr: true},
		{in: "not a number", wantErr: true},
		{in: "1234567890123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := whatsapp.NormalizePhone(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, whatsapp.ErrInvalidPhone)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
