package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

func TestParseSemester(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Semester
		wantErr string
	}{
		{name: "bare number", input: "7", want: 7},
		{name: "trims whitespace", input: " 3 ", want: 3},
		{name: "degree sign", input: "3°", want: 3},
		{name: "to suffix", input: "5to", want: 5},
		{name: "vo suffix", input: "8vo", want: 8},
		{name: "mo suffix", input: "10mo", want: 10},
		{name: "ro suffix", input: "1ro", want: 1},
		{name: "do suffix", input: "2do", want: 2},
		{name: "uppercase suffix", input: "4TO", want: 4},
		{name: "empty", input: "", wantErr: "semester is required"},
		{name: "blank", input: "   ", wantErr: "semester is required"},
		{name: "zero", input: "0", wantErr: "semester must be between 1 and 10"},
		{name: "above range", input: "11", wantErr: "semester must be between 1 and 10"},
		{name: "negative", input: "-3", wantErr: "semester must be between 1 and 10"},
		{name: "words", input: "tercero", wantErr: "semester must be between 1 and 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSemester(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				assert.Equal(t, tt.wantErr, dErrors.MessageOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
