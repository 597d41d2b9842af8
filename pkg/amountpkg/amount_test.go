package amountpkg

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input   string
		want    string
		wantErr error
	}{
		{input: "100", want: "100"},
		{input: "0.0001", want: "0.0001"},
		{input: "12.3400", want: "12.34"},
		{input: "1e2", want: "100"},
		{input: "0", wantErr: ErrNotPositive},
		{input: "-5", wantErr: ErrNotPositive},
		{input: "9999999999999999.9999", want: "9999999999999999.9999"},
		{input: "0.00001", wantErr: ErrMalformed},
		{input: "10000000000000000", wantErr: ErrMalformed},
		{input: "1e16", wantErr: ErrMalformed},
		{input: "1e300", wantErr: ErrMalformed},
		{input: "-1e16", wantErr: ErrMalformed},
		{input: "", wantErr: ErrMalformed},
		{input: "ten", wantErr: ErrMalformed},
	}

	for _, tc := range testCases {
		got, err := Parse(tc.input)
		if tc.wantErr != nil {
			require.ErrorIs(t, err, tc.wantErr, "Parse(%q)", tc.input)
			continue
		}

		require.NoError(t, err, "Parse(%q)", tc.input)
		require.Equal(t, tc.want, got.String(), "Parse(%q)", tc.input)
	}
}

func TestValidAmount(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("amount", ValidAmount))

	type request struct {
		Amount string `validate:"amount"`
	}

	require.NoError(t, v.Struct(request{Amount: "10.5"}))
	require.Error(t, v.Struct(request{Amount: "-1"}))
	require.Error(t, v.Struct(request{Amount: "1.23456"}))
	require.Error(t, v.Struct(request{Amount: "1e16"}))
}
