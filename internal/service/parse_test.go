package service_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seat-allocation/internal/service"
)

func TestParseInt(t *testing.T) {
	ok := map[string]struct {
		in   any
		want int
	}{
		"json number":    {float64(12), 12},
		"numeric string": {" 7 ", 7},
		"float string":   {"3.0", 3},
		"int":            {4, 4},
		"int64":          {int64(9), 9},
	}
	for name, tc := range ok {
		t.Run(name, func(t *testing.T) {
			got, err := service.ParseInt("start", tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	bad := map[string]any{
		"nil":        nil,
		"empty":      "",
		"fraction":   1.5,
		"word":       "ten",
		"bool":       true,
		"max int":    strconv.Itoa(math.MaxInt),
		"past int32": "3000000000",
		"big float":  float64(3e9),
		"big int64":  int64(math.MaxInt32) + 1,
	}
	for name, in := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := service.ParseInt("year", in)
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "year", ve.Field)
		})
	}
}

func TestRollFormatters(t *testing.T) {
	assert.Equal(t, "7", service.PlainRolls{}.Format("cse", 7))
	assert.Equal(t, "CSE007", service.PaddedRolls{Width: 3}.Format(" cse ", 7))
	assert.Equal(t, "1234", service.PaddedRolls{Width: 3}.Format("", 1234))

	f, err := service.NewRollFormatter("PADDED", 2)
	require.NoError(t, err)
	assert.Equal(t, "05", f.Format("", 5))

	f, err = service.NewRollFormatter("", 0)
	require.NoError(t, err)
	assert.Equal(t, "plain", f.Name())

	_, err = service.NewRollFormatter("roman", 0)
	assert.Error(t, err)
}
