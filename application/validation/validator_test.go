package validation

import (
	"errors"
	"testing"

	"github.com/budget-tools/rateconv/domain/entities"
	domainerrors "github.com/budget-tools/rateconv/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// beyondInt32 is 1<<31, the first frequency R cannot represent.
var beyondInt32 = int64(entities.MaxFrequency) + 1

func TestStruct_ValidRequest(t *testing.T) {
	assert.NoError(t, Struct(entities.DefaultRateRequest()))
}

func TestStruct_InvalidFrequencies(t *testing.T) {
	tests := []struct {
		name  string
		req   entities.RateRequest
		field string
		tag   string
	}{
		{
			name:  "zero frequency",
			req:   entities.RateRequest{Rate: 0.05, Frequency: 0, TargetFrequency: 1},
			field: "frequency",
			tag:   "gt=0",
		},
		{
			name:  "negative target",
			req:   entities.RateRequest{Rate: 0.05, Frequency: 12, TargetFrequency: -4},
			field: "target_frequency",
			tag:   "gt=0",
		},
		{
			name:  "frequency beyond int32",
			req:   entities.RateRequest{Rate: 0.05, Frequency: int(beyondInt32*2 + 12), TargetFrequency: 1},
			field: "frequency",
			tag:   "lte=2147483647",
		},
		{
			name:  "target at 1<<31",
			req:   entities.RateRequest{Rate: 0.05, Frequency: 12, TargetFrequency: int(beyondInt32)},
			field: "target_frequency",
			tag:   "lte=2147483647",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			require.Error(t, err)

			var cfgErr *domainerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.tag)
		})
	}
}

func TestStruct_MaxFrequencyAccepted(t *testing.T) {
	req := entities.RateRequest{Rate: 0.05, Frequency: entities.MaxFrequency, TargetFrequency: entities.MaxFrequency}
	assert.NoError(t, Struct(req))
}

func TestStruct_NestedFieldPath(t *testing.T) {
	type inner struct {
		Level string `mapstructure:"level" validate:"oneof=debug info"`
	}
	type outer struct {
		Log inner `mapstructure:"log"`
	}

	err := Struct(outer{Log: inner{Level: "trace"}})
	var cfgErr *domainerrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "log.level", cfgErr.Field)
}
