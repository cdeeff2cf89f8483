package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"ON", true, false},
		{" 1 ", true, false},
		{"enable", true, false},
		{"off", false, false},
		{"No", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBool(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSnowflake(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"828683007635488809", "828683007635488809", false},
		{"<@828683007635488809>", "828683007635488809", false},
		{"<@!828683007635488809>", "828683007635488809", false},
		{"<@&966785796902363188>", "966785796902363188", false},
		{"<#966785796902363188>", "966785796902363188", false},
		{"steve", "", true},
		{"<@>", "", true},
		{"-1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSnowflake(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "❌❌...", Truncate("❌❌❌❌❌❌", 5))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(0, 10, 10))
	assert.Equal(t, "█████░░░░░", ProgressBar(5, 10, 10))
	assert.Equal(t, "██████████", ProgressBar(10, 10, 10))
	assert.Equal(t, "██████████", ProgressBar(0, 0, 10))
	assert.Equal(t, "███░░░░░░░", ProgressBar(1, 3, 10))
}
