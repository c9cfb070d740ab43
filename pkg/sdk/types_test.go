package sdk_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachworks/followup/pkg/sdk"
)

func TestRefID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want sdk.RefID
	}{
		{"bare id string", `"u1"`, sdk.RefID("u1")},
		{"populated record with _id", `{"_id":"p2","name":"Bob"}`, sdk.RefID("p2")},
		{"populated record with id", `{"id":"u3","username":"carol"}`, sdk.RefID("u3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sdk.RefID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_UnmarshalJSON(t *testing.T) {
	t.Run("plain date", func(t *testing.T) {
		var d sdk.Date
		require.NoError(t, json.Unmarshal([]byte(`"2026-08-24"`), &d))
		assert.Equal(t, "2026-08-24", d.Format(sdk.DateLayout))
	})

	t.Run("full timestamp", func(t *testing.T) {
		var d sdk.Date
		require.NoError(t, json.Unmarshal([]byte(`"2026-08-24T00:00:00.000Z"`), &d))
		assert.Equal(t, "2026-08-24", d.Format(sdk.DateLayout))
	})

	t.Run("null is a zero date", func(t *testing.T) {
		var d sdk.Date
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		var d sdk.Date
		assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &d))
	})
}

func TestDate_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(sdk.NewDate(2026, 8, 31))
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-31"`, string(out))
}
