package tokenRepo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"subscription", `{"endpoint":"https://push.example/abc","keys":{"p256dh":"k","auth":"a"}}`, "https://push.example/abc", false},
		{"registration token", `"fcm-registration-token"`, "fcm-registration-token", false},
		{"empty", ``, "", true},
		{"null", `null`, "", true},
		{"empty string", `""`, "", true},
		{"missing endpoint", `{"keys":{}}`, "", true},
		{"garbage", `{not json`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Endpoint(json.RawMessage(tt.token))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
