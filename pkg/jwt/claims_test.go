package jwt

import (
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestExtractUserID(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    int64
		wantErr bool
	}{
		{
			name:   "bare number under uid",
			claims: jwt.MapClaims{"uid": float64(7)},
			want:   7,
		},
		{
			name:   "numeric string under id",
			claims: jwt.MapClaims{"id": "42"},
			want:   42,
		},
		{
			name:   "nested identity object under user_id",
			claims: jwt.MapClaims{"user_id": map[string]any{"id": float64(13)}},
			want:   13,
		},
		{
			name:   "deeply nested",
			claims: jwt.MapClaims{"user_id": map[string]any{"user_id": map[string]any{"uid": "99"}}},
			want:   99,
		},
		{
			name:   "single entry map with unknown key",
			claims: jwt.MapClaims{"subject": float64(5)},
			want:   5,
		},
		{
			name:   "json.Number",
			claims: jwt.MapClaims{"uid": json.Number("314")},
			want:   314,
		},
		{
			name:   "user_id wins over uid",
			claims: jwt.MapClaims{"user_id": float64(1), "uid": float64(2)},
			want:   1,
		},
		{
			name:   "id wins over uid",
			claims: jwt.MapClaims{"id": "3", "uid": float64(4)},
			want:   3,
		},
		{
			name:   "broken preferred key falls through to next",
			claims: jwt.MapClaims{"user_id": "not-a-number", "id": float64(8)},
			want:   8,
		},
		{
			name:    "fractional number rejected",
			claims:  jwt.MapClaims{"uid": 7.5},
			wantErr: true,
		},
		{
			name:    "non-numeric string rejected",
			claims:  jwt.MapClaims{"uid": "abc"},
			wantErr: true,
		},
		{
			name:    "multiple unknown keys are ambiguous",
			claims:  jwt.MapClaims{"a": float64(1), "b": float64(2)},
			wantErr: true,
		},
		{
			name:    "empty claims",
			claims:  jwt.MapClaims{},
			wantErr: true,
		},
		{
			name:    "boolean value rejected",
			claims:  jwt.MapClaims{"uid": true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractUserID(tt.claims)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractUserID() = %d, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractUserID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractUserID() = %d, want %d", got, tt.want)
			}
		})
	}
}
