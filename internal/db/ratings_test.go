package db

import (
	"errors"
	"testing"
)

func TestValidateScore(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		wantErr error
	}{
		{name: "minimum score", score: 0},
		{name: "maximum score", score: 10},
		{name: "middle score", score: 7},
		{name: "below range", score: -1, wantErr: ErrScoreOutOfRange},
		{name: "above range", score: 11, wantErr: ErrScoreOutOfRange},
		{name: "far above range", score: 100, wantErr: ErrScoreOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateScore(tt.score); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateScore(%d) = %v, want %v", tt.score, err, tt.wantErr)
			}
		})
	}
}
