package sqlutils

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "cgo driver message",
			err:  errors.New("UNIQUE constraint failed: entities.campaign_id, entities.name"),
			want: true,
		},
		{
			name: "pure-go driver message with extended code",
			err:  errors.New("constraint failed: UNIQUE constraint failed: entities.name (2067)"),
			want: true,
		},
		{
			name: "primary key code",
			err:  errors.New("constraint failed (1555)"),
			want: true,
		},
		{
			name: "wrapped error",
			err:  fmt.Errorf("insert entity: %w", errors.New("UNIQUE constraint failed: entity_aliases.alias")),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("database is locked"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if IsForeignKeyViolation(nil) {
		t.Error("nil error should not be a foreign key violation")
	}
	if !IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed (787)")) {
		t.Error("expected foreign key violation to be detected")
	}
	if IsForeignKeyViolation(errors.New("UNIQUE constraint failed: x.y")) {
		t.Error("unique violation misclassified as foreign key violation")
	}
}
