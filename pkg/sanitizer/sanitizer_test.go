package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"leading and trailing spaces", "  John Smith  ", "John Smith"},
		{"internal whitespace collapsed", "John\t\t Smith", "John Smith"},
		{"already normalized", "John Smith", "John Smith"},
		{"unicode preserved", "José  Álvarez", "José Álvarez"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTrimAndNormalizeIdempotent(t *testing.T) {
	input := "  John \t Smith  "
	once := TrimAndNormalize(input)
	twice := TrimAndNormalize(once)
	if once != twice {
		t.Errorf("not idempotent: first %q, second %q", once, twice)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"lowercases", "Guest@Example.COM", "guest@example.com"},
		{"trims whitespace", "  guest@example.com ", "guest@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeEmail(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"spaces to underscore", "Deluxe King", "deluxe_king"},
		{"hyphens and spaces collapsed", "Ocean-View  Suite", "ocean_view_suite"},
		{"trims edge underscores", "  --Standard--  ", "standard"},
		{"digits kept", "Room 101", "room_101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLabel(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeStringSlice(t *testing.T) {
	t.Run("removes duplicates and empties", func(t *testing.T) {
		input := []string{"Deluxe King", "deluxe king", "", "  ", "Standard"}
		expected := []string{"deluxe_king", "standard"}

		got := NormalizeLabels(input)
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("NormalizeLabels(%v) = %v, want %v", input, got, expected)
		}
	})

	t.Run("nil input returns empty slice", func(t *testing.T) {
		got := NormalizeLabels(nil)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty slice, got %v", got)
		}
	})

	t.Run("preserves order of first occurrence", func(t *testing.T) {
		input := []string{"b", "a", "b", "c", "a"}
		expected := []string{"b", "a", "c"}

		got := NormalizeUnitIDs(input)
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("NormalizeUnitIDs(%v) = %v, want %v", input, got, expected)
		}
	})
}

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		min      int
		max      int
		expected int
	}{
		{"below minimum", 0, 1, 10, 1},
		{"above maximum", 50, 1, 10, 10},
		{"within range", 3, 1, 10, 3},
		{"at minimum", 1, 1, 10, 1},
		{"at maximum", 10, 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampQuantity(tt.quantity, tt.min, tt.max)
			if got != tt.expected {
				t.Errorf("ClampQuantity(%d, %d, %d) = %d, want %d", tt.quantity, tt.min, tt.max, got, tt.expected)
			}
		})
	}
}
