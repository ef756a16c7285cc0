package provision

import "testing"

func TestBelongsTo(t *testing.T) {
	tests := []struct {
		name string
		base string
		want bool
	}{
		{"Кухня", "Кухня", true},
		{"Кухня 2", "Кухня", true},
		{"Кухня 10", "Кухня", true},
		{"Кухня 0", "Кухня", false},
		{"Кухня -1", "Кухня", false},
		{"Кухня два", "Кухня", false},
		{"Кухня2", "Кухня", false},
		{"Спальня", "Кухня", false},
		{"Кухня 2 3", "Кухня", false},
	}

	for _, tt := range tests {
		if got := belongsTo(tt.name, tt.base); got != tt.want {
			t.Errorf("belongsTo(%q, %q) = %v, want %v", tt.name, tt.base, got, tt.want)
		}
	}
}

func TestNamePoolResolve(t *testing.T) {
	t.Run("first room gets bare name", func(t *testing.T) {
		pool := newNamePool(nil)
		if got := pool.resolve("Кухня"); got != "Кухня" {
			t.Errorf("resolve = %q, want %q", got, "Кухня")
		}
	})

	t.Run("second room gets suffix 2", func(t *testing.T) {
		pool := newNamePool([]string{"Кухня"})
		if got := pool.resolve("Кухня"); got != "Кухня 2" {
			t.Errorf("resolve = %q, want %q", got, "Кухня 2")
		}
	})

	t.Run("suffix counts existing attributed rooms", func(t *testing.T) {
		pool := newNamePool([]string{"Кухня", "Кухня 2", "Кухня 3"})
		if got := pool.resolve("Кухня"); got != "Кухня 4" {
			t.Errorf("resolve = %q, want %q", got, "Кухня 4")
		}
	})

	t.Run("probes past a collision", func(t *testing.T) {
		// Only one attributed room exists but its name already carries the
		// suffix the count would produce.
		pool := newNamePool([]string{"Кухня 2"})
		if got := pool.resolve("Кухня"); got != "Кухня 3" {
			t.Errorf("resolve = %q, want %q", got, "Кухня 3")
		}
	})

	t.Run("batch allocations are visible to later calls", func(t *testing.T) {
		pool := newNamePool(nil)
		first := pool.resolve("Спальня")
		second := pool.resolve("Спальня")
		third := pool.resolve("Спальня")
		if first != "Спальня" || second != "Спальня 2" || third != "Спальня 3" {
			t.Errorf("got %q, %q, %q", first, second, third)
		}
	})

	t.Run("bases do not interfere", func(t *testing.T) {
		pool := newNamePool([]string{"Кухня", "Кухня 2"})
		if got := pool.resolve("Гостиная"); got != "Гостиная" {
			t.Errorf("resolve = %q, want %q", got, "Гостиная")
		}
	})

	t.Run("unattributed names with shared prefix are ignored", func(t *testing.T) {
		pool := newNamePool([]string{"Кухня летняя"})
		if got := pool.resolve("Кухня"); got != "Кухня" {
			t.Errorf("resolve = %q, want %q", got, "Кухня")
		}
	})
}
