package format

import (
	"testing"
	"time"
)

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero bytes", bytes: 0, want: "0 B"},
		{name: "single byte", bytes: 1, want: "1 B"},
		{name: "under 1KB", bytes: 1023, want: "1023 B"},
		{name: "exactly 1KB", bytes: 1024, want: "1.0 KB"},
		{name: "1.5 KB", bytes: 1536, want: "1.5 KB"},
		{name: "exactly 1MB", bytes: 1024 * 1024, want: "1.0 MB"},
		{name: "50 MB", bytes: 50 * 1024 * 1024, want: "50.0 MB"},
		{name: "exactly 1GB", bytes: 1024 * 1024 * 1024, want: "1.0 GB"},
		{name: "1.5 GB", bytes: 1536 * 1024 * 1024, want: "1.5 GB"},
		{name: "exactly 1TB", bytes: 1024 * 1024 * 1024 * 1024, want: "1.0 TB"},
		{name: "large value", bytes: 5 * 1024 * 1024 * 1024, want: "5.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HumanizeBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("HumanizeBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
func TestMillis(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "zero", d: 0, want: "0.0"},
		{name: "sub-millisecond", d: 260 * time.Microsecond, want: "0.3"},
		{name: "whole millis", d: 42 * time.Millisecond, want: "42.0"},
		{name: "seconds", d: 1500 * time.Millisecond, want: "1500.0"},
		{name: "fraction", d: 12*time.Millisecond + 340*time.Microsecond, want: "12.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Millis(tt.d); got != tt.want {
				t.Errorf("Millis(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 850 * time.Millisecond, want: "850ms"},
		{d: 12400 * time.Millisecond, want: "12.4s"},
		{d: 185 * time.Second, want: "3m05s"},
		{d: 0, want: "0s"},
	}
	for _, tt := range tests {
		if got := Duration(tt.d); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
