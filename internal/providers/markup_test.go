package providers

import "testing"

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "tags and entities",
			in:   "<p>Walk the <b>Inca Trail</b> &amp; visit Machu&nbsp;Picchu.</p>",
			want: "Walk the Inca Trail & visit Machu Picchu.",
		},
		{
			name: "self closing breaks",
			in:   "Morning at leisure.<br/>Afternoon city tour.",
			want: "Morning at leisure. Afternoon city tour.",
		},
		{
			name: "list items",
			in:   "<ul><li>Breakfast</li><li>Dinner</li></ul>",
			want: "Breakfast Dinner",
		},
		{
			name: "plain text untouched",
			in:   "No markup here.",
			want: "No markup here.",
		},
		{
			name: "unknown tags preserved",
			in:   "Keep <blink>this</blink> tag.",
			want: "Keep <blink>this</blink> tag.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.in); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractSectionTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "h3 heading",
			in:   "<h3>Day 4: Cusco</h3><p>Explore the city.</p>",
			want: "Day 4: Cusco",
		},
		{
			name: "entities in heading",
			in:   "<h2>Lakes &amp; Mountains</h2>",
			want: "Lakes & Mountains",
		},
		{
			name: "no heading",
			in:   "<p>Just a paragraph.</p>",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSectionTitle(tt.in); got != tt.want {
				t.Errorf("ExtractSectionTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractPlaceName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "colon separator", in: "Day 4: Cusco", want: "Cusco"},
		{name: "dash separator", in: "Day 12 - Lake Titicaca", want: "Lake Titicaca"},
		{name: "case insensitive", in: "DAY 2: Lima", want: "Lima"},
		{name: "no day prefix", in: "Arrival in Lima", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPlaceName(tt.in); got != tt.want {
				t.Errorf("ExtractPlaceName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildFallbackMediaURL(t *testing.T) {
	got := BuildFallbackMediaURL("https://api.tourradar-connect.example.com/v3", "Adventures", "2026", "peru26")
	want := "https://cdn.tourradar-connect.example.com/media/adventures/2026/PERU26/hero.jpg"
	if got != want {
		t.Errorf("BuildFallbackMediaURL = %q, want %q", got, want)
	}
}
