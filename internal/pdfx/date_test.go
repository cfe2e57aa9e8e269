package pdfx

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "utc suffix",
			value:  "D:20230615120000Z",
			want:   time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "offset suffix ignored",
			value:  "D:20191231235959+02'00'",
			want:   time.Date(2019, 12, 31, 23, 59, 59, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "exactly fourteen digits",
			value:  "D:20000101000000",
			want:   time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{name: "bad body", value: "D:bad"},
		{name: "missing prefix", value: "20230615120000"},
		{name: "too short", value: "D:202306151200"},
		{name: "non numeric", value: "D:2023O615120000"},
		{name: "sign inside digits", value: "D:+0230615120000"},
		{name: "month out of range", value: "D:20231315120000"},
		{name: "year one", value: "D:00010101000000"},
		{name: "before int64 nanoseconds", value: "D:16000101000000"},
		{name: "after int64 nanoseconds", value: "D:23000101000000"},
		{
			name:   "late but storable",
			value:  "D:22611231235959",
			want:   time.Date(2261, 12, 31, 23, 59, 59, 0, time.UTC),
			wantOK: true,
		},
		{name: "empty", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
