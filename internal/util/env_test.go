package util

import (
	"reflect"
	"testing"
	"time"
)

func TestGetEnvGetters(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_NUM", " 72.5 ")
	t.Setenv("TEST_BAD_NUM", "abc")
	t.Setenv("TEST_INT", "8000")
	t.Setenv("TEST_BOOL", "yes")
	t.Setenv("TEST_BAD_BOOL", "maybe")
	t.Setenv("TEST_DUR", "45s")
	t.Setenv("TEST_DUR_SECS", "2")

	if got := GetEnvString("TEST_STR", "d"); got != "value" {
		t.Errorf("GetEnvString = %q", got)
	}
	if got := GetEnvString("TEST_MISSING", "d"); got != "d" {
		t.Errorf("GetEnvString default = %q", got)
	}
	if got := GetEnvNumeric("TEST_NUM", 1); got != 72.5 {
		t.Errorf("GetEnvNumeric = %v", got)
	}
	if got := GetEnvNumeric("TEST_BAD_NUM", 85); got != 85 {
		t.Errorf("GetEnvNumeric bad value = %v", got)
	}
	if got := GetEnvInt("TEST_INT", 1); got != 8000 {
		t.Errorf("GetEnvInt = %v", got)
	}
	if got := GetEnvBool("TEST_BOOL", false); !got {
		t.Errorf("GetEnvBool = %v", got)
	}
	if got := GetEnvBool("TEST_BAD_BOOL", true); !got {
		t.Errorf("GetEnvBool bad value should keep default")
	}
	if got := GetEnvDuration("TEST_DUR", time.Second); got != 45*time.Second {
		t.Errorf("GetEnvDuration = %v", got)
	}
	if got := GetEnvDuration("TEST_DUR_SECS", time.Second); got != 2*time.Second {
		t.Errorf("GetEnvDuration seconds = %v", got)
	}
}

func TestGetEnvList(t *testing.T) {
	def := []string{"http://localhost:3000"}

	tests := []struct {
		name  string
		value string
		set   bool
		want  []string
	}{
		{name: "unset", want: def},
		{name: "blank", value: "  ", set: true, want: def},
		{name: "only commas", value: ",,", set: true, want: def},
		{
			name:  "trimmed entries",
			value: " http://a.example , http://b.example,",
			set:   true,
			want:  []string{"http://a.example", "http://b.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("TEST_LIST", tt.value)
			}
			if got := GetEnvList("TEST_LIST", def); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("GetEnvList = %v, want %v", got, tt.want)
			}
		})
	}
}
