package ffi

import "testing"

func TestFindIn(t *testing.T) {
	present := func(paths ...string) func(string) bool {
		return func(p string) bool {
			for _, q := range paths {
				if p == q {
					return true
				}
			}
			return false
		}
	}
	noEnv := func(string) string { return "" }

	tests := []struct {
		name    string
		goos    string
		env     func(string) string
		exists  func(string) bool
		want    string
		wantErr bool
	}{
		{"linux fallback", "linux", noEnv, present(), "libvaht.so", false},
		{"linux local", "linux", noEnv, present("/usr/local/lib/libvaht.so"), "/usr/local/lib/libvaht.so", false},
		{
			"linux env first", "linux",
			func(k string) string {
				if k == "LD_LIBRARY_PATH" {
					return "/opt/vaht/lib"
				}
				return ""
			},
			present("/opt/vaht/lib/libvaht.so", "/usr/lib/libvaht.so"),
			"/opt/vaht/lib/libvaht.so", false,
		},
		{"darwin usr local", "darwin", noEnv, present("/usr/local/lib/libvaht.dylib"), "/usr/local/lib/libvaht.dylib", false},
		{"darwin fallback", "darwin", noEnv, present(), "libvaht.dylib", false},
		{"unsupported os", "plan9", noEnv, present(), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findIn("vaht", tt.goos, tt.env, tt.exists)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := findIn("", "linux", noEnv, present()); err == nil {
		t.Fatal("empty name accepted")
	}
}
