package random

import (
	"strings"
	"testing"
)

func TestGetRandomStringLengthAndCharset(t *testing.T) {
	s := GetRandomString(8)
	if len(s) != 8 {
		t.Fatalf("len = %d, want 8", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(charset, r) {
			t.Fatalf("unexpected char %q in %q", r, s)
		}
	}
}

// 邀请码取自 62^8 的空间，千次抽样撞码说明生成器坏了
func TestGetRandomStringNoCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		s := GetRandomString(8)
		if len(s) != 8 {
			t.Fatalf("len = %d, want 8", len(s))
		}
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate code %q after %d draws", s, i)
		}
		seen[s] = struct{}{}
	}
}
