package features

import "crypto/md5"

// bucket maps s into [0, n) by reading the MD5 digest of s as a big-endian
// 128-bit integer and reducing it modulo n. The result is stable across runs,
// machines and implementations that follow the same rule.
func bucket(s string, n int) int {
	sum := md5.Sum([]byte(s))
	m := uint64(n)
	var r uint64
	for _, b := range sum {
		r = (r<<8 | uint64(b)) % m
	}
	return int(r)
}
