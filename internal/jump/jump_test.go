// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package jump

import "testing"

func TestDistancesTable(t *testing.T) {
	want := map[int]int{
		2: 1, 3: 2, 4: 3, 5: 4, 6: 5, 7: 8, 8: 13, 9: 21,
		10: 34, 11: 55, 12: 89, 13: 144, 14: 233, 15: 377,
	}
	for k, d := range want {
		if got := Distances[k]; got != d {
			t.Errorf("Distances[%d] = %d, want %d", k, got, d)
		}
	}
}

func TestNextWraps(t *testing.T) {
	mask := 7 // N = 8
	if got := Next(6, 2, mask); got != 7 {
		t.Errorf("Next(6, 2, 7) = %d, want 7", got)
	}
	if got := Next(7, 2, mask); got != 0 {
		t.Errorf("Next(7, 2, 7) = %d, want 0", got)
	}
}
