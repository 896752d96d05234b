// Copyright (c) 2015 Arista Networks, Inc.  All rights reserved.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package testutil provides reflection-based pretty-printing and diffing
// for test failure messages, trimmed down from a general-purpose version to
// the slice-and-struct shapes a hash table's tests actually compare:
// entries, key sets, and iteration snapshots.
package testutil

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/kylelemons/godebug/pretty"

	"github.com/gorh/robinhash/sliceutils"
)

// prettyConfig mirrors the defaults of the hand-rolled reflection walker
// this package replaces: a shallow-ish depth that still shows entry
// contents, struct field names included.
var prettyConfig = &pretty.Config{
	Compact:        false,
	SkipZeroFields: false,
}

// Sprint renders v for inclusion in a t.Errorf/t.Fatalf message. Slices are
// first normalized to []any via sliceutils.ToAnySlice so heterogeneous test
// tables and homogeneous entry slices print the same way.
func Sprint(v interface{}) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		n := rv.Len()
		elems := make([]interface{}, n)
		for i := 0; i < n; i++ {
			elems[i] = rv.Index(i).Interface()
		}
		return prettyConfig.Sprint(sliceutils.ToAnySlice(elems))
	}
	return prettyConfig.Sprint(v)
}

// DiffSlices reports a human-readable difference between two slices treated
// as unordered multisets (the order slot-order iteration yields is not a
// contract, per the table's iterator doc comment), using fmt.Sprintf("%#v",
// ...) on each element as its comparison key. It returns "" when both
// slices contain the same elements with the same multiplicity.
func DiffSlices(want, got interface{}) string {
	wv := reflect.ValueOf(want)
	gv := reflect.ValueOf(got)
	wantKeys := keysOf(wv)
	gotKeys := keysOf(gv)

	missing := diffMultiset(wantKeys, gotKeys)
	extra := diffMultiset(gotKeys, wantKeys)
	if len(missing) == 0 && len(extra) == 0 {
		return ""
	}
	msg := ""
	if len(missing) > 0 {
		sort.Strings(missing)
		msg += fmt.Sprintf("missing: %v", missing)
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		if msg != "" {
			msg += "; "
		}
		msg += fmt.Sprintf("extra: %v", extra)
	}
	return msg
}

func keysOf(v reflect.Value) []string {
	n := v.Len()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%#v", v.Index(i).Interface())
	}
	return out
}

// diffMultiset returns the elements of a not accounted for by an equal
// number of occurrences in b.
func diffMultiset(a, b []string) []string {
	counts := make(map[string]int, len(b))
	for _, s := range b {
		counts[s]++
	}
	var out []string
	for _, s := range a {
		if counts[s] > 0 {
			counts[s]--
			continue
		}
		out = append(out, s)
	}
	return out
}
