// Copyright (c) 2020 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package hashtable implements an open-addressed hash table with explicit
// per-bucket chain metadata, used as the engine behind Map and Set.
//
// Each bucket either sits empty or holds one entry. A parallel nibble array
// (see the sibling nibble package) records, per bucket, whether the slot is
// empty, occupied with no successor ("solo"), or occupied with a successor
// reached by a fixed jump distance (see the internal/jump package). Chains
// form within this jump scheme rather than through a separate overflow
// pointer, which keeps the whole table in two flat slices.
//
// Insertion that collides with an entry squatting its home bucket displaces
// that entry Robin-Hood style: the squatter and its trailing chain are
// captured, the new entry takes the home bucket, and the squatter is
// reinserted. Removal captures the chain that followed the removed entry and
// reinserts every detached entry through the same insertion path (backward
// re-emplacement), so that chain metadata never points through a hole.
package hashtable
