package model

import "testing"

func TestBlockNumFromID(t *testing.T) {
	num, err := BlockNumFromID("0047868c1234567890abcdef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 0x0047868c {
		t.Fatalf("expected 0x0047868c, got %#x", num)
	}
}

func TestBlockNumFromIDTooShort(t *testing.T) {
	if _, err := BlockNumFromID("abcd"); err == nil {
		t.Fatal("expected error for short id")
	}
}

func TestBlockNumFromIDInvalidHex(t *testing.T) {
	if _, err := BlockNumFromID("zzzzzzzz"); err == nil {
		t.Fatal("expected error for non-hex id")
	}
}

func TestBlockNum(t *testing.T) {
	b := &Block{BlockID: "0000000a0000000000000000"}
	num, err := b.Num()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 10 {
		t.Fatalf("expected 10, got %d", num)
	}
}

func TestBlockOpCount(t *testing.T) {
	b := &Block{Transactions: []Transaction{
		{Operations: []Operation{{Type: "vote"}, {Type: "comment"}}},
		{Operations: []Operation{{Type: "follow"}}},
	}}
	if got := b.OpCount(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestDirtySetAddAndLen(t *testing.T) {
	d := NewDirtySet()
	d.Add(PostKey{Author: "alice", Permlink: "hello"})
	d.Add(PostKey{Author: "alice", Permlink: "hello"})
	d.Add(PostKey{Author: "bob", Permlink: "world"})
	if d.Len() != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", d.Len())
	}
}

func TestDirtySetMerge(t *testing.T) {
	a := NewDirtySet()
	a.Add(PostKey{Author: "alice", Permlink: "hello"})
	b := NewDirtySet()
	b.Add(PostKey{Author: "bob", Permlink: "world"})

	a.Merge(b)

	if a.Len() != 2 {
		t.Fatalf("expected 2 keys after merge, got %d", a.Len())
	}
	keys := a.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys from Keys(), got %d", len(keys))
	}
}

func TestParseFollowState(t *testing.T) {
	cases := []struct {
		what string
		want FollowState
		ok   bool
	}{
		{"blog", FollowBlog, true},
		{"clear", FollowClear, true},
		{"ignore", FollowIgnore, true},
		{"unsubscribe", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseFollowState(c.what)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("ParseFollowState(%q) = (%v, %v), want (%v, %v)", c.what, got, ok, c.want, c.ok)
		}
	}
}

func TestValidAccountName(t *testing.T) {
	valid := []string{"alice", "bob-smith", "a.b.c", "x23"}
	for _, name := range valid {
		if !ValidAccountName(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}
	invalid := []string{"", "A", "1alice", "-alice", "ab", "UPPER"}
	for _, name := range invalid {
		if ValidAccountName(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

func TestPostIsRoot(t *testing.T) {
	root := &Post{ID: 1}
	if !root.IsRoot() {
		t.Fatal("expected nil ParentID to be root")
	}
	parent := int64(1)
	reply := &Post{ID: 2, ParentID: &parent}
	if reply.IsRoot() {
		t.Fatal("expected non-nil ParentID to not be root")
	}
}

func TestJSONStringAndExists(t *testing.T) {
	j := ParseJSON(`{"tags":["a","b"],"community":"hive-1"}`)
	if !j.Exists("community") {
		t.Fatal("expected community to exist")
	}
	if got := j.String("community"); got != "hive-1" {
		t.Fatalf("expected hive-1, got %q", got)
	}
	if j.Exists("missing") {
		t.Fatal("expected missing field to be absent")
	}
}

func TestJSONArray(t *testing.T) {
	j := ParseJSON(`{"tags":["a","b","c"]}`)
	arr := j.Array("tags")
	if len(arr) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(arr))
	}
	if j.Array("missing") != nil {
		t.Fatal("expected nil for missing path")
	}
	if j.Array("tags.0") != nil {
		t.Fatal("expected nil for non-array path")
	}
}

func TestJSONMalformedDegradesToZeroValue(t *testing.T) {
	j := ParseJSON("not json")
	if j.Exists("anything") {
		t.Fatal("expected malformed JSON to report no fields")
	}
	if j.String("anything") != "" {
		t.Fatal("expected malformed JSON to yield empty string")
	}
	if j.Array("anything") != nil {
		t.Fatal("expected malformed JSON to yield nil array")
	}
	if j.IsObject() || j.IsArray() {
		t.Fatal("expected malformed JSON to be neither object nor array")
	}
}

func TestJSONEmptyStringIsInvalid(t *testing.T) {
	j := ParseJSON("")
	if j.Exists("x") || j.IsObject() || j.IsArray() {
		t.Fatal("expected empty string to parse as invalid JSON")
	}
}

func TestJSONIsObjectIsArray(t *testing.T) {
	obj := ParseJSON(`{"a":1}`)
	if !obj.IsObject() || obj.IsArray() {
		t.Fatal("expected object payload to report IsObject only")
	}
	arr := ParseJSON(`[1,2,3]`)
	if !arr.IsArray() || arr.IsObject() {
		t.Fatal("expected array payload to report IsArray only")
	}
}

func TestJSONIndex(t *testing.T) {
	arr := ParseJSON(`["type", {"author":"alice"}]`)
	second := arr.Index(1)
	if !second.Exists("author") {
		t.Fatal("expected index 1 to decode as its own JSON object")
	}
	if second.String("author") != "alice" {
		t.Fatalf("expected alice, got %q", second.String("author"))
	}
	if arr.Index(5).Exists("author") {
		t.Fatal("expected out-of-range index to yield zero-value JSON")
	}
	if arr.Index(-1).Exists("author") {
		t.Fatal("expected negative index to yield zero-value JSON")
	}
}

func TestJSONIndexOnNonArray(t *testing.T) {
	// gjson.Result.Array() treats a non-array payload as a single-element
	// array containing itself, so Index(0) on an object returns that object.
	obj := ParseJSON(`{"a":1}`)
	if !obj.Index(0).Exists("a") {
		t.Fatal("expected Index(0) on a non-array payload to return the payload itself")
	}
	if obj.Index(1).Exists("a") {
		t.Fatal("expected Index(1) on a non-array payload to be out of range")
	}
}

func TestJSONLen(t *testing.T) {
	arr := ParseJSON(`["follow", {"follower":"alice"}]`)
	if got := arr.Len(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	obj := ParseJSON(`{"a":1}`)
	if got := obj.Len(); got != 0 {
		t.Fatalf("expected 0 for a non-array payload, got %d", got)
	}
	if got := (JSON{}).Len(); got != 0 {
		t.Fatalf("expected 0 for a zero-value JSON, got %d", got)
	}
}

func TestJSONRaw(t *testing.T) {
	j := ParseJSON(`{"a":1}`)
	if j.Raw() != `{"a":1}` {
		t.Fatalf("expected raw text preserved, got %q", j.Raw())
	}
	if (JSON{}).Raw() != "" {
		t.Fatal("expected zero-value JSON to have empty raw text")
	}
}
