package state

import "testing"

func sampleWorkItem() WorkItem {
	wi := WorkItem{
		ServiceID:          1,
		Payload:            []byte("payload"),
		RefineGasLimit:     1000,
		AccumulateGasLimit: 500,
		ExportCount:        2,
		Imports:            []Import{{Index: 0}, {Index: 1}},
		Extrinsics:         []Extrinsic{{Length: 32}},
	}
	wi.CodeHash[0] = 0xab
	return wi
}

func TestWorkItemRoundTrip(t *testing.T) {
	wi := sampleWorkItem()
	enc := wi.Encode(nil)
	got, n, err := DecodeWorkItem(enc)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d, want %d", n, len(enc))
	}
	if got.ServiceID != wi.ServiceID || got.CodeHash != wi.CodeHash {
		t.Fatal("scalar fields mismatch")
	}
	if len(got.Imports) != 2 || len(got.Extrinsics) != 1 {
		t.Fatalf("sequence lengths mismatch: %+v", got)
	}
}

func TestWorkPackageRoundTrip(t *testing.T) {
	wp := WorkPackage{
		Items:         []WorkItem{sampleWorkItem()},
		Authorization: []byte("auth"),
		Context: RefineContext{
			LookupAnchorTimeslot: 42,
		},
	}
	enc := wp.Encode(nil)
	got, n, err := DecodeWorkPackage(enc)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d, want %d", n, len(enc))
	}
	if len(got.Items) != 1 || got.Context.LookupAnchorTimeslot != 42 {
		t.Fatal("work package fields mismatch")
	}
	if got.Context.Prerequisite != nil {
		t.Fatal("expected nil prerequisite")
	}
}

func TestWorkPackageWithPrerequisite(t *testing.T) {
	prereq := [32]byte{0x09}
	wp := WorkPackage{
		Context: RefineContext{Prerequisite: &prereq},
	}
	enc := wp.Encode(nil)
	got, _, err := DecodeWorkPackage(enc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Context.Prerequisite == nil || *got.Context.Prerequisite != prereq {
		t.Fatal("prerequisite mismatch")
	}
}
