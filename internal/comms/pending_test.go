package comms

import (
	"bytes"
	"testing"
)

func TestResolveUnknownCorrelationID(t *testing.T) {
	table := newPendingTable()
	if table.resolve("nope", []byte("late")) {
		t.Fatal("expected resolve of unknown id to report false")
	}
}

func TestOutOfOrderRepliesReachTheRightCaller(t *testing.T) {
	table := newPendingTable()
	first := table.register("id-1")
	second := table.register("id-2")

	if !table.resolve("id-2", []byte("reply two")) {
		t.Fatal("expected id-2 to resolve")
	}
	if !table.resolve("id-1", []byte("reply one")) {
		t.Fatal("expected id-1 to resolve")
	}

	if got := <-first; !bytes.Equal(got, []byte("reply one")) {
		t.Fatalf("first caller got %q", got)
	}
	if got := <-second; !bytes.Equal(got, []byte("reply two")) {
		t.Fatalf("second caller got %q", got)
	}
}

func TestDuplicateReplyResolvesOnce(t *testing.T) {
	table := newPendingTable()
	ch := table.register("id-1")

	if !table.resolve("id-1", []byte("reply")) {
		t.Fatal("expected first resolve to succeed")
	}
	if table.resolve("id-1", []byte("duplicate")) {
		t.Fatal("expected duplicate resolve to report false")
	}
	if got := <-ch; !bytes.Equal(got, []byte("reply")) {
		t.Fatalf("caller got %q", got)
	}
}

func TestDropPreventsLateResolve(t *testing.T) {
	table := newPendingTable()
	table.register("id-1")
	table.drop("id-1")

	if table.resolve("id-1", []byte("too late")) {
		t.Fatal("expected resolve after drop to report false")
	}
}
