package core

import (
	"context"
	"errors"
	"testing"
)

func TestPatch_ApplyPreservesUnspecifiedFields(t *testing.T) {
	base := IdleState()
	base.ID = "c1"

	next := NewPatch().WithStatus(StatusStreaming).Apply(base)

	if next.Status != StatusStreaming {
		t.Fatalf("expected streaming, got %q", next.Status)
	}
	if next.ID != "c1" {
		t.Fatalf("id should be preserved, got %q", next.ID)
	}
	if next.Messages == nil || len(next.Messages) != 0 {
		t.Fatalf("messages should be preserved as empty slice, got %#v", next.Messages)
	}
	if base.Status != StatusReady {
		t.Fatal("Apply must not modify its input")
	}
}

func TestPatch_WithErrorNilClears(t *testing.T) {
	boom := errors.New("boom")
	s := NewPatch().WithStatus(StatusError).WithError(boom).Apply(IdleState())
	if s.Error != boom {
		t.Fatalf("expected error to be set, got %v", s.Error)
	}
	s = NewPatch().WithError(nil).Apply(s)
	if s.Error != nil {
		t.Fatalf("expected error cleared, got %v", s.Error)
	}
	if s.Status != StatusError {
		t.Fatalf("status should be untouched, got %q", s.Status)
	}
}

func TestPatch_EmptyCarriesNothing(t *testing.T) {
	p := NewPatch()
	if !p.Empty() {
		t.Fatal("new patch should be empty")
	}
	base := IdleState()
	base.Messages = []Message{NewUserMessage("hi")}
	next := p.Apply(base)
	if len(next.Messages) != 1 || next.Status != StatusReady {
		t.Fatalf("empty patch changed state: %+v", next)
	}
}

func TestPatch_SnapshotPatchCarriesActions(t *testing.T) {
	called := false
	src := IdleState()
	src.ID = "c2"
	src.ClearError = func() { called = true }

	next := SnapshotPatch(src).Apply(IdleState())
	if next.ID != "c2" {
		t.Fatalf("expected id c2, got %q", next.ID)
	}
	next.ClearError()
	if !called {
		t.Fatal("ClearError binding was not forwarded")
	}
	if !SnapshotPatch(src).Fields.Has(FieldActions) {
		t.Fatal("snapshot patch should name every action field")
	}
}

func TestNoopActions(t *testing.T) {
	a := NoopActions()
	ctx := context.Background()
	if err := a.SendMessage(ctx, NewUserMessage("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Regenerate(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.ResumeStream(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.AddToolResult(ctx, ToolResult{ToolCallID: "t1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.SetMessages(nil)
	a.ClearError()
}

func TestStatus_IsLoading(t *testing.T) {
	cases := map[Status]bool{
		StatusSubmitted: true,
		StatusStreaming: true,
		StatusReady:     false,
		StatusError:     false,
	}
	for s, want := range cases {
		if got := s.IsLoading(); got != want {
			t.Errorf("%s.IsLoading() = %v, want %v", s, got, want)
		}
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("paused").Valid() {
		t.Error("unknown status should not be valid")
	}
}
