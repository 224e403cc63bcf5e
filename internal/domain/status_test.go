package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []PublishingStatus
		want     PublishingStatus
	}{
		{name: "empty defaults to draft", statuses: nil, want: StatusDraft},
		{name: "single draft", statuses: []PublishingStatus{StatusDraft}, want: StatusDraft},
		{name: "published wins", statuses: []PublishingStatus{StatusDraft, StatusPublished, StatusModified}, want: StatusPublished},
		{name: "modified over draft", statuses: []PublishingStatus{StatusDraft, StatusModified}, want: StatusModified},
		{name: "draft over old published", statuses: []PublishingStatus{StatusOldPublished, StatusDraft}, want: StatusDraft},
		{name: "old published over deleted", statuses: []PublishingStatus{StatusDeleted, StatusOldPublished}, want: StatusOldPublished},
		{name: "all deleted", statuses: []PublishingStatus{StatusDeleted, StatusDeleted}, want: StatusDeleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateStatus(tt.statuses); got != tt.want {
				t.Errorf("AggregateStatus(%v) = %s, want %s", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestPublishingStatusActive(t *testing.T) {
	active := map[PublishingStatus]bool{
		StatusDraft:        true,
		StatusModified:     true,
		StatusPublished:    true,
		StatusOldPublished: false,
		StatusDeleted:      false,
	}
	for s, want := range active {
		if got := s.Active(); got != want {
			t.Errorf("%s.Active() = %v, want %v", s, got, want)
		}
	}
}

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("create channel: %w", InvalidAt("relations", 2, "duplicate relation"))

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("errors.Is(%v, ErrValidation) = false", err)
	}
	if errors.Is(err, ErrConflict) {
		t.Fatalf("validation error must not match ErrConflict")
	}
	if CodeOf(err) != CodeValidation {
		t.Errorf("CodeOf() = %q, want %q", CodeOf(err), CodeValidation)
	}

	var e *Error
	if !errors.As(err, &e) || e.Index == nil || *e.Index != 2 {
		t.Errorf("expected index 2 on wrapped error, got %+v", e)
	}
}

func TestFieldErrors(t *testing.T) {
	var fe FieldErrors
	if fe.Err() != nil {
		t.Fatal("empty FieldErrors must yield nil")
	}

	fe.Add("names", "at least one name is required")
	err := fe.Err()
	var e *Error
	if !errors.As(err, &e) || e.Field != "names" {
		t.Fatalf("single field error should be flattened, got %v", err)
	}

	fe.AddAt("urls", 1, "invalid url")
	if !errors.As(fe.Err(), &e) || len(e.Fields) != 2 {
		t.Fatalf("expected two collected fields, got %v", fe.Err())
	}
}

func TestFieldErrorsNest(t *testing.T) {
	var sub FieldErrors
	sub.AddAt("description", 0, "unknown language %q", "xx")
	sub.Add("serviceHours", "missing")

	var fe FieldErrors
	fe.Nest("relations", 2, sub)
	if len(fe) != 2 {
		t.Fatalf("len = %d, want 2", len(fe))
	}
	for _, e := range fe {
		if e.Field != "relations" || e.Index == nil || *e.Index != 2 {
			t.Errorf("got %s[%v], want relations[2]", e.Field, e.Index)
		}
	}
	if want := `description[0]: unknown language "xx"`; fe[0].Message != want {
		t.Errorf("message = %q, want %q", fe[0].Message, want)
	}
	if want := "serviceHours: missing"; fe[1].Message != want {
		t.Errorf("message = %q, want %q", fe[1].Message, want)
	}

	var none FieldErrors
	none.Nest("relations", 0, nil)
	if none.Err() != nil {
		t.Error("nesting nothing must not add errors")
	}
}

func TestCallerBelongsTo(t *testing.T) {
	c := Caller{UserName: "alice"}
	if !c.Identified() {
		t.Error("caller with a user name should be identified")
	}
	if (Caller{}).Identified() {
		t.Error("anonymous caller should not be identified")
	}
}
