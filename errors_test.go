package tsspec_test

import (
	"errors"
	"fmt"
	"testing"

	tsspec "github.com/reoring/tsspec"
)

func TestIssues_IsMatchesKind(t *testing.T) {
	iss := tsspec.Issues{
		{Path: "/driver", Code: tsspec.CodeDiscriminatorUnknown},
		{Path: "/metadata/chunks/1", Code: tsspec.CodeTooSmall},
	}
	var err error = iss
	if !errors.Is(err, tsspec.ErrUnknownVariant) || !errors.Is(err, tsspec.ErrConstraintViolation) {
		t.Fatalf("sentinel kinds not matched")
	}
	if errors.Is(err, tsspec.ErrMissingField) {
		t.Fatalf("unexpected kind match")
	}
	wrapped := fmt.Errorf("open: %w", err)
	got, ok := tsspec.AsIssues(wrapped)
	if !ok || len(got) != 2 {
		t.Fatalf("AsIssues through wrapping failed: %v", got)
	}
}

func TestIssue_FieldAndString(t *testing.T) {
	it := tsspec.Issue{Path: "/metadata/chunks/1", Code: tsspec.CodeTooSmall, Message: "must be > 0, got 0"}
	if it.Field() != "metadata.chunks[1]" {
		t.Fatalf("unexpected field: %s", it.Field())
	}
	if it.String() != "metadata.chunks[1]: must be > 0, got 0" {
		t.Fatalf("unexpected string: %s", it.String())
	}
	it.Hint = `did you mean "zarr"?`
	if it.String() != `metadata.chunks[1]: must be > 0, got 0 (did you mean "zarr"?)` {
		t.Fatalf("unexpected string: %s", it.String())
	}
	if (tsspec.Issue{Path: "/", Code: tsspec.CodeInvalidType}).String() != "(root): invalid_type" {
		t.Fatalf("root issues render as (root)")
	}
	if tsspec.DottedPath("/a~1b/c~0d") != "a/b.c~d" {
		t.Fatalf("escaped segments not decoded: %s", tsspec.DottedPath("/a~1b/c~0d"))
	}
}

func TestIssues_ErrorTruncates(t *testing.T) {
	var iss tsspec.Issues
	for i := 0; i < 5; i++ {
		iss = tsspec.AppendIssues(iss, tsspec.Issue{Path: fmt.Sprintf("/%d", i), Code: tsspec.CodeInvalidType})
	}
	want := "0: invalid_type; 1: invalid_type; 2: invalid_type; ... (total 5)"
	if iss.Error() != want {
		t.Fatalf("got %q want %q", iss.Error(), want)
	}
}

func TestIssues_Rebase(t *testing.T) {
	iss := tsspec.Issues{{Path: "/"}, {Path: "/1"}, {Path: "path"}}
	got := iss.Rebase("/kvstore")
	for i, want := range []string{"/kvstore", "/kvstore/1", "/kvstore/path"} {
		if got[i].Path != want {
			t.Fatalf("issue %d: got %s want %s", i, got[i].Path, want)
		}
	}
	if iss[1].Path != "/1" {
		t.Fatalf("Rebase must not mutate the receiver")
	}
	if len(got.At("/kvstore/1")) != 1 || !got.HasCode("") {
		t.Fatalf("At/HasCode lookup failed")
	}
}

func TestToIssues(t *testing.T) {
	iss := tsspec.ToIssues(errors.New("boom"))
	if len(iss) != 1 || iss[0].Code != tsspec.CodeParseError || iss[0].Path != "/" {
		t.Fatalf("unexpected conversion: %v", iss)
	}
	if tsspec.ToIssues(nil) != nil {
		t.Fatalf("nil error converts to nil issues")
	}
}

func TestPathRef(t *testing.T) {
	p := tsspec.Root().Field("metadata").Field("a/b").Index(2)
	if p.Pointer() != "/metadata/a~1b/2" {
		t.Fatalf("unexpected pointer: %s", p.Pointer())
	}
	it := p.Issue(tsspec.CodeTooBig, "too big", "limit", 3)
	if it.Params["limit"] != 3 || it.Path != "/metadata/a~1b/2" {
		t.Fatalf("unexpected issue: %+v", it)
	}
	if tsspec.At("/").Pointer() != "/" || tsspec.At("/x/0").Field("y").Pointer() != "/x/0/y" {
		t.Fatalf("At round trip failed")
	}
	if tsspec.JoinPointer("/", "k") != "/k" || tsspec.JoinPointer("/a", "k~") != "/a/k~0" {
		t.Fatalf("JoinPointer failed")
	}
}
