package symtable

import (
	"testing"

	"github.com/sable-lang/sable/pkg/types"
)

func tok(lexeme string, line int) Token {
	return Token{Lexeme: lexeme, Line: line, Column: 1}
}

func TestAddAndFind(t *testing.T) {
	st := New()

	if !st.Add("x", tok("x", 1), types.Primitive(types.KindI32), 0, 0, true, false) {
		t.Fatal("Add returned false for a fresh name")
	}

	s := st.Find("x")
	if s == nil {
		t.Fatal("Find returned nil")
	}
	if s.Name != "x" || s.Index != 0 || !s.Mutable || s.Const {
		t.Errorf("unexpected symbol: %+v", s)
	}
	if s.Type.Kind != types.KindI32 {
		t.Errorf("Type.Kind = %v, want KindI32", s.Type.Kind)
	}
}

func TestFindMissing(t *testing.T) {
	st := New()
	if st.Find("nope") != nil {
		t.Error("Find on an empty table returned a symbol")
	}
	if st.FindAny("nope") != nil {
		t.Error("FindAny on an empty table returned a symbol")
	}
}

func TestAddRejectsDuplicateInSameScope(t *testing.T) {
	st := New()

	st.Add("x", tok("x", 1), types.Primitive(types.KindI32), 1, 0, false, false)
	before := st.Len()

	if st.Add("x", tok("x", 2), types.Primitive(types.KindF64), 1, 1, false, false) {
		t.Error("Add accepted a duplicate in the same scope")
	}
	if st.Len() != before {
		t.Errorf("rejected Add changed Len from %d to %d", before, st.Len())
	}

	// The original declaration is untouched.
	s := st.Find("x")
	if s.Type.Kind != types.KindI32 || s.Token.Line != 1 {
		t.Errorf("original symbol was modified: %+v", s)
	}
}

func TestShadowing(t *testing.T) {
	st := New()

	st.Add("x", tok("x", 1), types.Primitive(types.KindI32), 0, 0, false, false)
	if !st.Add("x", tok("x", 3), types.Primitive(types.KindString), 1, 1, false, false) {
		t.Fatal("Add rejected a shadowing declaration in an inner scope")
	}

	s := st.Find("x")
	if s.Scope != 1 || s.Type.Kind != types.KindString {
		t.Errorf("Find resolved to the outer declaration: %+v", s)
	}

	// Closing the inner scope uncovers the outer declaration again.
	st.RemoveFromScope(1)
	s = st.Find("x")
	if s == nil || s.Scope != 0 || s.Type.Kind != types.KindI32 {
		t.Errorf("Find after scope close = %+v, want the outer x", s)
	}
}

func TestRemoveFromScopeStopsAtShallower(t *testing.T) {
	st := New()

	st.Add("a", tok("a", 1), types.Primitive(types.KindI32), 0, 0, false, false)
	st.Add("b", tok("b", 2), types.Primitive(types.KindI32), 1, 1, false, false)
	st.Add("c", tok("c", 3), types.Primitive(types.KindI32), 2, 2, false, false)
	st.Add("d", tok("d", 4), types.Primitive(types.KindI32), 2, 3, false, false)

	st.RemoveFromScope(2)

	if st.Find("c") != nil || st.Find("d") != nil {
		t.Error("scope-2 symbols still active after RemoveFromScope(2)")
	}
	if st.Find("a") == nil || st.Find("b") == nil {
		t.Error("shallower symbols were deactivated")
	}
	if st.Len() != 4 {
		t.Errorf("Len() = %d, want 4 (deactivation must not delete)", st.Len())
	}
}

func TestFindAnySeesClosedScopes(t *testing.T) {
	st := New()

	st.Add("tmp", tok("tmp", 5), types.Primitive(types.KindBool), 1, 0, false, false)
	st.RemoveFromScope(1)

	if st.Find("tmp") != nil {
		t.Error("Find sees a deactivated symbol")
	}
	s := st.FindAny("tmp")
	if s == nil {
		t.Fatal("FindAny missed a deactivated symbol")
	}
	if s.Active {
		t.Error("symbol still marked active after its scope closed")
	}
}

func TestRedeclarationAfterScopeReentry(t *testing.T) {
	st := New()

	// Same name, same depth, across two iterations of a block: the first
	// copy is deactivated when the block exits, so the second Add succeeds.
	if !st.Add("i", tok("i", 2), types.Primitive(types.KindI32), 1, 0, true, false) {
		t.Fatal("first declaration rejected")
	}
	st.RemoveFromScope(1)
	if !st.Add("i", tok("i", 2), types.Primitive(types.KindI32), 1, 0, true, false) {
		t.Error("redeclaration after scope exit rejected")
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}
