package pipeline

import "testing"

func TestFirstRowPreview(t *testing.T) {
	t.Parallel()

	rs := &RecordSet{
		Header: []string{"name", "team", "pos", "height", "weight", "age"},
		Rows: [][]string{
			{"Adam Donachie", "BAL", "Catcher", "74", "180", "22.99"},
			{"Paul Bako", "BAL", "Catcher", "74", "215", "34.69"},
		},
	}

	got := rs.FirstRowPreview(5)
	want := "{name: Adam Donachie, team: BAL, pos: Catcher, height: 74, weight: 180}"
	if got != want {
		t.Fatalf("FirstRowPreview(5) = %q, want %q", got, want)
	}
}

func TestFirstRowPreviewShortRow(t *testing.T) {
	t.Parallel()

	rs := &RecordSet{
		Header: []string{"x", "y"},
		Rows:   [][]string{{"1", "2"}},
	}
	if got := rs.FirstRowPreview(5); got != "{x: 1, y: 2}" {
		t.Fatalf("FirstRowPreview(5) = %q", got)
	}
}

func TestFirstRowPreviewMissingHeader(t *testing.T) {
	t.Parallel()

	rs := &RecordSet{
		Header: []string{"a"},
		Rows:   [][]string{{"1", "2", "3"}},
	}
	if got := rs.FirstRowPreview(3); got != "{a: 1, col1: 2, col2: 3}" {
		t.Fatalf("FirstRowPreview(3) = %q", got)
	}
}

func TestFirstRowPreviewEmpty(t *testing.T) {
	t.Parallel()

	var rs *RecordSet
	if got := rs.FirstRowPreview(5); got != "{}" {
		t.Fatalf("nil FirstRowPreview = %q", got)
	}
	empty := &RecordSet{Header: []string{"a"}}
	if got := empty.FirstRowPreview(5); got != "{}" {
		t.Fatalf("empty FirstRowPreview = %q", got)
	}
	if got := empty.Len(); got != 0 {
		t.Fatalf("Len() = %d", got)
	}
}
