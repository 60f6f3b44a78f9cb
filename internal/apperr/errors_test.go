package apperr

import (
	"errors"
	"io/fs"
	"testing"
)

func TestTypedErrorsUnwrap(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ConfigLoadError{Path: "bp.json", Err: fs.ErrNotExist}, "load config bp.json: file does not exist"},
		{&DirectoryCreationError{Path: "2020/hr", Err: fs.ErrExist}, "create directory 2020/hr: file already exists"},
		{&FileWriteError{Path: "2020/hr/a/b.txt", Err: ErrUnsafeTitle}, "write file 2020/hr/a/b.txt: title is not a safe file name"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("Error() = %q, want %q", got, c.want)
		}
		if errors.Unwrap(c.err) == nil {
			t.Errorf("%T does not unwrap", c.err)
		}
	}

	var dirErr *DirectoryCreationError
	err := error(&DirectoryCreationError{Path: "2020", Err: fs.ErrExist})
	if !errors.As(err, &dirErr) || !errors.Is(err, fs.ErrExist) {
		t.Errorf("errors.As/Is failed on %v", err)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrEmptyTemplateSet, ErrUnsafeTitle}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}
