package navigator

import (
	"context"
	"fmt"
	"strings"
)

// Ref names one student's submission for one lesson.
type Ref struct {
	Class   string
	Lesson  string
	Student string
}

// ParseRef parses "class/lesson/student".
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Ref{}, fmt.Errorf("submission %q: want class/lesson/student", s)
	}
	for _, p := range parts {
		if p == "" {
			return Ref{}, fmt.Errorf("submission %q: empty component", s)
		}
	}
	return Ref{Class: parts[0], Lesson: parts[1], Student: parts[2]}, nil
}

func (r Ref) String() string {
	return r.Class + "/" + r.Lesson + "/" + r.Student
}

// idEscaper keeps "_" as the only separator inside an ID, so no ID is a
// prefix of another one followed by "_".
var idEscaper = strings.NewReplacer("%", "%25", "_", "%5F")

// ID is the identifier drafts are stored under: the three parts joined
// by "_", with "_" and "%" inside a part percent-escaped.
func (r Ref) ID() string {
	return idEscaper.Replace(r.Class) + "_" + idEscaper.Replace(r.Lesson) + "_" + idEscaper.Replace(r.Student)
}

// Page is one submitted page image. ID is opaque; URL is where the image
// can be fetched from.
type Page struct {
	ID  string
	URL string
}

// PageSource lists the pages of a submission.
type PageSource interface {
	FetchPages(ctx context.Context, ref Ref) ([]Page, error)
}
