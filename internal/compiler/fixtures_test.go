package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const studentsSpec = `
schema: Student: {
	Id:      int
	Name:    string
	Age:     int
	Courses: [...{...}] @elem(Course)
}

schema: Course: {
	Title:   string
	Credits: int
}

schema: Enrollment: {
	StudentId: int
	Course:    string
}

source: students: {type: "Student"}
source: enrollments: {type: "Enrollment"}

query: adults: {
	from: "students"
	ops: [
		{op: "Where", lambdas: [{params: ["s"], body: "s.Age > 18"}]},
		{op: "OrderBy", lambdas: [{params: ["s"], body: "s.Name"}]},
		{op: "Select", lambdas: [{params: ["s"], body: "s.Name"}]},
		{op: "Take", args: [3]},
	]
}

query: heavyCourses: {
	from: "students"
	ops: [
		{op: "SelectMany", lambdas: [
			{params: ["s"], body: "s.Courses"},
			{params: ["s", "c"], body: "{s: s, c: c}"},
		]},
		{op: "Where", lambdas: [{params: ["t"], body: "t.c.Credits >= 3"}]},
		{op: "Select", lambdas: [{params: ["t"], body: "t.c.Title"}]},
	]
}

query: enrolled: {
	from: "students"
	ops: [
		{op: "Join", inner: "enrollments", lambdas: [
			{params: ["s"], body: "s.Id"},
			{params: ["e"], body: "e.StudentId"},
			{params: ["s", "e"], body: "{s: s, e: e}"},
		]},
		{op: "Select", lambdas: [{params: ["t"], body: "t.e.Course"}]},
	]
}
`

func compileStudents(t *testing.T) *Spec {
	t.Helper()
	v, err := CompileString("students.cue", studentsSpec)
	require.NoError(t, err)
	spec, errs := CompileSpec(v, LoadModeFailFast)
	require.Empty(t, errs)
	return spec
}
