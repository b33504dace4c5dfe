package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const textInstance = `Number of students: 4
Number of exams: 3
Number of slots: 3
Number of rooms: 2
Room 0 capacity: 2
Room 1 capacity: 3
0 0
0 1
1 1
2 2
2 3
`

const jsonInstance = `{
	"students": 4,
	"exams": 3,
	"slots": 3,
	"rooms": 2,
	"capacities": [2, 3],
	"registrations": [[0, 0], [0, 1], [1, 1], [2, 2], [2, 3]]
}`

func writeInstanceFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatalf("cannot write instance file: %v", err)
	}
	return path
}

func TestNewInstance(t *testing.T) {
	t.Run("derives registration indexes and conflicts", func(t *testing.T) {
		//** Arrange
		raw := RawInstance{
			Students:      4,
			Exams:         3,
			Slots:         3,
			Rooms:         2,
			Capacities:    []int{2, 3},
			Registrations: [][2]int{{0, 1}, {0, 0}, {1, 1}, {2, 2}, {2, 3}},
		}

		//** Act
		instance, err := NewInstance(raw)

		//** Assert
		assert.Nil(t, err)
		assert.Equal(t, []int{0, 1}, instance.StudentsOf(0))
		assert.Equal(t, []int{1}, instance.StudentsOf(1))
		assert.Equal(t, []int{0, 1}, instance.ExamsOf(1))
		assert.Equal(t, 2, instance.StudentCount(2))
		assert.Equal(t, 5, instance.Registrations())
		assert.True(t, instance.Conflicts[0][1])
		assert.True(t, instance.Conflicts[1][0])
		assert.False(t, instance.Conflicts[0][2])
		assert.True(t, instance.Conflicts[2][2])
	})

	t.Run("duplicate registrations collapse", func(t *testing.T) {
		instance, err := NewInstance(RawInstance{
			Students:      1,
			Exams:         1,
			Slots:         1,
			Rooms:         1,
			Capacities:    []int{5},
			Registrations: [][2]int{{0, 0}, {0, 0}},
		})

		assert.Nil(t, err)
		assert.Equal(t, 1, instance.StudentCount(0))
		assert.Equal(t, 1, instance.Registrations())
	})

	t.Run("registration outside the exam range is rejected", func(t *testing.T) {
		_, err := NewInstance(RawInstance{
			Students:      1,
			Exams:         1,
			Slots:         1,
			Rooms:         1,
			Capacities:    []int{5},
			Registrations: [][2]int{{1, 0}},
		})

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})

	t.Run("registration outside the student range is rejected", func(t *testing.T) {
		_, err := NewInstance(RawInstance{
			Students:      2,
			Exams:         1,
			Slots:         1,
			Rooms:         1,
			Capacities:    []int{5},
			Registrations: [][2]int{{0, 2}},
		})

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})

	t.Run("capacity table must match the room count", func(t *testing.T) {
		_, err := NewInstance(RawInstance{
			Students:   1,
			Exams:      1,
			Slots:      1,
			Rooms:      2,
			Capacities: []int{5},
		})

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})

	t.Run("negative capacity is rejected", func(t *testing.T) {
		_, err := NewInstance(RawInstance{
			Students:   1,
			Exams:      1,
			Slots:      1,
			Rooms:      1,
			Capacities: []int{-5},
		})

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})

	t.Run("negative dimensions are rejected", func(t *testing.T) {
		_, err := NewInstance(RawInstance{Students: -1})

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})

	t.Run("an empty instance is valid", func(t *testing.T) {
		instance, err := NewInstance(RawInstance{})

		assert.Nil(t, err)
		assert.Equal(t, 0, instance.Exams)
		assert.Empty(t, instance.Conflicts)
	})
}

func TestInstanceFromFile(t *testing.T) {
	t.Run("parses the attribute format", func(t *testing.T) {
		instance, err := InstanceFromFile(writeInstanceFile(t, "instance.txt", textInstance))

		assert.Nil(t, err)
		assert.Equal(t, 4, instance.Students)
		assert.Equal(t, 3, instance.Exams)
		assert.Equal(t, 3, instance.Slots)
		assert.Equal(t, []int{2, 3}, instance.Capacities)
		assert.Equal(t, 3, instance.Capacity(1))
		assert.Equal(t, []int{0, 1}, instance.StudentsOf(0))
		assert.True(t, instance.Conflicts[0][1])
	})

	t.Run("agrees with the json loader", func(t *testing.T) {
		fromText, err := InstanceFromFile(writeInstanceFile(t, "instance.txt", textInstance))
		assert.Nil(t, err)
		fromJson, err := InstanceFromJson(writeInstanceFile(t, "instance.json", jsonInstance))
		assert.Nil(t, err)

		assert.Equal(t, fromText, fromJson)
	})

	t.Run("rejects a misnamed attribute", func(t *testing.T) {
		_, err := InstanceFromFile(writeInstanceFile(t, "instance.txt", "Number of pupils: 4\n"))

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})

	t.Run("rejects a truncated header", func(t *testing.T) {
		_, err := InstanceFromFile(writeInstanceFile(t, "instance.txt", "Number of students: 4\nNumber of exams: 3\n"))

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})

	t.Run("rejects a malformed registration line", func(t *testing.T) {
		content := `Number of students: 1
Number of exams: 1
Number of slots: 1
Number of rooms: 1
Room 0 capacity: 5
0 and 0
`
		_, err := InstanceFromFile(writeInstanceFile(t, "instance.txt", content))

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})

	t.Run("missing file surfaces the open error", func(t *testing.T) {
		_, err := InstanceFromFile(filepath.Join(t.TempDir(), "absent.txt"))

		assert.NotNil(t, err)
		assert.NotErrorIs(t, err, ErrInvalidInstance)
	})
}

func TestInstanceFromJson(t *testing.T) {
	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := InstanceFromJson(writeInstanceFile(t, "instance.json", "{not json"))

		assert.NotNil(t, err)
	})

	t.Run("validates the decoded instance", func(t *testing.T) {
		content := `{"students": 1, "exams": 1, "slots": 1, "rooms": 1, "capacities": [5], "registrations": [[4, 0]]}`
		_, err := InstanceFromJson(writeInstanceFile(t, "instance.json", content))

		assert.ErrorIs(t, err, ErrInvalidInstance)
	})
}
