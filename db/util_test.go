package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAll(t *testing.T) {
	for _, test := range []struct {
		Name  string
		Slice []int
		Pred  func(t int) bool
		Exp   []int
	}{
		{
			Name:  "does not exist",
			Slice: []int{1, 3, 4},
			Pred:  func(t int) bool { return t == 2 },
			Exp:   []int{},
		},
		{
			Name:  "finds one",
			Slice: []int{1, 3},
			Pred:  func(t int) bool { return t == 3 },
			Exp:   []int{3},
		},
		{
			Name:  "finds two",
			Slice: []int{3, 1, 9},
			Pred:  func(t int) bool { return t%3 == 0 },
			Exp:   []int{3, 9},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Exp, FindAll(test.Slice, test.Pred))
		})
	}
}


func TestRemoveIf(t *testing.T) {
	for _, test := range []struct {
		Name  string
		Slice []int
		Pred  func(t int) bool
		Exp   []int
	}{
		{
			Name:  "removes nothing",
			Slice: []int{1, 2},
			Pred:  func(t int) bool { return t > 5 },
			Exp:   []int{1, 2},
		},
		{
			Name:  "removes matching",
			Slice: []int{3, 1, 9, 4},
			Pred:  func(t int) bool { return t%3 == 0 },
			Exp:   []int{1, 4},
		},
		{
			Name:  "empty",
			Slice: []int{},
			Pred:  func(t int) bool { return true },
			Exp:   []int{},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Exp, RemoveIf(test.Slice, test.Pred))
		})
	}
}
