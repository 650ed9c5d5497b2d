package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapperAndReducer(t *testing.T) {
	doubled := Mapper([]int{1, 2, 3}, func(i int) int { return i * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	sum := Reducer([]int{1, 2, 3}, func(acc int, i int) int { return acc + i }, 10)
	assert.Equal(t, 16, sum)
}

func TestDistinctKeepsFirstOccurrence(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, Distinct([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, Distinct([]string{}))
}

func TestDuplicatesSorted(t *testing.T) {
	assert.Equal(t, []int{2, 7}, Duplicates([]int{7, 2, 5, 2, 7, 7}))
	assert.Nil(t, Duplicates([]int{1, 2, 3}))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("OPDB_TEST_BOOL", "true")
	t.Setenv("OPDB_TEST_INT", "7")
	t.Setenv("OPDB_TEST_BAD", "nope")

	assert.True(t, EnvBool("OPDB_TEST_BOOL", false))
	assert.False(t, EnvBool("OPDB_TEST_MISSING", false))
	assert.True(t, EnvBool("OPDB_TEST_BAD", true))

	assert.Equal(t, 7, EnvInt("OPDB_TEST_INT", 1))
	assert.Equal(t, 3, EnvInt("OPDB_TEST_BAD", 3))
	assert.Equal(t, 5, EnvInt("OPDB_TEST_MISSING", 5))
}
