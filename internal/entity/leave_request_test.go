package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindLeave))
	assert.True(t, ValidKind(KindSick))
	assert.False(t, ValidKind("vacation"))
	assert.False(t, ValidKind(""))
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, StatusSick, StatusForKind(KindSick))
	assert.Equal(t, StatusExcused, StatusForKind(KindLeave))
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{StatusPresent, StatusExcused, StatusSick, StatusAbsent} {
		assert.True(t, ValidStatus(status), status)
	}
	assert.False(t, ValidStatus("late"))
	assert.False(t, ValidStatus(""))
}
