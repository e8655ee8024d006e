package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinComma(t *testing.T) {
	assert.Equal(t, "", joinComma(nil))
	assert.Equal(t, "a = $1", joinComma([]string{"a = $1"}))
	assert.Equal(t, "a = $1, b = $2", joinComma([]string{"a = $1", "b = $2"}))
}

func TestEncodeDecodeStageList_RoundTrips(t *testing.T) {
	stages := []string{"readme", "catalogue"}
	encoded := encodeStageList(stages)
	assert.Equal(t, stages, decodeStageList(encoded))
}

func TestEncodeStageList_NilBecomesEmptyArray(t *testing.T) {
	assert.Equal(t, "[]", encodeStageList(nil))
}

func TestDecodeStageList_EmptyStringIsNilNotEmptySlice(t *testing.T) {
	assert.Nil(t, decodeStageList(""))
}

func TestDecodeStageList_InvalidJSONReturnsNil(t *testing.T) {
	assert.Nil(t, decodeStageList("not json"))
}
